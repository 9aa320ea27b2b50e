package models

type InferenceParameters struct {
	FunctionToApply string `json:"function_to_apply,omitempty"`
	TopK            int    `json:"top_k,omitempty"`
	Truncation      bool   `json:"truncation,omitempty"`
	MaxLength       int    `json:"max_length,omitempty"`
	Padding         bool   `json:"padding,omitempty"`
}

type InferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type TextClassificationRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters InferenceParameters `json:"parameters"`
	Options    InferenceOptions    `json:"options"`
}

type TextClassificationLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
