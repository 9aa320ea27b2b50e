package analysis

import "strings"

// asciiPunctuation matches the punctuation set the sarcasm model was trained without.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// NormalizeForSarcasm lowercases text, drops ASCII punctuation and trims surrounding whitespace.
func NormalizeForSarcasm(text string) string {
	lowered := strings.ToLower(text)
	stripped := strings.Map(func(r rune) rune {
		if r < 128 && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, lowered)
	return strings.TrimSpace(stripped)
}

// NormalizeForSentiment anonymizes mentions and links the way the twitter
// sentiment model saw them during training: "@name" -> "@user", "http..." -> "http".
// Tokens are split on single spaces so runs of spaces survive unchanged.
func NormalizeForSentiment(text string) string {
	tokens := strings.Split(text, " ")
	for i, token := range tokens {
		if strings.HasPrefix(token, "@") && len(token) > 1 {
			tokens[i] = "@user"
			continue
		}
		if strings.HasPrefix(token, "http") {
			tokens[i] = "http"
		}
	}
	return strings.Join(tokens, " ")
}
