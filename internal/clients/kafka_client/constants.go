package kafka_client

import (
	"time"

	"github.com/spacesedan/sentisocial/config"
)

const (
	KAFKA_TOPIC_ANALYSIS_REQUEST = config.DefaultAnalysisTopic
)

const (
	MAX_RETRIES      = 5
	RETRY_DELAY      = 2 * time.Second
	POLL_TIMEOUT     = time.Second
	FLUSH_TIMEOUT_MS = 5000
)
