package clients

import (
	"errors"
	"strings"
	"testing"

	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAnalysisKey(t *testing.T) {
	key := AnalysisKey(models.ContentKindPost, 42, "hello")
	assert.Equal(t,
		"analysis:processed:post:42:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		key)

	edited := AnalysisKey(models.ContentKindPost, 42, "hello!")
	assert.NotEqual(t, key, edited)

	comment := AnalysisKey(models.ContentKindComment, 42, "hello")
	assert.True(t, strings.HasPrefix(comment, "analysis:processed:comment:42:"))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}
