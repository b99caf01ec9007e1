package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "loading", EventLoading.String())
	assert.Equal(t, "ready", EventReady.String())
	assert.Equal(t, "error", EventError.String())
	assert.Equal(t, "ended", EventEnded.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
