package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuneLimiter(t *testing.T) {
	assert.Equal(t, "héllo", RuneLimiter{Max: 5}.Limit("héllo world"))
	assert.Equal(t, "short", RuneLimiter{Max: 10}.Limit("short"))
	assert.Equal(t, "unbounded", RuneLimiter{}.Limit("unbounded"))
}

func TestNewLimiterDisabled(t *testing.T) {
	l := NewLimiter("cl100k_base", 0, nil)
	assert.Equal(t, noLimit{}, l)
}

func TestNewLimiterFallsBackWithoutLogger(t *testing.T) {
	l := NewLimiter("no-such-encoding", 3, nil)
	assert.Equal(t, RuneLimiter{Max: 3 * charsPerToken}, l)
}

func TestTokenLimiter(t *testing.T) {
	l, err := NewTokenLimiter("cl100k_base", 5)
	if err != nil {
		t.Skipf("cl100k_base unavailable: %v", err)
	}

	text := strings.Repeat("linked lists store nodes ", 20)
	require.Greater(t, len(l.enc.Encode(text, nil, nil)), 5)

	got := l.Limit(text)
	assert.LessOrEqual(t, len(l.enc.Encode(got, nil, nil)), 5)
	assert.Less(t, len(got), len(text))
	assert.True(t, strings.HasPrefix(text, got), got)
	assert.Equal(t, "short", l.Limit("short"))
}
