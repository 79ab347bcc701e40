package chat

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const explainPrefix = "Explain this content: "

// Limiter bounds the document text placed in a prompt.
type Limiter interface {
	Limit(text string) string
}

type noLimit struct{}

func (noLimit) Limit(text string) string { return text }

// TokenLimiter cuts text to at most max BPE tokens.
type TokenLimiter struct {
	enc *tiktoken.Tiktoken
	max int
}

func NewTokenLimiter(encoding string, maxTokens int) (*TokenLimiter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &TokenLimiter{enc: enc, max: maxTokens}, nil
}

func (l *TokenLimiter) Limit(text string) string {
	if l.max <= 0 {
		return text
	}
	tokens := l.enc.Encode(text, nil, nil)
	if len(tokens) <= l.max {
		return text
	}
	return strings.ToValidUTF8(l.enc.Decode(tokens[:l.max]), "")
}

// RuneLimiter cuts text to at most Max characters.
type RuneLimiter struct {
	Max int
}

func (l RuneLimiter) Limit(text string) string {
	if l.Max <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == l.Max {
			return text[:i]
		}
		n++
	}
	return text
}

// charsPerToken is the usual English average for BPE vocabularies.
const charsPerToken = 4

// NewLimiter returns a token limiter, or a character approximation when the
// encoding cannot be loaded (tiktoken fetches its ranks over the network).
func NewLimiter(encoding string, maxTokens int, logger *zap.Logger) Limiter {
	if maxTokens <= 0 {
		return noLimit{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l, err := NewTokenLimiter(encoding, maxTokens)
	if err != nil {
		logger.Warn("token encoding unavailable, bounding prompts by characters",
			zap.String("encoding", encoding),
			zap.Error(err))
		return RuneLimiter{Max: maxTokens * charsPerToken}
	}
	return l
}
