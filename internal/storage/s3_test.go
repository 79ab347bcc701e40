package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedDownloadURL(t *testing.T) {
	s, err := New(context.Background(), Config{
		Endpoint:     "http://localhost:9000",
		Region:       "us-east-1",
		Bucket:       "filesb",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	raw, err := s.SignedDownloadURL(context.Background(), "courses/42/report_final.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/filesb/courses/42/report_final.pdf", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
