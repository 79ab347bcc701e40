package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "abc", r.URL.Query().Get("token"))
		w.Write([]byte("document bytes"))
	}))
	defer srv.Close()

	b, err := New().Fetch(context.Background(), srv.URL+"/object/sign/filesb/a.pdf?token=abc")
	require.NoError(t, err)
	assert.Equal(t, "document bytes", string(b))
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// chunked, so the declared length is unknown
		w.(http.Flusher).Flush()
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := New(WithMaxBytes(16)).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)

	b, err := New(WithMaxBytes(64)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, b, 64)
}

func TestFetchDeclaredLengthTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte(strings.Repeat("y", 100)))
	}))
	defer srv.Close()

	_, err := New(WithMaxBytes(10)).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := New(WithTimeout(50 * time.Millisecond)).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Fetch(ctx, "http://127.0.0.1:1/never")
	assert.ErrorIs(t, err, context.Canceled)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetchCustomClientKeepsTimeout(t *testing.T) {
	var urls []string
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		urls = append(urls, r.URL.String())
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("from transport")),
			Request:    r,
		}, nil
	})}

	c := New(WithTimeout(5*time.Second), WithHTTPClient(hc))
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Zero(t, hc.Timeout)

	b, err := c.Fetch(context.Background(), "https://storage.test/courses/7/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "from transport", string(b))
	assert.Equal(t, []string{"https://storage.test/courses/7/a.txt"}, urls)

	assert.Equal(t, DefaultTimeout, New().http.Timeout)
}
