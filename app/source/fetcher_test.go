package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/blog-comb/app/post"
)

func TestFetcherSetsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	data, err := NewFetcher(nil, "agent/1.0").Fetch(context.Background(), "blog", "posts", server.URL, acceptJSON)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, "agent/1.0", gotUA)
	assert.Equal(t, acceptJSON, gotAccept)
}

func TestFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := withTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewFetcher(nil, "").Fetch(ctx, "blog", "posts", server.URL, "")
	require.Error(t, err)
	assert.True(t, post.IsKind(err, post.UpstreamUnavailable), "expected UpstreamUnavailable, got %v", err)
}

func TestUpstreamMessage(t *testing.T) {
	resp := &http.Response{Status: "500 Internal Server Error", StatusCode: http.StatusInternalServerError}

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "wordpress envelope",
			body:     `{"code":"internal","message":"Database went away"}`,
			expected: "HTTP error: 500 Internal Server Error: Database went away",
		},
		{
			name:     "short plain text",
			body:     "boom\n",
			expected: "HTTP error: 500 Internal Server Error: boom",
		},
		{
			name:     "html page",
			body:     "<html><body>error</body></html>",
			expected: "HTTP error: 500 Internal Server Error",
		},
		{
			name:     "empty",
			body:     "",
			expected: "HTTP error: 500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, upstreamMessage(resp, []byte(tt.body)))
		})
	}
}
