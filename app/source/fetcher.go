package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/blog-comb/app/metrics"
	"github.com/lysyi3m/blog-comb/app/post"
)

const maxErrorBody = 64 << 10

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch issues a single GET. Every failure is an UpstreamUnavailable *post.Error.
func (f *Fetcher) Fetch(ctx context.Context, siteName, endpoint, url, accept string) (data []byte, err error) {
	startedAt := time.Now()
	defer func() {
		metrics.ObserveUpstream(siteName, endpoint, startedAt, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, post.WrapError(post.UpstreamUnavailable, err, "failed to create request")
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, post.WrapError(post.UpstreamUnavailable, err, "failed to fetch %s", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, post.NewError(post.UpstreamUnavailable, upstreamMessage(resp, body))
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, post.WrapError(post.UpstreamUnavailable, err, "failed to read response body")
	}

	slog.Debug("Upstream fetched", "site", siteName, "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(data))

	return data, nil
}

// upstreamMessage prefers the WordPress error envelope ({"code","message"}) over the bare status line.
func upstreamMessage(resp *http.Response, body []byte) string {
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
		return fmt.Sprintf("HTTP error: %s: %s", resp.Status, envelope.Message)
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") && len(text) < 200 {
		return fmt.Sprintf("HTTP error: %s: %s", resp.Status, text)
	}

	return fmt.Sprintf("HTTP error: %s", resp.Status)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
