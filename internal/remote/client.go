// Package remote contains the HTTP providers used by the fallback
// orchestrators. Every provider makes exactly one request per call and
// classifies the outcome as success, *fallback.StatusError or a malformed
// response.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/tracing"
)

// DefaultTimeout bounds a single provider call. These calls are
// interactive, so a slow provider is abandoned in favour of the next one.
const DefaultTimeout = 15 * time.Second

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

// NewHTTPClient returns a client with tracing and the given timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: tracing.Transport(nil),
	}
}

// do sends req and decodes a 2xx JSON body into out
func do(client *http.Client, provider string, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &fallback.StatusError{Provider: provider, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", provider, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fallback.Malformed(provider, "invalid JSON: "+err.Error())
	}
	return nil
}

// postJSON sends payload as a JSON POST and decodes the answer into out
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return do(client, provider, req, out)
}

// getJSON sends a GET request and decodes the answer into out
func getJSON(ctx context.Context, client *http.Client, provider, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")

	return do(client, provider, req, out)
}

var (
	textPolicy = bluemonday.StrictPolicy()

	// A bare "<" as in "x<y" is text, not the start of a tag
	markupPattern = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
)

// CleanText strips markup from remote output and decodes HTML entities,
// since some providers answer with escaped or tagged text. Text without
// tags is only unescaped.
func CleanText(s string) string {
	if markupPattern.MatchString(s) {
		s = textPolicy.Sanitize(s)
	}
	return strings.TrimSpace(html.UnescapeString(s))
}
