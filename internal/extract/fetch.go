package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Profile selects the header set sent with a request.
type Profile string

const (
	// ProfileBrowser mimics a desktop browser; article hosts reject bare clients.
	ProfileBrowser Profile = "browser"

	// ProfileAPI sends a plain client identity for JSON mirrors.
	ProfileAPI Profile = "api"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	apiUserAgent     = "focusbrief/1.0"

	// DefaultMaxResponseBytes caps a fetched body when no limit is configured.
	DefaultMaxResponseBytes int64 = 50 << 20
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Response is a fully read upstream response.
type Response struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// Fetcher performs bounded HTTP requests with a header profile.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher wraps client. A nil client gets one that follows up to 10
// redirects. maxBytes <= 0 uses DefaultMaxResponseBytes.
func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Get fetches rawURL. extra headers override the profile's.
func (f *Fetcher) Get(ctx context.Context, rawURL string, profile Profile, extra http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return f.do(req, profile, extra)
}

// GetJSON fetches rawURL and decodes the body into v.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := f.Get(ctx, rawURL, ProfileAPI, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostJSON sends body as JSON and decodes the response into v.
func (f *Fetcher) PostJSON(ctx context.Context, rawURL string, body any, v any, extra http.Header) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.do(req, ProfileAPI, extra)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (f *Fetcher) do(req *http.Request, profile Profile, extra http.Header) (*Response, error) {
	setProfileHeaders(req, profile)
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", f.maxBytes)
	}

	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

func setProfileHeaders(req *http.Request, profile Profile) {
	switch profile {
	case ProfileBrowser:
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9,es;q=0.8")
		req.Header.Set("Upgrade-Insecure-Requests", "1")
	default:
		req.Header.Set("User-Agent", apiUserAgent)
	}
}
