package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/extract"
)

const (
	fileStateActive     = "ACTIVE"
	fileStateFailed     = "FAILED"
	uploadHeaderURL     = "X-Goog-Upload-URL"
	uploadHeaderCommand = "X-Goog-Upload-Command"
)

// Upload stores data with the Files API and waits until the file is ready
// to be referenced from a prompt. The whole exchange, polling included, is
// bounded by UploadTimeout.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType, displayName string) (*extract.MediaRef, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.NewGeneration("model api key is not configured", nil)
	}

	start := c.now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	ref, err := c.upload(ctx, data, mimeType, displayName)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		err = errors.NewGeneration(fmt.Sprintf("file upload timed out after %s", c.cfg.UploadTimeout), err)
	}
	c.log.GenerationCall("upload_file", time.Since(start), err)
	return ref, err
}

func (c *Client) upload(ctx context.Context, data []byte, mimeType, displayName string) (*extract.MediaRef, error) {
	sessionURL, err := c.startUpload(ctx, int64(len(data)), mimeType, displayName)
	if err != nil {
		return nil, err
	}
	file, err := c.finalizeUpload(ctx, sessionURL, data)
	if err != nil {
		return nil, err
	}
	if file, err = c.waitActive(ctx, file); err != nil {
		return nil, err
	}

	if file.MIMEType == "" {
		file.MIMEType = mimeType
	}
	return &extract.MediaRef{MIMEType: file.MIMEType, URI: file.URI}, nil
}

func (c *Client) startUpload(ctx context.Context, size int64, mimeType, displayName string) (string, error) {
	meta, _ := json.Marshal(map[string]any{"file": map[string]string{"display_name": displayName}})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload/v1beta/files", bytes.NewReader(meta))
	if err != nil {
		return "", errors.NewGeneration("build upload request", err)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set(uploadHeaderCommand, "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.FormatInt(size, 10))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	resp, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	sessionURL := resp.Header.Get(uploadHeaderURL)
	if sessionURL == "" {
		return "", errors.NewGeneration("upload session url missing: "+summarizePayloadSnippet(string(body)), nil)
	}
	return sessionURL, nil
}

func (c *Client) finalizeUpload(ctx context.Context, sessionURL string, data []byte) (fileResource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sessionURL, bytes.NewReader(data))
	if err != nil {
		return fileResource{}, errors.NewGeneration("build upload request", err)
	}
	req.Header.Set("X-Goog-Upload-Offset", "0")
	req.Header.Set(uploadHeaderCommand, "upload, finalize")

	_, body, err := c.do(req)
	if err != nil {
		return fileResource{}, err
	}
	var uploaded uploadedFile
	if err := json.Unmarshal(body, &uploaded); err != nil || uploaded.File.URI == "" {
		return fileResource{}, errors.NewGeneration("decode upload response: "+summarizePayloadSnippet(string(body)), err)
	}
	return uploaded.File, nil
}

// waitActive polls until the file leaves PROCESSING.
func (c *Client) waitActive(ctx context.Context, file fileResource) (fileResource, error) {
	for {
		switch file.State {
		case "", fileStateActive:
			return file, nil
		case fileStateFailed:
			return file, errors.NewGeneration("uploaded file failed processing: "+file.Name, nil)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return file, ctx.Err()
		case <-timer.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1beta/%s", c.cfg.BaseURL, file.Name), nil)
		if err != nil {
			return file, errors.NewGeneration("build file status request", err)
		}
		req.Header.Set("x-goog-api-key", c.cfg.APIKey)

		_, body, err := c.do(req)
		if err != nil {
			return file, err
		}
		var next fileResource
		if err := json.Unmarshal(body, &next); err != nil {
			return file, errors.NewGeneration("decode file status", err)
		}
		file = next
	}
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.NewGeneration("files request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.NewGeneration("read files response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, statusError(resp, body)
	}
	return resp, body, nil
}
