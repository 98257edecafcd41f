// Package extract calls an external layout-analysis service that converts
// PDFs into markdown with tables rendered as pipe rows. The service follows
// the async analyze/poll contract used by Azure Document Intelligence.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const analyzePath = "/documentintelligence/documentModels/prebuilt-layout:analyze" +
	"?api-version=2024-02-29-preview&outputContentFormat=markdown"

// Client talks to the layout extraction API.
type Client struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	client       *http.Client
}

// NewClient creates a layout extraction client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		PollInterval: 2 * time.Second,
		client:       http.DefaultClient,
	}
}

// Result is the layout analysis output: the full document rendered as
// markdown plus the character offset where each page begins.
type Result struct {
	Markdown    string
	Pages       int
	PageOffsets []int
}

type analyzeStatus struct {
	Status        string `json:"status"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	AnalyzeResult *struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int `json:"pageNumber"`
			Spans      []struct {
				Offset int `json:"offset"`
				Length int `json:"length"`
			} `json:"spans"`
		} `json:"pages"`
	} `json:"analyzeResult,omitempty"`
}

// AnalyzeLayout submits a PDF for layout analysis and polls until the
// operation completes. The returned markdown keeps tables as pipe rows, so
// downstream segmentation can preserve them.
func (c *Client) AnalyzeLayout(ctx context.Context, pdf []byte) (*Result, error) {
	opURL, err := c.submit(ctx, pdf)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, opURL)
}

// submit starts the analysis and returns the operation URL to poll.
func (c *Client) submit(ctx context.Context, pdf []byte) (string, error) {
	url := c.BaseURL + analyzePath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(pdf))
	if err != nil {
		return "", fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit document: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("analyze request rejected with status %d: %s", resp.StatusCode, string(raw))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("analyze response missing Operation-Location header")
	}
	return opURL, nil
}

// poll checks the operation until it succeeds, fails, or ctx is done.
func (c *Client) poll(ctx context.Context, opURL string) (*Result, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.fetchStatus(ctx, opURL)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "succeeded":
			return buildResult(status)
		case "failed":
			if status.Error != nil {
				return nil, fmt.Errorf("layout analysis failed: %s: %s", status.Error.Code, status.Error.Message)
			}
			return nil, fmt.Errorf("layout analysis failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, opURL string) (*analyzeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll operation: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("poll returned status %d: %s", resp.StatusCode, string(raw))
	}

	var status analyzeStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return &status, nil
}

func buildResult(status *analyzeStatus) (*Result, error) {
	if status.AnalyzeResult == nil {
		return nil, fmt.Errorf("succeeded operation has no analyze result")
	}

	result := &Result{
		Markdown: status.AnalyzeResult.Content,
		Pages:    len(status.AnalyzeResult.Pages),
	}
	for _, page := range status.AnalyzeResult.Pages {
		if len(page.Spans) > 0 {
			result.PageOffsets = append(result.PageOffsets, page.Spans[0].Offset)
		}
	}
	return result, nil
}
