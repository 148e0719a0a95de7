package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable marks failures talking to the extraction service:
// unreachable endpoint, non-2xx status or a malformed response body.
// Callers use it to distinguish "search failed" from "no matches".
var ErrUnavailable = errors.New("extraction service unavailable")

// Match is one per-page search hit returned by the extraction service.
type Match struct {
	Page    int    `json:"page"`
	Context string `json:"context"`
}

type searchResponse struct {
	Results []Match `json:"results"`
	// The service reports its own failures in-band with a 200 status
	// and an error key instead of a results list.
	Error string `json:"error"`
}

// Client talks to the external text-extraction service. Submissions
// feed the service's per-page index; searches query it.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit sends one page image to the extraction service, tagged with
// the document name and its 1-based page number.
func (c *Client) Submit(ctx context.Context, img io.Reader, filename, docName string, page int) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build submission for %s page %d: %w", docName, page, err)
	}
	if _, err := io.Copy(fw, img); err != nil {
		return fmt.Errorf("read image for %s page %d: %w", docName, page, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize submission for %s page %d: %w", docName, page, err)
	}

	params := url.Values{}
	params.Set("pdf_name", docName)
	params.Set("page_number", strconv.Itoa(page))
	reqURL := fmt.Sprintf("%s/extract-text?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit %s page %d: %w", docName, page, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submit %s page %d: %s", docName, page, resp.Status)
	}
	// Response body is irrelevant to the document being complete.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Search queries the extraction index for docName. A query with no
// matches returns an empty, non-nil slice. Transport failures and
// malformed responses wrap ErrUnavailable.
func (c *Client) Search(ctx context.Context, docName, query string) ([]Match, error) {
	params := url.Values{}
	params.Set("pdf_name", docName)
	params.Set("query", query)
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, out.Error)
	}
	if out.Results == nil {
		return nil, fmt.Errorf("%w: response missing results", ErrUnavailable)
	}
	return out.Results, nil
}

// ProcessCV relays one uploaded CV image to the extraction service's
// analysis endpoint and returns the service's JSON verdict untouched
// ({"is_cv": ..., "text": ..., "score": ...}).
func (c *Client) ProcessCV(ctx context.Context, img io.Reader, filename string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build cv submission: %w", err)
	}
	if _, err := io.Copy(fw, img); err != nil {
		return nil, fmt.Errorf("read cv image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize cv submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-cv", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}
	verdict, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if !json.Valid(verdict) {
		return nil, fmt.Errorf("%w: malformed response body", ErrUnavailable)
	}
	return verdict, nil
}
