package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ImportResult reports how many spreadsheet rows the backend accepted and
// how many it rejected. Accepted rows are committed even when ErrorCount
// is non-zero.
type ImportResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

// Import uploads a spreadsheet as the sole field of a multipart payload.
// The backend parses rows and creates transactions in bulk.
func (c *Client) Import(ctx context.Context, filename string, file io.Reader) (ImportResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return ImportResult{}, fmt.Errorf("build multipart payload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return ImportResult{}, fmt.Errorf("read import file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ImportResult{}, fmt.Errorf("finalize multipart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions/import", &buf)
	if err != nil {
		return ImportResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ImportResult{}, fmt.Errorf("POST /transactions/import: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ImportResult{}, c.responseError(resp)
	}

	var result ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ImportResult{}, fmt.Errorf("decode import response: %w", err)
	}
	return result, nil
}

// Export streams the backend's spreadsheet export into w and returns the
// number of bytes written.
func (c *Client) Export(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/export", nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET /transactions/export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, c.responseError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("stream export: %w", err)
	}
	return n, nil
}
