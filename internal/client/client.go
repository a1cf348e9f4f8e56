// Package client provides an HTTP client for the newsroom comment API.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/evcraddock/newsroom/internal/comment"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is an HTTP client for the comment API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is an error envelope returned by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// GetComment returns a comment by ID.
func (c *Client) GetComment(id int64) (*comment.Comment, error) {
	var comm comment.Comment
	if err := c.send(http.MethodGet, commentPath(id), nil, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// UpdateComment replaces the writable fields of a comment.
// A rejected payload is returned as *comment.ValidationFailure.
func (c *Client) UpdateComment(id int64, in comment.Input) (*comment.Comment, error) {
	var comm comment.Comment
	if err := c.send(http.MethodPut, commentPath(id), in, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(id int64) error {
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.send(http.MethodDelete, commentPath(id), nil, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("comment %d was not deleted", id)
	}
	return nil
}

// Health probes the server's health endpoint and returns its status.
func (c *Client) Health() (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.send(http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func commentPath(id int64) string {
	return fmt.Sprintf("/comments/%d", id)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// decodeError turns an error response into a typed error.
func decodeError(status int, body []byte) error {
	if status == http.StatusBadRequest {
		var vf comment.ValidationFailure
		if json.Unmarshal(body, &vf) == nil && vf.Errors != nil {
			return &vf
		}
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: fmt.Sprintf("server error: %s", http.StatusText(status))}
}
