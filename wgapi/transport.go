package wgapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent identifies this library to the API
const DefaultUserAgent = "wgapi-go (https://github.com/s0up4200/wgapi)"

// Response is the decoded API envelope
type Response struct {
	Status string
	Meta   json.RawMessage
	// Data is the "data" field, or the whole body when the field is absent
	Data  json.RawMessage
	Error *RequestError
}

// Transport performs a single GET against the API
type Transport interface {
	Get(ctx context.Context, endpoint string, query url.Values) (*Response, error)
}

// HTTPTransport is the net/http backed Transport
type HTTPTransport struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPTransport creates a transport sending userAgent on every request
func NewHTTPTransport(httpClient *http.Client, userAgent string) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPTransport{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Meta   json.RawMessage `json:"meta"`
	Data   json.RawMessage `json:"data"`
	Error  *RequestError   `json:"error"`
}

// Get implements Transport
func (t *HTTPTransport) Get(ctx context.Context, endpoint string, query url.Values) (*Response, error) {
	requestURL := endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return ParseResponse(endpoint, resp.StatusCode, body)
}

// ParseResponse decodes an API envelope. An HTTP error status is only fatal
// when the body is not a JSON envelope.
func ParseResponse(endpoint string, statusCode int, body []byte) (*Response, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if statusCode != 0 && statusCode != http.StatusOK {
			return nil, &TransportError{URL: endpoint, StatusCode: statusCode, Err: fmt.Errorf("unexpected response: %s", truncate(string(body), 200))}
		}
		return nil, &TransportError{URL: endpoint, StatusCode: statusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if env.Status == "error" {
		if env.Error == nil {
			env.Error = &RequestError{Message: "UNKNOWN_ERROR"}
		}
		return &Response{Status: env.Status, Error: env.Error}, nil
	}

	data := env.Data
	if data == nil {
		data = bytes.TrimSpace(body)
	}
	return &Response{
		Status: env.Status,
		Meta:   env.Meta,
		Data:   data,
	}, nil
}

// truncate shortens s to limit runes, marking the cut with "..."
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
