package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Response is the normalized result handed back to the caller. The
// caller owns it exclusively; nothing is shared between calls.
type Response struct {
	Status  int
	Headers map[string]string
	Body    string
	Success bool
}

// newResponse reads and closes the transport response and normalizes
// it: headers copied, the CORS trio force-set, Success derived from
// the status range.
func newResponse(httpResp *http.Response) (*Response, error) {
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBodyReadFailed, err)
	}

	headers := make(map[string]string, len(httpResp.Header)+3)
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	// Overrides whatever the server sent for these names. The hosting
	// shell renders responses in a webview that expects them.
	headers["Access-Control-Allow-Origin"] = "*"
	headers["Access-Control-Allow-Methods"] = "GET, POST, OPTIONS"
	headers["Access-Control-Allow-Headers"] = "Content-Type"

	return &Response{
		Status:  httpResp.StatusCode,
		Headers: headers,
		Body:    string(body),
		Success: httpResp.StatusCode >= 200 && httpResp.StatusCode < 300,
	}, nil
}

// Header returns a header value by case-insensitive name lookup.
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}
