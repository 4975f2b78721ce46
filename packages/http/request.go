package http

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Method is one of the four HTTP methods the executor accepts.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// ParseMethod resolves a caller-supplied method string into the closed
// method set, case-insensitively. Anything outside the set is an
// ErrUnsupportedMethod.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "PUT":
		return MethodPut, nil
	case "DELETE":
		return MethodDelete, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, s)
	}
}

// Request describes one outbound HTTP call. Username and password are
// either both set or both empty; partial credentials count as none.
type Request struct {
	Method   string
	URL      string
	Headers  map[string]string
	Body     string
	Username string
	Password string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetCredentials(username, password string) *Request {
	r.Username = username
	r.Password = password
	return r
}

// HasCredentials reports whether both username and password are set.
func (r *Request) HasCredentials() bool {
	return r.Username != "" && r.Password != ""
}

// basicAuthorization builds a Basic Authorization header value.
func basicAuthorization(username, password string) string {
	creds := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}
