package http

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do_UnsupportedMethod(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Do(&Request{Method: "PATCH", URL: server.URL})

	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Equal(t, 0, calls, "no network call should be attempted")
}

func TestClient_Do_MethodCaseInsensitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(&Request{Method: "delete", URL: server.URL})

	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)
	assert.True(t, resp.Success)
}

func TestClient_Do_NoCredentials_NoProbe(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(&Request{Method: "GET", URL: server.URL})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, calls)
}

func TestClient_Do_PartialCredentials_NoProbe(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Do(&Request{Method: "GET", URL: server.URL, Username: "admin"})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_Do_DigestNegotiation(t *testing.T) {
	const (
		username = "admin"
		password = "secret"
		realm    = "public"
		nonce    = "dcd98b7102dd2f0e8b11d0f600bfb0c093"
	)

	var mu sync.Mutex
	var bodies []string
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls++
		bodies = append(bodies, string(body))
		mu.Unlock()

		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Digest realm="%s", nonce="%s", qop="auth"`, realm, nonce))
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("challenge body"))
			return
		}

		assert.True(t, strings.HasPrefix(auth, "Digest "))
		params := ParseWWWAuthenticate(auth)

		expected := &DigestAuth{
			Username: username,
			Password: password,
			Realm:    realm,
			Nonce:    nonce,
			URI:      "/eval?db=Documents",
			Qop:      "auth",
			Nc:       params["nc"],
			Cnonce:   params["cnonce"],
			Method:   "POST",
		}

		assert.Equal(t, username, params["username"])
		assert.Equal(t, realm, params["realm"])
		assert.Equal(t, nonce, params["nonce"])
		assert.Equal(t, "/eval?db=Documents", params["uri"])
		assert.Equal(t, "00000001", params["nc"])
		assert.Equal(t, expected.ComputeResponse(), params["response"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("real body"))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(&Request{
		Method:   "POST",
		URL:      server.URL + "/eval?db=Documents",
		Body:     "xquery=1+1",
		Username: username,
		Password: password,
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.True(t, resp.Success)
	assert.Equal(t, "real body", resp.Body)
	assert.Equal(t, 2, calls, "probe plus real request")
	assert.Equal(t, []string{"xquery=1+1", "xquery=1+1"}, bodies, "probe body must match the real request")
}

func TestClient_Do_Probe200_NoAuthAttached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "call %d", calls)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(&Request{
		Method:   "GET",
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "call 2", resp.Body, "probe body must never surface to the caller")
}

func TestClient_Do_BasicChallenge_SendsNoAuth(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("WWW-Authenticate", `Basic realm="x"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(&Request{
		Method:   "GET",
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, 401, resp.Status)
	assert.False(t, resp.Success)
	assert.Equal(t, 2, calls)
}

// failFirstTransport fails the first round trip and delegates the rest.
type failFirstTransport struct {
	mu     sync.Mutex
	failed bool
	next   http.RoundTripper
}

func (t *failFirstTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	first := !t.failed
	t.failed = true
	t.mu.Unlock()

	if first {
		return nil, fmt.Errorf("connection refused")
	}
	return t.next.RoundTrip(req)
}

func TestClient_Do_ProbeTransportFailure_BasicFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// base64("admin:secret")
		assert.Equal(t, "Basic YWRtaW46c2VjcmV0", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTransport(&failFirstTransport{next: http.DefaultTransport}))
	resp, err := client.Do(&Request{
		Method:   "GET",
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_Do_BareDigestChallenge(t *testing.T) {
	// A bare "Digest" challenge still announces the scheme: directives
	// resolve to empty strings and a header is computed from them.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", "Digest")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		params := ParseWWWAuthenticate(auth)
		assert.Equal(t, "admin", params["username"])
		assert.Equal(t, "", params["realm"])
		assert.Equal(t, "/", params["uri"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(&Request{
		Method:   "GET",
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_Do_RequestFailed(t *testing.T) {
	client := NewClient(WithTimeout(2 * time.Second))
	_, err := client.Do(&Request{Method: "GET", URL: "http://127.0.0.1:1"})

	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_Do_CORSHeadersOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "https://example.com")
		w.Header().Set("X-Server", "upstream")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Get(server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "GET, POST, OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type", resp.Headers["Access-Control-Allow-Headers"])
	assert.Equal(t, "upstream", resp.Headers["X-Server"])
}

func TestClient_Do_SuccessFlag(t *testing.T) {
	statuses := []struct {
		code    int
		success bool
	}{
		{200, true},
		{201, true},
		{299, true},
		{301, false},
		{404, false},
		{500, false},
	}

	for _, tt := range statuses {
		t.Run(fmt.Sprintf("%d", tt.code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := NewClient()
			resp, err := client.Get(server.URL, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.Status)
			assert.Equal(t, tt.success, resp.Success)
		})
	}
}

func TestClient_Do_HeadersApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		assert.Equal(t, "mlconsole", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeader("User-Agent", "mlconsole"))
	resp, err := client.Do(&Request{
		Method:  "GET",
		URL:     server.URL,
		Headers: map[string]string{"Content-Type": "application/xml"},
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}
