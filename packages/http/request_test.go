package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected Method
		wantErr  bool
	}{
		{"GET", MethodGet, false},
		{"get", MethodGet, false},
		{"Post", MethodPost, false},
		{"PUT", MethodPut, false},
		{"delete", MethodDelete, false},
		{"PATCH", "", true},
		{"HEAD", "", true},
		{"OPTIONS", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := ParseMethod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestRequest_HasCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		expected bool
	}{
		{"both set", "admin", "secret", true},
		{"username only", "admin", "", false},
		{"password only", "", "secret", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Request{Username: tt.username, Password: tt.password}
			assert.Equal(t, tt.expected, r.HasCredentials())
		})
	}
}

func TestRequest_Builders(t *testing.T) {
	r := NewRequest("POST", "http://localhost:8000/eval").
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("xquery=fn:current-dateTime()").
		SetCredentials("admin", "admin")

	assert.Equal(t, "POST", r.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", r.Headers["Content-Type"])
	assert.Equal(t, "xquery=fn:current-dateTime()", r.Body)
	assert.True(t, r.HasCredentials())
}

func TestBasicAuthorization(t *testing.T) {
	// base64("Aladdin:open sesame") per RFC 2617 section 2
	assert.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", basicAuthorization("Aladdin", "open sesame"))
}
