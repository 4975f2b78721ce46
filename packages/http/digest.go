package http

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	neturl "net/url"
	"strings"
)

// DigestAuth holds the parameters combined into an RFC 2617 digest
// response. Nc is always "00000001": a fresh challenge is negotiated
// per call, so the counter never advances.
type DigestAuth struct {
	Username string
	Password string
	Realm    string
	Nonce    string
	URI      string
	Qop      string
	Nc       string
	Cnonce   string
	Opaque   string
	Method   string
}

// ParseWWWAuthenticate parses a Digest challenge header into its
// directives. Malformed segments are skipped, never an error; missing
// directives read back as empty strings.
func ParseWWWAuthenticate(header string) map[string]string {
	result := make(map[string]string)

	header = strings.TrimPrefix(header, "Digest ")

	parts := strings.Split(header, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if idx := strings.Index(part, "="); idx != -1 {
			key := strings.TrimSpace(part[:idx])
			value := strings.TrimSpace(part[idx+1:])
			value = strings.Trim(value, `"`)
			result[key] = value
		}
	}

	return result
}

// ComputeResponse calculates the digest response hash.
func (d *DigestAuth) ComputeResponse() string {
	// HA1 = MD5(username:realm:password)
	ha1 := md5Hash(fmt.Sprintf("%s:%s:%s", d.Username, d.Realm, d.Password))

	// HA2 = MD5(method:uri)
	ha2 := md5Hash(fmt.Sprintf("%s:%s", d.Method, d.URI))

	if d.Qop != "" {
		return md5Hash(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, d.Nonce, d.Nc, d.Cnonce, d.Qop, ha2))
	}
	return md5Hash(fmt.Sprintf("%s:%s:%s", ha1, d.Nonce, ha2))
}

// AuthorizationHeader assembles the Authorization header value. Per
// the RFC 2617 grammar, qop and nc are emitted unquoted.
func (d *DigestAuth) AuthorizationHeader() string {
	response := d.ComputeResponse()

	parts := []string{
		fmt.Sprintf(`username="%s"`, d.Username),
		fmt.Sprintf(`realm="%s"`, d.Realm),
		fmt.Sprintf(`nonce="%s"`, d.Nonce),
		fmt.Sprintf(`uri="%s"`, d.URI),
		fmt.Sprintf(`response="%s"`, response),
	}

	if d.Qop != "" {
		parts = append(parts, fmt.Sprintf(`qop=%s`, d.Qop))
		parts = append(parts, fmt.Sprintf(`nc=%s`, d.Nc))
		parts = append(parts, fmt.Sprintf(`cnonce="%s"`, d.Cnonce))
	}

	if d.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, d.Opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

// BuildDigestAuthorization parses a Digest challenge and computes the
// full Authorization header for the given credentials and request.
// The method string is hashed as the caller supplied it.
func BuildDigestAuthorization(username, password, method, rawURL, challenge string) (string, error) {
	params := ParseWWWAuthenticate(challenge)

	uri, err := digestURI(rawURL)
	if err != nil {
		return "", err
	}

	cnonce, err := generateCnonce()
	if err != nil {
		return "", err
	}

	auth := &DigestAuth{
		Username: username,
		Password: password,
		Realm:    params["realm"],
		Nonce:    params["nonce"],
		URI:      uri,
		Qop:      params["qop"],
		Nc:       "00000001",
		Cnonce:   cnonce,
		Opaque:   params["opaque"],
		Method:   method,
	}

	return auth.AuthorizationHeader(), nil
}

// digestURI derives the URI hashed into HA2: the URL path, plus the
// raw query when present.
func digestURI(rawURL string) (string, error) {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	uri := u.Path
	if uri == "" {
		uri = "/"
	}
	if u.RawQuery != "" {
		uri += "?" + u.RawQuery
	}
	return uri, nil
}

// generateCnonce generates a random client nonce as lowercase hex.
func generateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hash(s string) string {
	h := md5.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
