package rawhttp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParseRequestLine(t *testing.T, text string, opts Options) RequestLine {
	t.Helper()
	line, err := parseRequestLine(metadataLine{text: text, number: 1}, opts, requestError)
	require.NoError(t, err)
	return line
}

// TestParseRequestLineFull tests the three-token form
func TestParseRequestLineFull(t *testing.T) {
	line := mustParseRequestLine(t, "GET /path?q=1 HTTP/1.0", StrictOptions())
	require.Equal(t, "GET", line.Method)
	require.Equal(t, HTTP10, line.Version)
	require.Equal(t, "/path", line.URI.Path)
	require.Equal(t, "q=1", line.URI.RawQuery)
}

// TestParseRequestLineTwoTokens tests version defaulting
func TestParseRequestLineTwoTokens(t *testing.T) {
	// Lenient mode assigns HTTP/1.1
	line := mustParseRequestLine(t, "GET /index.html", DefaultOptions())
	require.Equal(t, HTTP11, line.Version)

	// Strict mode rejects the two-token form
	_, err := parseRequestLine(metadataLine{text: "GET /index.html", number: 1}, StrictOptions(), requestError)
	var reqErr *InvalidRequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, 1, reqErr.Line)
}

// TestParseRequestLineHostInTarget tests the http:// prefixing of
// non-http targets
func TestParseRequestLineHostInTarget(t *testing.T) {
	line := mustParseRequestLine(t, "GET host.example/path", DefaultOptions())
	require.Equal(t, "host.example", line.URI.Host)
	require.Equal(t, "/path", line.URI.Path)
	require.Equal(t, "http", line.URI.Scheme)
}

// TestParseRequestLineAbsoluteTarget tests that absolute URIs pass
// through unprefixed
func TestParseRequestLineAbsoluteTarget(t *testing.T) {
	line := mustParseRequestLine(t, "POST http://example.com:8080/x HTTP/1.1", DefaultOptions())
	require.Equal(t, "example.com:8080", line.URI.Host)
	require.Equal(t, "/x", line.URI.Path)
}

// TestCreateURIHttpxQuirk tests that any target starting with the four
// bytes "http" skips the prefix, httpx included
func TestCreateURIHttpxQuirk(t *testing.T) {
	uri, err := createURI("httpx://weird/path")
	require.NoError(t, err)
	require.Equal(t, "httpx", uri.Scheme)
	require.Equal(t, "weird", uri.Host)
}

// TestParseRequestLineInvalidMethod tests method token validation
func TestParseRequestLineInvalidMethod(t *testing.T) {
	for _, text := range []string{"G@T / HTTP/1.1", "{GET} / HTTP/1.1"} {
		_, err := parseRequestLine(metadataLine{text: text, number: 1}, DefaultOptions(), requestError)
		var reqErr *InvalidRequestError
		require.ErrorAs(t, err, &reqErr, "line %q", text)
		require.Contains(t, reqErr.Message, "method")
	}
}

// TestParseRequestLineInvalidVersion tests version token validation
func TestParseRequestLineInvalidVersion(t *testing.T) {
	_, err := parseRequestLine(metadataLine{text: "GET / HTTP/2.0", number: 1}, DefaultOptions(), requestError)
	var reqErr *InvalidRequestError
	require.ErrorAs(t, err, &reqErr)
	require.Contains(t, reqErr.Message, "version")
}

// TestParseRequestLineTokenCount tests rejection of 1 and 4+ tokens
func TestParseRequestLineTokenCount(t *testing.T) {
	for _, text := range []string{"GET", "GET /a /b HTTP/1.1"} {
		_, err := parseRequestLine(metadataLine{text: text, number: 1}, DefaultOptions(), requestError)
		require.Error(t, err, "line %q", text)
	}
}

// TestRequestLineString tests origin-form serialization
func TestRequestLineString(t *testing.T) {
	line := mustParseRequestLine(t, "GET http://example.com/a?b=c HTTP/1.1", DefaultOptions())
	require.Equal(t, "GET /a?b=c HTTP/1.1", line.String())

	// An empty path serializes as "/"
	line = mustParseRequestLine(t, "GET example.com HTTP/1.1", DefaultOptions())
	require.Equal(t, "GET / HTTP/1.1", line.String())
}

// TestRequestLineWithHost tests rebuilding the authority
func TestRequestLineWithHost(t *testing.T) {
	line := mustParseRequestLine(t, "GET /p HTTP/1.1", DefaultOptions())
	require.Empty(t, line.URI.Host)

	rebuilt, err := line.WithHost("example.com:8081")
	require.NoError(t, err)
	require.Equal(t, "example.com:8081", rebuilt.URI.Host)
	require.Equal(t, "/p", rebuilt.URI.Path)

	// The original is unchanged
	require.Empty(t, line.URI.Host)
}

// TestRequestLineWithHostInvalid tests authority validation
func TestRequestLineWithHostInvalid(t *testing.T) {
	line := mustParseRequestLine(t, "GET /p HTTP/1.1", DefaultOptions())
	for _, host := range []string{"exa mple.com", "a/b", "a?b"} {
		_, err := line.WithHost(host)
		require.Error(t, err, "host %q", host)
	}
}
