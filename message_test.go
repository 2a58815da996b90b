package rawhttp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewRequest tests the in-memory request constructor
func TestNewRequest(t *testing.T) {
	req, err := NewRequest("POST", "example.com/api", []byte(`{"a":1}`))
	require.NoError(t, err)

	require.Equal(t, "POST", req.Line.Method)
	require.Equal(t, "example.com", req.Line.URI.Host)
	require.Equal(t, HTTP11, req.Line.Version)

	host, _ := req.Headers.GetFirst("Host")
	require.Equal(t, "example.com", host)
	length, _ := req.Headers.GetFirst("Content-Length")
	require.Equal(t, "7", length)

	out, err := req.Bytes()
	require.NoError(t, err)
	require.Equal(t, "POST /api HTTP/1.1\r\nHost: example.com\r\nContent-Length: 7\r\n\r\n{\"a\":1}", string(out))
}

// TestNewRequestWithoutBody tests that no framing headers appear for a
// nil body
func TestNewRequestWithoutBody(t *testing.T) {
	req, err := NewRequest("GET", "example.com", nil)
	require.NoError(t, err)
	require.Nil(t, req.Body)
	require.False(t, req.Headers.Contains("Content-Length"))
}

// TestNewRequestNeedsAuthority tests rejection of targets without a
// host
func TestNewRequestNeedsAuthority(t *testing.T) {
	_, err := NewRequest("GET", "/only/a/path", nil)
	require.Error(t, err)
}

// TestNewResponse tests the in-memory response constructor
func TestNewResponse(t *testing.T) {
	res := NewResponse(StatusNotFound, []byte("gone"))
	require.Equal(t, 404, res.Line.Code)
	require.Equal(t, "Not Found", res.Line.Reason)

	out, err := res.Bytes()
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 404 Not Found\r\nContent-Length: 4\r\n\r\ngone", string(out))
}

// TestNewResponseEmptyBody tests the zero Content-Length case
func TestNewResponseEmptyBody(t *testing.T) {
	res := NewResponse(StatusNoContent, nil)
	require.Nil(t, res.Body)

	out, err := res.Bytes()
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 204 No Content\r\nContent-Length: 0\r\n\r\n", string(out))
}

// TestEagerlyWithoutBody tests that body-less messages pass through
func TestEagerlyWithoutBody(t *testing.T) {
	req, err := NewParser().ParseRequestBytes([]byte("GET / HTTP/1.1\r\nHost: a\r\n\r\n"))
	require.NoError(t, err)

	same, err := req.Eagerly()
	require.NoError(t, err)
	require.Same(t, req, same)
}

// TestEagerlyKeepsOriginalImmutable tests that eagerizing returns a new
// message and leaves the original's metadata intact
func TestEagerlyKeepsOriginalImmutable(t *testing.T) {
	res, err := NewParser().ParseResponseBytes([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"))
	require.NoError(t, err)

	eager, err := res.Eagerly()
	require.NoError(t, err)
	require.NotSame(t, res, eager)
	require.Equal(t, res.Line, eager.Line)
	require.Same(t, res.Headers, eager.Headers)

	data, err := eager.Body.Decode()
	require.NoError(t, err)
	require.Equal(t, "ok", string(data))
}

// TestStatusText tests the reason-phrase table
func TestStatusText(t *testing.T) {
	require.Equal(t, "OK", StatusText(StatusOK))
	require.Equal(t, "Bad Request", StatusText(StatusBadRequest))
	require.Equal(t, "Internal Server Error", StatusText(StatusInternalServerError))
	require.Empty(t, StatusText(999))
}
