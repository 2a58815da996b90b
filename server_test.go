package rawhttp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// TestDefaultServerConfig tests the default server settings
func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	require.Equal(t, ":8080", cfg.Addr)
	require.True(t, cfg.Multicore)
	require.Equal(t, DefaultOptions(), cfg.Options)
	require.Zero(t, cfg.RateLimit)
	require.NotNil(t, cfg.Logger)
}

// TestNewServerWiring tests handler and limiter wiring
func TestNewServerWiring(t *testing.T) {
	handler := func(req *Request) *Response { return NewResponse(StatusOK, nil) }

	s := NewServer(handler)
	require.NotNil(t, s.engine)
	require.Nil(t, s.engine.limiter)

	cfg := DefaultServerConfig()
	cfg.RateLimit = rate.Limit(5)
	cfg.RateBurst = 0 // sanitized to a burst of 1
	s = NewServer(handler, cfg)
	require.NotNil(t, s.engine.limiter)
	require.Equal(t, 1, s.engine.limiter.Burst())
}

// TestHeaderComplete tests the traffic-event boundary check
func TestHeaderComplete(t *testing.T) {
	lenient := &serverEngine{allowLF: true}
	strict := &serverEngine{allowLF: false}

	require.True(t, strict.headerComplete([]byte("GET / HTTP/1.1\r\nHost: a\r\n\r\n")))
	require.False(t, strict.headerComplete([]byte("GET / HTTP/1.1\r\nHost: a\r\n")))

	// Bare-LF boundaries count only under the leniency switch
	require.True(t, lenient.headerComplete([]byte("GET / HTTP/1.1\nHost: a\n\n")))
	require.False(t, strict.headerComplete([]byte("GET / HTTP/1.1\nHost: a\n\n")))
}

// TestCloseRequested tests connection teardown decisions
func TestCloseRequested(t *testing.T) {
	parse := func(input string) *Request {
		req, err := NewParser().ParseRequestBytes([]byte(input))
		require.NoError(t, err)
		return req
	}

	// HTTP/1.1 keeps the connection open by default
	require.False(t, closeRequested(parse("GET / HTTP/1.1\r\nHost: a\r\n\r\n")))
	require.True(t, closeRequested(parse("GET / HTTP/1.1\r\nHost: a\r\nConnection: close\r\n\r\n")))
	require.True(t, closeRequested(parse("GET / HTTP/1.1\r\nHost: a\r\nConnection: CLOSE\r\n\r\n")))

	// HTTP/1.0 closes unless keep-alive is requested
	require.True(t, closeRequested(parse("GET / HTTP/1.0\r\nHost: a\r\n\r\n")))
	require.False(t, closeRequested(parse("GET / HTTP/1.0\r\nHost: a\r\nConnection: keep-alive\r\n\r\n")))
}
