package rawhttp

import (
	"context"
	"net"
	"time"
)

// ClientConfig represents the TCP client helper configuration.
type ClientConfig struct {
	// Timeout bounds the whole exchange (dial, write, read). Zero
	// means no timeout; callers can still cancel through the context.
	Timeout time.Duration

	// Options is the leniency policy for parsing the response.
	Options Options
}

// DefaultClientConfig returns a client configuration with a 10 second
// exchange timeout and lenient parsing.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 10 * time.Second,
		Options: DefaultOptions(),
	}
}

// Client sends raw HTTP/1.x requests over plain TCP, one connection
// per exchange. No redirects, no retries, no connection reuse.
type Client struct {
	cfg    ClientConfig
	parser *Parser
}

// NewClient creates a client. With no config the DefaultClientConfig
// is used.
func NewClient(config ...ClientConfig) *Client {
	cfg := DefaultClientConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	return &Client{cfg: cfg, parser: NewParser(cfg.Options)}
}

// Send dials the request's authority, writes the request and returns
// the fully-buffered response. The connection is read to completion
// (including close-terminated bodies) and closed before returning.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	addr, err := authorityAddr(req)
	if err != nil {
		return nil, err
	}
	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	var deadline time.Time
	if c.cfg.Timeout > 0 {
		deadline = time.Now().Add(c.cfg.Timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		conn.SetDeadline(deadline)
	}
	// Cancelling the context unblocks pending reads and writes.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()
	if _, err := req.WriteTo(conn); err != nil {
		conn.Close()
		return nil, err
	}
	res, err := c.parser.ParseResponseFor(&req.Line, conn)
	if err != nil {
		// The parser closes the connection on framing errors; closing
		// again is harmless for I/O errors.
		conn.Close()
		return nil, err
	}
	if res.Body == nil {
		conn.Close()
		return res, nil
	}
	eager, err := res.Eagerly()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return eager, nil
}

// authorityAddr turns the request's URI authority into a dialable
// host:port, defaulting the port to 80.
func authorityAddr(req *Request) (string, error) {
	host := req.Line.URI.Host
	if host == "" {
		return "", &InvalidRequestError{Message: "Missing host in request line", Line: 1}
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "80")
	}
	return host, nil
}
