package rawhttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/panjf2000/gnet/v2"
	"golang.org/x/time/rate"

	"github.com/rawhttp/rawhttp/log"
)

// Handler handles one parsed request and returns the response to send
// back. The request's body, when present, is already buffered in
// memory. Returning nil produces a 500 response.
type Handler func(req *Request) *Response

// ServerConfig represents the TCP server helper configuration.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Multicore runs the event loop on all CPU cores.
	Multicore bool

	// Options is the leniency policy for parsing incoming requests.
	Options Options

	// RateLimit caps accepted connections per second; 0 means no limit.
	RateLimit rate.Limit

	// RateBurst is the burst size for the connection rate limiter.
	RateBurst int

	// Logger receives server lifecycle and error events.
	Logger *log.Logger

	// DisableStartupMessage suppresses the listening log line.
	DisableStartupMessage bool
}

// DefaultServerConfig returns a server configuration suitable for
// local testing: all cores, lenient parsing, no rate limit.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		Multicore: true,
		Options:   DefaultOptions(),
		RateBurst: 64,
		Logger:    log.Default(),
	}
}

// Server is a minimal TCP server that parses raw HTTP/1.x requests and
// writes handler-produced responses. It handles one request per
// traffic event and does not pipeline; it exists to exercise the
// library end-to-end, not to replace a production HTTP stack.
type Server struct {
	engine *serverEngine
	cfg    ServerConfig
}

type serverEngine struct {
	gnet.BuiltinEventEngine

	eng     gnet.Engine
	parser  *Parser
	handler Handler
	limiter *rate.Limiter
	logger  *log.Logger
	allowLF bool
}

// NewServer creates a server that dispatches every parsed request to
// handler. With no config the DefaultServerConfig is used.
func NewServer(handler Handler, config ...ServerConfig) *Server {
	cfg := DefaultServerConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}
	return &Server{
		cfg: cfg,
		engine: &serverEngine{
			parser:  NewParser(cfg.Options),
			handler: handler,
			limiter: limiter,
			logger:  cfg.Logger,
			allowLF: cfg.Options.AllowNewLineWithoutReturn,
		},
	}
}

// ListenAndServe runs the event loop until Shutdown is called or the
// loop fails.
func (s *Server) ListenAndServe() error {
	if !s.cfg.DisableStartupMessage {
		s.cfg.Logger.Info().Msgf("rawhttp server listening on %s", s.cfg.Addr)
	}
	return gnet.Run(s.engine, "tcp://"+s.cfg.Addr, gnet.WithMulticore(s.cfg.Multicore))
}

// Shutdown stops the event loop.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.engine.eng.Stop(ctx)
}

func (e *serverEngine) OnBoot(eng gnet.Engine) gnet.Action {
	e.eng = eng
	return gnet.None
}

func (e *serverEngine) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	if e.limiter != nil && !e.limiter.Allow() {
		e.logger.Warn().Msgf("connection from %s rejected by rate limit", c.RemoteAddr())
		return nil, gnet.Close
	}
	return nil, gnet.None
}

var (
	headerBoundary = []byte("\r\n\r\n")
	bareLFBoundary = []byte("\n\n")
)

// headerComplete reports whether buf holds a full header block yet.
func (e *serverEngine) headerComplete(buf []byte) bool {
	if bytes.Contains(buf, headerBoundary) {
		return true
	}
	return e.allowLF && bytes.Contains(buf, bareLFBoundary)
}

func (e *serverEngine) OnTraffic(c gnet.Conn) gnet.Action {
	buf, err := c.Peek(-1)
	if err != nil {
		return gnet.Close
	}
	if !e.headerComplete(buf) {
		// Wait for the rest of the header block.
		return gnet.None
	}

	req, err := e.parser.ParseRequestBytes(append([]byte(nil), buf...))
	var eagerReq *Request
	if err == nil {
		eagerReq, err = req.Eagerly()
	}
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Body bytes still in flight.
			return gnet.None
		}
		e.logger.Debug().Err(err).Msgf("rejecting request from %s", c.RemoteAddr())
		e.reply(c, NewResponse(StatusBadRequest, []byte(err.Error())))
		return gnet.Close
	}
	c.Discard(-1)
	eagerReq.Sender = c.RemoteAddr()

	res := e.handler(eagerReq)
	if res == nil {
		res = NewResponse(StatusInternalServerError, nil)
	}
	if err := e.reply(c, res); err != nil {
		e.logger.Error().Err(err).Msg("writing response")
		return gnet.Close
	}
	if closeRequested(eagerReq) {
		return gnet.Close
	}
	return gnet.None
}

func (e *serverEngine) reply(c gnet.Conn, res *Response) error {
	b, err := res.Bytes()
	if err != nil {
		return err
	}
	_, err = c.Write(b)
	return err
}

// closeRequested reports whether the exchange must end the connection:
// an explicit Connection: close, or an HTTP/1.0 request without
// keep-alive.
func closeRequested(req *Request) bool {
	connection, _ := req.Headers.GetFirst("Connection")
	if strings.EqualFold(strings.TrimSpace(connection), "close") {
		return true
	}
	if req.Line.Version == HTTP10 {
		return !strings.EqualFold(strings.TrimSpace(connection), "keep-alive")
	}
	return false
}
