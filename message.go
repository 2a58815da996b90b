package rawhttp

import (
	"net"
	"strconv"
)

// Request is a parsed HTTP request. The start-line, headers and body
// handle are immutable snapshots; a nil Body means no body is expected.
// Sender optionally carries the remote address the request arrived
// from.
type Request struct {
	Line    RequestLine
	Headers *Header
	Body    *BodyReader
	Sender  net.Addr
}

// Eagerly drains the request body into memory, closing the source
// stream, and returns a request whose body can be re-read and
// re-serialized. A request without a body is returned as-is.
func (r *Request) Eagerly() (*Request, error) {
	if r.Body == nil {
		return r, nil
	}
	eager, err := r.Body.Eager()
	if err != nil {
		return nil, err
	}
	clone := *r
	clone.Body = eager.asReader()
	return &clone, nil
}

// Response is a parsed HTTP response. A nil Body means no body is
// expected for the exchange the response belongs to.
type Response struct {
	Line    StatusLine
	Headers *Header
	Body    *BodyReader
}

// Eagerly drains the response body into memory, closing the source
// stream, and returns a response whose body can be re-read and
// re-serialized. A response without a body is returned as-is.
func (r *Response) Eagerly() (*Response, error) {
	if r.Body == nil {
		return r, nil
	}
	eager, err := r.Body.Eager()
	if err != nil {
		return nil, err
	}
	clone := *r
	clone.Body = eager.asReader()
	return &clone, nil
}

// NewRequest builds an in-memory request with the given method and
// target. A non-nil body is framed with a Content-Length header; the
// Host header is synthesized from the target's authority.
func NewRequest(method, target string, body []byte) (*Request, error) {
	uri, err := createURI(target)
	if err != nil {
		return nil, err
	}
	if uri.Host == "" {
		return nil, &InvalidRequestError{Message: "Missing host in request target: " + target, Line: 0}
	}
	builder := NewHeaderBuilder().With("Host", uri.Host)
	var reader *BodyReader
	if body != nil {
		builder.With("Content-Length", strconv.Itoa(len(body)))
		eager := &EagerBody{typ: BodyContentLength, data: body}
		reader = eager.asReader()
	}
	headers, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Request{
		Line:    RequestLine{Method: method, URI: uri, Version: HTTP11},
		Headers: headers,
		Body:    reader,
	}, nil
}

// NewResponse builds an in-memory response with the given status code
// and body. The reason phrase comes from the status table and a
// Content-Length header is always set, so the response can be written
// on a keep-alive connection.
func NewResponse(code int, body []byte) *Response {
	headers, _ := NewHeaderBuilder().
		With("Content-Length", strconv.Itoa(len(body))).
		Build()
	var reader *BodyReader
	if len(body) > 0 {
		eager := &EagerBody{typ: BodyContentLength, data: body}
		reader = eager.asReader()
	}
	return &Response{
		Line:    StatusLine{Version: HTTP11, Code: code, Reason: StatusText(code)},
		Headers: headers,
		Body:    reader,
	}
}
