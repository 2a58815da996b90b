package rawhttp

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parser turns raw HTTP/1.x message bytes into structured requests and
// responses. A Parser holds only its (immutable) options; instances are
// stateless and safe to share between goroutines.
type Parser struct {
	opts Options
}

// NewParser creates a parser. With no arguments the lenient
// DefaultOptions are used.
func NewParser(opts ...Options) *Parser {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return &Parser{opts: o}
}

// Options returns the parser's option set.
func (p *Parser) Options() Options {
	return p.opts
}

// ParseRequest parses an HTTP request off src. The returned request's
// body reader, when present, lazily wraps the remaining bytes of src;
// no body bytes are consumed by this call. If src is an io.Closer it is
// closed on any parse error, and ownership otherwise transfers to the
// body reader (or stays with the caller when there is no body).
func (p *Parser) ParseRequest(src io.Reader) (*Request, error) {
	scan := newMetadataScanner(src, p.opts, requestError)
	lines, err := scan.readLines()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		scan.close()
		return nil, requestError("No content", 0)
	}
	requestLine, err := parseRequestLine(lines[0], p.opts, requestError)
	if err != nil {
		scan.close()
		return nil, err
	}
	headers, err := parseHeaderLines(lines[1:], requestError)
	if err != nil {
		scan.close()
		return nil, err
	}
	requestLine, headers, err = reconcileHost(requestLine, headers, p.opts)
	if err != nil {
		scan.close()
		return nil, err
	}
	var body *BodyReader
	if RequestHasBody(headers) {
		typ, length, err := bodyTypeOf(headers, requestError)
		if err != nil {
			scan.close()
			return nil, err
		}
		body = newLazyBody(typ, length, scan, requestError)
	}
	return &Request{Line: requestLine, Headers: headers, Body: body}, nil
}

// ParseRequestBytes parses an HTTP request from an in-memory buffer.
func (p *Parser) ParseRequestBytes(b []byte) (*Request, error) {
	return p.ParseRequest(bytes.NewReader(b))
}

// ParseRequestFile parses an HTTP request from a file. The returned
// message's body, when present, lazily reads from the open file; the
// file is closed once the body is consumed, or on parse errors.
func (p *Parser) ParseRequestFile(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	req, err := p.ParseRequest(f)
	if err != nil {
		return nil, err
	}
	if req.Body == nil {
		f.Close()
	}
	return req, nil
}

// ParseResponse parses an HTTP response off src with no originating
// request in sight, so only the status code decides body presence.
func (p *Parser) ParseResponse(src io.Reader) (*Response, error) {
	return p.ParseResponseFor(nil, src)
}

// ParseResponseFor parses an HTTP response to a known request, letting
// HEAD and CONNECT suppress the body per RFC 7230 §3.3. requestLine may
// be nil. Body bytes are not consumed; for body-less responses any
// remaining bytes stay unread on src.
func (p *Parser) ParseResponseFor(requestLine *RequestLine, src io.Reader) (*Response, error) {
	scan := newMetadataScanner(src, p.opts, responseError)
	lines, err := scan.readLines()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		scan.close()
		return nil, responseError("No content", 0)
	}
	statusLine, err := parseStatusLine(lines[0], p.opts, responseError)
	if err != nil {
		scan.close()
		return nil, err
	}
	headers, err := parseHeaderLines(lines[1:], responseError)
	if err != nil {
		scan.close()
		return nil, err
	}
	var body *BodyReader
	if ResponseHasBody(statusLine, requestLine) {
		typ, length, err := bodyTypeOf(headers, responseError)
		if err != nil {
			scan.close()
			return nil, err
		}
		body = newLazyBody(typ, length, scan, responseError)
	}
	return &Response{Line: statusLine, Headers: headers, Body: body}, nil
}

// ParseResponseBytes parses an HTTP response from an in-memory buffer.
func (p *Parser) ParseResponseBytes(b []byte) (*Response, error) {
	return p.ParseResponse(bytes.NewReader(b))
}

// ParseResponseFile parses an HTTP response from a file.
func (p *Parser) ParseResponseFile(path string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	res, err := p.ParseResponse(f)
	if err != nil {
		return nil, err
	}
	if res.Body == nil {
		f.Close()
	}
	return res, nil
}

// parseHeaderFieldLine splits one header line into a field. The line
// must be "name ':' [one space] value"; at most one space after the
// colon is consumed, further whitespace stays in the value.
func parseHeaderFieldLine(text string, line int, newError errorFactory) (HeaderField, error) {
	i := strings.IndexByte(text, ':')
	if i <= 0 {
		return HeaderField{}, newError("Invalid header: "+text, line)
	}
	name := text[:i]
	if !isToken(name) {
		return HeaderField{}, newError("Invalid header: "+text, line)
	}
	value := text[i+1:]
	if strings.HasPrefix(value, " ") {
		value = value[1:]
	}
	return HeaderField{Name: name, Value: value, Line: line}, nil
}

// parseHeaderLines builds the header set from the metadata lines after
// the start-line. A trailing empty line, if the scanner handed one
// over, ends the block.
func parseHeaderLines(lines []metadataLine, newError errorFactory) (*Header, error) {
	h := newHeader()
	for _, ln := range lines {
		if ln.text == "" {
			break
		}
		field, err := parseHeaderFieldLine(ln.text, ln.number, newError)
		if err != nil {
			return nil, err
		}
		h.add(field)
	}
	return h, nil
}

// reconcileHost applies the request authority rules: the request-line
// URI and the Host header must end up agreeing, with at most one Host
// header present, synthesizing or rebuilding as the options permit.
func reconcileHost(line RequestLine, headers *Header, opts Options) (RequestLine, *Header, error) {
	hostLines := headers.linesOf("Host")
	switch len(hostLines) {
	case 0:
		if !opts.InsertHostHeaderIfMissing || line.URI.Host == "" {
			return RequestLine{}, nil, requestError("Host header is missing", 1)
		}
		headers.add(HeaderField{Name: "Host", Value: line.URI.Host})
		return line, headers, nil
	case 1:
		field, _ := headers.firstField("Host")
		host := strings.TrimSpace(field.Value)
		if line.URI.Host != "" {
			if !strings.EqualFold(line.URI.Host, host) {
				return RequestLine{}, nil, requestError("Host specified both in Host header and in request line", field.Line)
			}
			return line, headers, nil
		}
		rebuilt, err := line.WithHost(host)
		if err != nil {
			return RequestLine{}, nil, requestError("Invalid host header: "+field.Value, field.Line)
		}
		// Keep the field's original casing; only the value is
		// canonicalized to the rebuilt authority.
		headers.overwrite(HeaderField{Name: field.Name, Value: rebuilt.URI.Host, Line: field.Line})
		return rebuilt, headers, nil
	default:
		return RequestLine{}, nil, requestError("More than one Host header", hostLines[1])
	}
}

// RequestHasBody reports whether a request with the given headers
// carries a body: per RFC 7230 §3.3 that is the case exactly when a
// Content-Length or Transfer-Encoding header is present, regardless of
// the method.
func RequestHasBody(headers *Header) bool {
	return headers.Contains("Content-Length") || headers.Contains("Transfer-Encoding")
}

// ResponseHasBody reports whether a response with the given status-line
// carries a body. requestLine, when known, lets HEAD and CONNECT
// suppress it; 1xx, 204 and 304 responses never have one.
func ResponseHasBody(statusLine StatusLine, requestLine *RequestLine) bool {
	if requestLine != nil {
		if requestLine.Method == "HEAD" {
			return false
		}
		if requestLine.Method == "CONNECT" && statusLine.Code/100 == 2 {
			return false
		}
	}
	code := statusLine.Code
	if code >= 100 && code < 200 {
		return false
	}
	return code != 204 && code != 304
}

// bodyTypeOf decides the framing mode from the headers. A present
// Transfer-Encoding wins over Content-Length and its final coding must
// be "chunked"; a Content-Length must be a non-negative integer; with
// neither header the body runs to EOF.
func bodyTypeOf(headers *Header, newError errorFactory) (BodyType, int64, error) {
	if values := headers.Get("Transfer-Encoding"); len(values) > 0 {
		coding := finalCoding(values)
		if !strings.EqualFold(coding, "chunked") {
			return 0, 0, &UnsupportedEncodingError{Encoding: coding}
		}
		return BodyChunked, -1, nil
	}
	if value, ok := headers.GetFirst("Content-Length"); ok {
		length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || length < 0 {
			return 0, 0, newError("Invalid Content-Length: "+value, headers.linesOf("Content-Length")[0])
		}
		return BodyContentLength, length, nil
	}
	return BodyCloseTerminated, -1, nil
}

// finalCoding returns the last transfer coding across the header's
// comma-separated values.
func finalCoding(values []string) string {
	last := values[len(values)-1]
	if i := strings.LastIndexByte(last, ','); i >= 0 {
		last = last[i+1:]
	}
	return strings.TrimSpace(last)
}

// BodyTypeOf is the exported framing decision: given a header set it
// returns the body type and, for content-length framing, the declared
// length (-1 otherwise).
func BodyTypeOf(headers *Header) (BodyType, int64, error) {
	return bodyTypeOf(headers, requestError)
}

// ParseContentLength returns the value of the Content-Length header as
// a non-negative integer, or -1 with ok=false when the header is
// absent.
func ParseContentLength(headers *Header) (int64, bool, error) {
	value, ok := headers.GetFirst("Content-Length")
	if !ok {
		return -1, false, nil
	}
	length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || length < 0 {
		return -1, true, &InvalidRequestError{Message: "Invalid Content-Length: " + value, Line: headers.linesOf("Content-Length")[0]}
	}
	return length, true, nil
}
