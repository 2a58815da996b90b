package rawhttp

import (
	"fmt"
	"net/url"
	"strings"
)

// RequestLine is the start-line of an HTTP request: a method token, a
// target URI and the protocol version.
type RequestLine struct {
	Method  string
	URI     *url.URL
	Version HTTPVersion
}

// String returns the wire form of the request-line with the target in
// origin-form (path and query only).
func (l RequestLine) String() string {
	target := l.URI.EscapedPath()
	if target == "" {
		target = "/"
	}
	if l.URI.RawQuery != "" {
		target += "?" + l.URI.RawQuery
	}
	return l.Method + " " + target + " " + l.Version.String()
}

// WithHost returns a copy of the request-line whose URI authority is
// replaced by host. It fails when host is not a valid authority.
func (l RequestLine) WithHost(host string) (RequestLine, error) {
	u, err := url.Parse("http://" + host)
	if err != nil {
		return RequestLine{}, fmt.Errorf("invalid host: %q", host)
	}
	if u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return RequestLine{}, fmt.Errorf("invalid host: %q", host)
	}
	uri := *l.URI
	if uri.Scheme == "" {
		uri.Scheme = "http"
	}
	uri.Host = u.Host
	return RequestLine{Method: l.Method, URI: &uri, Version: l.Version}, nil
}

// createURI turns a request-target token into a URI. A target that does
// not start with "http" gets "http://" prepended first, so a target
// like "host.example/path" parses with host.example as its authority.
// The prefix check is on the four bytes "http", so "httpx://x" passes
// through unprefixed.
func createURI(target string) (*url.URL, error) {
	if !strings.HasPrefix(target, "http") {
		target = "http://" + target
	}
	return url.Parse(target)
}

// parseRequestLine decodes a request-line. The line splits on runs of
// whitespace into exactly three tokens (method, target, version), or
// two when InsertHTTPVersionIfMissing allows the version to default to
// HTTP/1.1.
func parseRequestLine(line metadataLine, opts Options, newError errorFactory) (RequestLine, error) {
	parts := strings.Fields(line.text)
	var version HTTPVersion
	switch len(parts) {
	case 2:
		if !opts.InsertHTTPVersionIfMissing {
			return RequestLine{}, newError("Missing HTTP version", line.number)
		}
		version = HTTP11
	case 3:
		var err error
		version, err = ParseHTTPVersion(parts[2])
		if err != nil {
			return RequestLine{}, newError("Invalid HTTP version", line.number)
		}
	default:
		return RequestLine{}, newError("Invalid request line", line.number)
	}
	method := parts[0]
	if !isToken(method) {
		return RequestLine{}, newError("Invalid method name", line.number)
	}
	uri, err := createURI(parts[1])
	if err != nil {
		return RequestLine{}, newError("Invalid request target: "+parts[1], line.number)
	}
	return RequestLine{Method: method, URI: uri, Version: version}, nil
}
