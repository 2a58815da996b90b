package rawhttp

import "fmt"

// HTTPVersion identifies the protocol version of a message. Only
// HTTP/1.0 and HTTP/1.1 are recognized.
type HTTPVersion struct {
	Major int
	Minor int
}

var (
	// HTTP10 is the HTTP/1.0 protocol version.
	HTTP10 = HTTPVersion{Major: 1, Minor: 0}
	// HTTP11 is the HTTP/1.1 protocol version.
	HTTP11 = HTTPVersion{Major: 1, Minor: 1}
)

// ParseHTTPVersion parses a version token of the form "HTTP/<d>.<d>".
// Anything other than HTTP/1.0 or HTTP/1.1 is rejected.
func ParseHTTPVersion(s string) (HTTPVersion, error) {
	switch s {
	case "HTTP/1.0":
		return HTTP10, nil
	case "HTTP/1.1":
		return HTTP11, nil
	}
	return HTTPVersion{}, fmt.Errorf("invalid HTTP version: %q", s)
}

// String returns the wire form of the version, e.g. "HTTP/1.1".
func (v HTTPVersion) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}
