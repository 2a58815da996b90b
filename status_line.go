package rawhttp

import (
	"strconv"
	"strings"
)

// StatusLine is the start-line of an HTTP response: protocol version,
// 3-digit status code and an optional reason phrase.
type StatusLine struct {
	Version HTTPVersion
	Code    int
	Reason  string
}

// String returns the wire form of the status-line. The reason phrase is
// omitted entirely when empty.
func (l StatusLine) String() string {
	s := l.Version.String() + " " + strconv.Itoa(l.Code)
	if l.Reason != "" {
		s += " " + l.Reason
	}
	return s
}

// splitStatusLineTokens splits on runs of spaces and tabs into at most
// limit tokens, keeping the remainder verbatim on the last token so a
// reason phrase retains its internal spacing.
func splitStatusLineTokens(s string, limit int) []string {
	isSpace := func(c byte) bool { return c == ' ' || c == '\t' }
	var out []string
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		if len(out) == limit-1 {
			out = append(out, s[i:])
			break
		}
		start := i
		for i < len(s) && !isSpace(s[i]) {
			i++
		}
		out = append(out, s[start:i])
	}
	return out
}

func isStatusCodeToken(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseStatusLine decodes a status-line. A single token is taken as the
// status code alone; two or three tokens starting with "HTTP" carry the
// version first; otherwise the first token is the code and the rest is
// the reason phrase. A missing version defaults to HTTP/1.1 only when
// InsertHTTPVersionIfMissing is set.
func parseStatusLine(line metadataLine, opts Options, newError errorFactory) (StatusLine, error) {
	parts := splitStatusLineTokens(line.text, 3)
	var versionToken, codeToken, reason string
	switch {
	case len(parts) == 0:
		return StatusLine{}, newError("Invalid status line", line.number)
	case len(parts) == 1:
		codeToken = parts[0]
	case strings.HasPrefix(parts[0], "HTTP"):
		versionToken = parts[0]
		codeToken = parts[1]
		if len(parts) == 3 {
			reason = parts[2]
		}
	default:
		codeToken = parts[0]
		reason = strings.Join(parts[1:], " ")
	}

	var version HTTPVersion
	if versionToken == "" {
		if !opts.InsertHTTPVersionIfMissing {
			return StatusLine{}, newError("Missing HTTP version", line.number)
		}
		version = HTTP11
	} else {
		var err error
		version, err = ParseHTTPVersion(versionToken)
		if err != nil {
			return StatusLine{}, newError("Invalid HTTP version", line.number)
		}
	}

	if !isStatusCodeToken(codeToken) {
		return StatusLine{}, newError("Invalid status code", line.number)
	}
	code, err := strconv.Atoi(codeToken)
	if err != nil {
		return StatusLine{}, newError("Invalid status code", line.number)
	}
	return StatusLine{Version: version, Code: code, Reason: reason}, nil
}
