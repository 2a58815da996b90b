package rawhttp

// Options controls how lenient the parser is with input that deviates
// from strict RFC 7230 framing.
type Options struct {
	// AllowNewLineWithoutReturn accepts a bare LF as a line terminator.
	// When false, only CRLF terminates a metadata line and a bare LF is
	// a framing error.
	AllowNewLineWithoutReturn bool

	// IgnoreLeadingEmptyLine skips empty line(s) appearing before the
	// start-line instead of treating them as an empty start-line.
	IgnoreLeadingEmptyLine bool

	// InsertHTTPVersionIfMissing accepts a start-line with only two
	// whitespace-separated tokens and assigns it HTTP/1.1.
	InsertHTTPVersionIfMissing bool

	// InsertHostHeaderIfMissing accepts a request without a Host header
	// if its request-target is in absolute-URI form, synthesizing a Host
	// header from the URI authority.
	InsertHostHeaderIfMissing bool
}

// DefaultOptions returns the lenient option set used by NewParser when
// no options are given. All switches are enabled.
func DefaultOptions() Options {
	return Options{
		AllowNewLineWithoutReturn:  true,
		IgnoreLeadingEmptyLine:     true,
		InsertHTTPVersionIfMissing: true,
		InsertHostHeaderIfMissing:  true,
	}
}

// StrictOptions returns the option set that accepts only strict RFC 7230
// framing. All switches are disabled.
func StrictOptions() Options {
	return Options{}
}
