package rawhttp

import (
	"bufio"
	"io"
	"strings"
)

// metadataLine is one start-line or header line together with its
// 1-based position in the source bytes.
type metadataLine struct {
	text   string
	number int
}

// metadataScanner reads the metadata section of an HTTP message (the
// start-line and header block, through the blank-line separator) off a
// buffered stream. Bytes after the blank line are left on the stream
// for the body reader.
//
// The scanner counts lines from 1 and increments the count for every
// line terminator it consumes, so errors can point at the offending
// line. On a framing error the underlying source is closed before the
// error is returned.
type metadataScanner struct {
	r        *bufio.Reader
	closer   io.Closer
	opts     Options
	line     int
	newError errorFactory
}

func newMetadataScanner(src io.Reader, opts Options, newError errorFactory) *metadataScanner {
	closer, _ := src.(io.Closer)
	return &metadataScanner{
		r:        bufio.NewReader(src),
		closer:   closer,
		opts:     opts,
		line:     1,
		newError: newError,
	}
}

func (s *metadataScanner) close() {
	if s.closer != nil {
		s.closer.Close()
	}
}

// readLine reads one metadata line. CRLF always terminates a line; a
// bare LF terminates only when AllowNewLineWithoutReturn is set, and is
// a framing error otherwise. A CR followed by anything other than LF
// (including EOF) is a framing error. At EOF the partial line read so
// far is returned with terminated=false.
func (s *metadataScanner) readLine() (text string, terminated bool, err error) {
	var b strings.Builder
	for {
		c, err := s.r.ReadByte()
		if err == io.EOF {
			return b.String(), false, nil
		}
		if err != nil {
			s.close()
			return "", false, err
		}
		switch c {
		case '\r':
			next, err := s.r.ReadByte()
			if err == io.EOF {
				s.close()
				return "", false, s.newError("Illegal character after return", s.line)
			}
			if err != nil {
				s.close()
				return "", false, err
			}
			if next != '\n' {
				s.close()
				return "", false, s.newError("Illegal character after return", s.line)
			}
			return b.String(), true, nil
		case '\n':
			if !s.opts.AllowNewLineWithoutReturn {
				s.close()
				return "", false, s.newError("Illegal new-line character without preceding return", s.line)
			}
			return b.String(), true, nil
		default:
			b.WriteByte(c)
		}
	}
}

// readLines reads metadata lines up to and including the blank-line
// separator, returning the start-line first. An empty result means no
// start-line was found: the input was empty or held only terminators,
// or, without IgnoreLeadingEmptyLine, it began with an empty line.
// Leading empty lines are discarded without counting when
// IgnoreLeadingEmptyLine is set.
func (s *metadataScanner) readLines() ([]metadataLine, error) {
	var lines []metadataLine
	for {
		text, terminated, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if text == "" {
			if terminated && len(lines) == 0 && s.opts.IgnoreLeadingEmptyLine {
				continue
			}
			// The blank line (or EOF right after a terminator) ends the
			// metadata section.
			if terminated {
				s.line++
			}
			return lines, nil
		}
		lines = append(lines, metadataLine{text: text, number: s.line})
		if !terminated {
			// EOF mid-line: the partial line closes the section.
			return lines, nil
		}
		s.line++
	}
}

// expectChunkDataTerminator consumes the line terminator that follows
// chunk data, applying the same CR/LF policy as metadata lines.
func (s *metadataScanner) expectChunkDataTerminator() error {
	c, err := s.r.ReadByte()
	if err == io.EOF {
		s.close()
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		s.close()
		return err
	}
	switch c {
	case '\r':
		next, err := s.r.ReadByte()
		if err != nil || next != '\n' {
			s.close()
			return s.newError("Illegal character after return", s.line)
		}
	case '\n':
		if !s.opts.AllowNewLineWithoutReturn {
			s.close()
			return s.newError("Illegal new-line character without preceding return", s.line)
		}
	default:
		s.close()
		return s.newError("Illegal character after chunk-data", s.line)
	}
	s.line++
	return nil
}
