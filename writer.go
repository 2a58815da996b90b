package rawhttp

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// countingWriter tracks how many bytes have been written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeMessage serializes a start-line, header block and optional body
// to w: start-line CRLF, each field as "Name: Value" CRLF in insertion
// order, a blank CRLF, then the body in its wire framing.
func writeMessage(w io.Writer, startLine string, headers *Header, body *BodyReader) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, startLine+"\r\n"); err != nil {
		return cw.n, err
	}
	for _, f := range headers.Fields() {
		if _, err := io.WriteString(cw, f.Name+": "+f.Value+"\r\n"); err != nil {
			return cw.n, err
		}
	}
	if _, err := io.WriteString(cw, "\r\n"); err != nil {
		return cw.n, err
	}
	if body != nil {
		if _, err := body.WriteTo(cw); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// WriteTo serializes the request to w. A lazy body is streamed through
// (and consumed); chunked bodies are re-emitted in chunked framing.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	return writeMessage(w, r.Line.String(), r.Headers, r.Body)
}

// Bytes serializes the request to a new byte slice. The body, if lazy,
// is consumed.
func (r *Request) Bytes() ([]byte, error) {
	return messageBytes(r)
}

// WriteTo serializes the response to w. A lazy body is streamed through
// (and consumed); chunked bodies are re-emitted in chunked framing.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	return writeMessage(w, r.Line.String(), r.Headers, r.Body)
}

// Bytes serializes the response to a new byte slice. The body, if lazy,
// is consumed.
func (r *Response) Bytes() ([]byte, error) {
	return messageBytes(r)
}

func messageBytes(m io.WriterTo) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := m.WriteTo(buf); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}
