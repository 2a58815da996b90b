package rawhttp

import (
	"bytes"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/rawhttp/rawhttp/internal/pool"
)

// BodyType is the framing mode of a message body.
type BodyType int

const (
	// BodyContentLength frames the body as a fixed number of bytes
	// declared by the Content-Length header.
	BodyContentLength BodyType = iota
	// BodyChunked frames the body with the chunked transfer coding.
	BodyChunked
	// BodyCloseTerminated frames the body as everything up to EOF on
	// the underlying stream.
	BodyCloseTerminated
)

// String returns a short name for the body type.
func (t BodyType) String() string {
	switch t {
	case BodyContentLength:
		return "content-length"
	case BodyChunked:
		return "chunked"
	case BodyCloseTerminated:
		return "close-terminated"
	}
	return "unknown"
}

// copyBufPool reuses transfer buffers for body draining.
var copyBufPool = pool.New(func() []byte { return make([]byte, 32*1024) })

// BodyReader is a handle on a message body.
//
// A reader returned by the parser is lazy: it wraps the bytes remaining
// on the source stream after the header block and may be consumed
// exactly once, by WriteTo, Decode, DecodeChunked or Eager. Consuming
// it (or calling Close) releases the source stream. A reader obtained
// through Eager holds the body in memory instead and may be read and
// serialized any number of times.
type BodyReader struct {
	typ      BodyType
	length   int64 // lazy: declared length for BodyContentLength, else -1; eager: buffered length
	scan     *metadataScanner
	newError errorFactory
	eager    *EagerBody
	consumed bool
}

func newLazyBody(typ BodyType, length int64, scan *metadataScanner, newError errorFactory) *BodyReader {
	return &BodyReader{typ: typ, length: length, scan: scan, newError: newError}
}

// Type returns the framing mode of the body.
func (b *BodyReader) Type() BodyType {
	return b.typ
}

// Length returns the declared body length and whether it is known
// up-front. Only content-length bodies have a known length.
func (b *BodyReader) Length() (int64, bool) {
	if b.typ == BodyContentLength {
		return b.length, true
	}
	return 0, false
}

// consume marks a lazy reader as used. Eager readers are reusable.
func (b *BodyReader) consume() error {
	if b.eager != nil {
		return nil
	}
	if b.consumed {
		return ErrBodyAlreadyConsumed
	}
	b.consumed = true
	return nil
}

// Close releases the underlying stream without reading the body. It is
// a no-op on eager readers.
func (b *BodyReader) Close() error {
	if b.eager == nil {
		b.consumed = true
		b.scan.close()
	}
	return nil
}

// WriteTo streams the body to w in its wire form: content-length and
// close-terminated bodies verbatim, chunked bodies re-encoded in
// chunked framing with their trailers. A lazy reader is consumed and
// its source released on completion.
func (b *BodyReader) WriteTo(w io.Writer) (int64, error) {
	if err := b.consume(); err != nil {
		return 0, err
	}
	if b.eager != nil {
		return b.eager.writeTo(w)
	}
	cw := &countingWriter{w: w}
	var err error
	switch b.typ {
	case BodyContentLength:
		err = b.copyExactly(cw, b.length)
	case BodyChunked:
		err = b.reencodeChunked(cw)
	case BodyCloseTerminated:
		buf := copyBufPool.Get()
		_, err = io.CopyBuffer(cw, b.scan.r, buf)
		copyBufPool.Put(buf)
	}
	b.scan.close()
	return cw.n, err
}

// Decode reads the whole body and returns its decoded payload bytes
// (for chunked bodies, the concatenated chunk data). A lazy reader is
// consumed and its source released.
func (b *BodyReader) Decode() ([]byte, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	if b.eager != nil {
		return b.eager.Bytes(), nil
	}
	data, _, err := b.decode()
	return data, err
}

// DecodeChunked reads a chunked body and returns its framed
// representation: the decoded chunks and the trailer headers. It fails
// on non-chunked bodies. A lazy reader is consumed and its source
// released.
func (b *BodyReader) DecodeChunked() (*ChunkedBody, error) {
	if b.typ != BodyChunked {
		newError := b.newError
		if newError == nil {
			newError = requestError
		}
		return nil, newError("Body is not chunked", 0)
	}
	if err := b.consume(); err != nil {
		return nil, err
	}
	if b.eager != nil {
		return b.eager.framed, nil
	}
	defer b.scan.close()
	return decodeChunkedBody(b.scan, b.newError)
}

// Eager materializes the body in memory, closes the source stream and
// returns a snapshot that can be re-read and re-serialized.
func (b *BodyReader) Eager() (*EagerBody, error) {
	if b.eager != nil {
		return b.eager, nil
	}
	if err := b.consume(); err != nil {
		return nil, err
	}
	data, framed, err := b.decode()
	if err != nil {
		return nil, err
	}
	return &EagerBody{typ: b.typ, data: data, framed: framed}, nil
}

// decode drains a lazy body, returning the payload bytes and, for
// chunked bodies, the framed representation. The source is released.
func (b *BodyReader) decode() (data []byte, framed *ChunkedBody, err error) {
	defer b.scan.close()
	switch b.typ {
	case BodyContentLength:
		data = make([]byte, b.length)
		if _, err := io.ReadFull(b.scan.r, data); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, nil, err
		}
		return data, nil, nil
	case BodyChunked:
		framed, err := decodeChunkedBody(b.scan, b.newError)
		if err != nil {
			return nil, nil, err
		}
		return framed.Bytes(), framed, nil
	default:
		out := bytebufferpool.Get()
		defer bytebufferpool.Put(out)
		buf := copyBufPool.Get()
		_, err := io.CopyBuffer(out, b.scan.r, buf)
		copyBufPool.Put(buf)
		if err != nil {
			return nil, nil, err
		}
		return append([]byte(nil), out.B...), nil, nil
	}
}

// copyExactly copies exactly n bytes from the source to w; EOF before
// the target count is a framing error.
func (b *BodyReader) copyExactly(w io.Writer, n int64) error {
	buf := copyBufPool.Get()
	defer copyBufPool.Put(buf)
	remaining := n
	for remaining > 0 {
		chunk := int64(len(buf))
		if remaining < chunk {
			chunk = remaining
		}
		read, err := io.ReadFull(b.scan.r, buf[:chunk])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// reencodeChunked streams a lazy chunked body back out in chunked
// framing, chunk by chunk, followed by the trailer block.
func (b *BodyReader) reencodeChunked(w io.Writer) error {
	trailers, err := streamChunks(b.scan, b.newError, func(c Chunk) error {
		return writeChunk(w, c)
	})
	if err != nil {
		return err
	}
	return writeChunkedEnd(w, trailers)
}

// EagerBody is a fully-buffered message body. Unlike a lazy BodyReader
// it holds no stream and may be consumed repeatedly.
type EagerBody struct {
	typ    BodyType
	data   []byte
	framed *ChunkedBody // non-nil only for chunked bodies
}

// Type returns the framing mode the body was read with.
func (e *EagerBody) Type() BodyType {
	return e.typ
}

// Bytes returns the decoded payload bytes. The slice is shared; callers
// must not modify it.
func (e *EagerBody) Bytes() []byte {
	return e.data
}

// Len returns the decoded payload length.
func (e *EagerBody) Len() int {
	return len(e.data)
}

// Reader returns a fresh reader over the decoded payload.
func (e *EagerBody) Reader() io.Reader {
	return bytes.NewReader(e.data)
}

// Framed returns the chunked framing (chunks and trailers) when the
// body was chunked.
func (e *EagerBody) Framed() (*ChunkedBody, bool) {
	return e.framed, e.framed != nil
}

// asReader wraps the snapshot in a reusable BodyReader.
func (e *EagerBody) asReader() *BodyReader {
	return &BodyReader{typ: e.typ, length: int64(len(e.data)), eager: e}
}

// writeTo emits the wire form of the buffered body.
func (e *EagerBody) writeTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	var err error
	if e.framed != nil {
		err = e.framed.writeTo(cw)
	} else {
		_, err = cw.Write(e.data)
	}
	return cw.n, err
}
