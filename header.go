package rawhttp

import (
	"fmt"
	"net/textproto"
)

// HeaderField is a single header entry as it appeared in the source
// message. Name keeps the original casing; Line is the 1-based source
// line the field was parsed from, or 0 for fields added
// programmatically.
type HeaderField struct {
	Name  string
	Value string
	Line  int
}

// Header is an ordered, case-insensitive multimap of HTTP header
// fields. Field-name lookup is ASCII-case-insensitive while the
// original casing and insertion order are preserved for serialization.
//
// A Header obtained from the parser or from a HeaderBuilder is
// immutable and safe to share between goroutines.
type Header struct {
	fields []HeaderField
	index  map[string][]int
}

// EmptyHeader is the shared empty, immutable header set.
var EmptyHeader = newHeader()

func newHeader() *Header {
	return &Header{index: make(map[string][]int)}
}

func canonicalName(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// add appends a field, keeping the index in step. Callers validate the
// field name first.
func (h *Header) add(f HeaderField) {
	key := canonicalName(f.Name)
	h.index[key] = append(h.index[key], len(h.fields))
	h.fields = append(h.fields, f)
}

// overwrite replaces every field with the given name by a single entry,
// at the position of the first occurrence (appended if absent).
func (h *Header) overwrite(f HeaderField) {
	key := canonicalName(f.Name)
	positions := h.index[key]
	if len(positions) == 0 {
		h.add(f)
		return
	}
	h.fields[positions[0]] = f
	if len(positions) == 1 {
		return
	}
	// Drop the remaining occurrences and rebuild the index.
	keep := h.fields[:0:0]
	for i, field := range h.fields {
		if canonicalName(field.Name) == key && i != positions[0] {
			continue
		}
		keep = append(keep, field)
	}
	h.fields = keep
	h.index = make(map[string][]int, len(h.fields))
	for i, field := range h.fields {
		k := canonicalName(field.Name)
		h.index[k] = append(h.index[k], i)
	}
}

// Get returns all values associated with name, in insertion order. The
// lookup is case-insensitive. It returns nil when the name is absent.
func (h *Header) Get(name string) []string {
	positions := h.index[canonicalName(name)]
	if len(positions) == 0 {
		return nil
	}
	values := make([]string, len(positions))
	for i, pos := range positions {
		values[i] = h.fields[pos].Value
	}
	return values
}

// GetFirst returns the first value associated with name and whether the
// name is present at all.
func (h *Header) GetFirst(name string) (string, bool) {
	positions := h.index[canonicalName(name)]
	if len(positions) == 0 {
		return "", false
	}
	return h.fields[positions[0]].Value, true
}

// Contains reports whether at least one field with the given name is
// present.
func (h *Header) Contains(name string) bool {
	return len(h.index[canonicalName(name)]) > 0
}

// Fields returns a copy of all header fields in insertion order.
func (h *Header) Fields() []HeaderField {
	out := make([]HeaderField, len(h.fields))
	copy(out, h.fields)
	return out
}

// Names returns the distinct field names in order of first appearance,
// with the casing of their first occurrence.
func (h *Header) Names() []string {
	seen := make(map[string]bool, len(h.fields))
	var names []string
	for _, f := range h.fields {
		key := canonicalName(f.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, f.Name)
	}
	return names
}

// Len returns the number of header fields, counting repeats.
func (h *Header) Len() int {
	return len(h.fields)
}

// firstField returns the first occurrence of name.
func (h *Header) firstField(name string) (HeaderField, bool) {
	positions := h.index[canonicalName(name)]
	if len(positions) == 0 {
		return HeaderField{}, false
	}
	return h.fields[positions[0]], true
}

// linesOf returns the source lines of every occurrence of name.
func (h *Header) linesOf(name string) []int {
	positions := h.index[canonicalName(name)]
	lines := make([]int, len(positions))
	for i, pos := range positions {
		lines[i] = h.fields[pos].Line
	}
	return lines
}

// clone returns a deep copy that may be mutated without affecting h.
func (h *Header) clone() *Header {
	c := newHeader()
	for _, f := range h.fields {
		c.add(f)
	}
	return c
}

// HeaderBuilder assembles an immutable Header programmatically. It is
// not safe for concurrent use; build on a single goroutine and share
// the result.
type HeaderBuilder struct {
	header *Header
	err    error
}

// NewHeaderBuilder returns an empty builder.
func NewHeaderBuilder() *HeaderBuilder {
	return &HeaderBuilder{header: newHeader()}
}

// With appends a field with the given name and value. The name must be
// an RFC 7230 token; the first violation is reported by Build.
func (b *HeaderBuilder) With(name, value string) *HeaderBuilder {
	if b.err == nil {
		if !isToken(name) {
			b.err = fmt.Errorf("invalid header name: %q", name)
			return b
		}
		b.header.add(HeaderField{Name: name, Value: value})
	}
	return b
}

// Overwrite replaces all existing entries for name with a single entry
// holding value, appending if the name is absent.
func (b *HeaderBuilder) Overwrite(name, value string) *HeaderBuilder {
	if b.err == nil {
		if !isToken(name) {
			b.err = fmt.Errorf("invalid header name: %q", name)
			return b
		}
		b.header.overwrite(HeaderField{Name: name, Value: value})
	}
	return b
}

// Build returns the assembled header, or the first error recorded by
// With or Overwrite. The builder must not be reused afterwards.
func (b *HeaderBuilder) Build() (*Header, error) {
	if b.err != nil {
		return nil, b.err
	}
	h := b.header
	b.header = nil
	return h, nil
}
