package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
)

var (
	// ErrCorrupted is returned for input that cannot be parsed as a PDF.
	ErrCorrupted = errors.New("reader: corrupted document")
	// ErrEncrypted is returned for documents with an /Encrypt dictionary.
	ErrEncrypted = errors.New("reader: encrypted documents are not supported")
)

// maxRefDepth bounds chains of references to references.
const maxRefDepth = 32

// Document is a parsed PDF document.
type Document struct {
	Version string // header version, e.g. "1.7"
	// Repaired is set when the cross-reference data was missing or
	// damaged and the object table was rebuilt by scanning.
	Repaired bool

	data    []byte
	xref    xrefTable
	trailer Dict
	cache   map[int]Object
	loading map[int]bool
	objStms map[int]*objStream
	pages   []*Page
}

// objStream is a decoded object stream.
type objStream struct {
	data    []byte
	first   int
	offsets []int // indexed by position in the stream
}

// Open reads and parses a PDF file.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reader: opening %s: %w", filename, err)
	}
	return Parse(data)
}

// ReadFrom reads r to the end and parses it.
func ReadFrom(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reader: reading input: %w", err)
	}
	return Parse(data)
}

// Parse parses a PDF held in memory. data must not be modified while the
// document is in use.
func Parse(data []byte) (*Document, error) {
	i := bytes.Index(data[:min(len(data), 1024)], []byte("%PDF-"))
	if i < 0 {
		return nil, fmt.Errorf("%w: missing %%PDF header", ErrCorrupted)
	}
	d := &Document{
		Version: headerVersion(data[i:]),
		data:    data,
		cache:   make(map[int]Object),
		loading: make(map[int]bool),
		objStms: make(map[int]*objStream),
	}

	off, err := findStartXRef(data)
	if err == nil {
		d.xref, d.trailer, err = readXRef(data, off)
	}
	if err != nil || d.trailer["Root"] == nil {
		d.xref, d.trailer, err = rebuildXRef(data)
		if err != nil {
			return nil, err
		}
		d.Repaired = true
	}

	if _, ok := d.trailer["Encrypt"]; ok {
		return nil, ErrEncrypted
	}
	if err := d.loadPages(); err != nil {
		return nil, err
	}
	return d, nil
}

func headerVersion(b []byte) string {
	b = b[len("%PDF-"):]
	end := bytes.IndexAny(b, "\r\n \t%")
	if end < 0 || end > 8 {
		end = min(len(b), 3)
	}
	return string(b[:end])
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return len(d.pages) }

// Page returns page n, counting from 1.
func (d *Document) Page(n int) (*Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("reader: page %d out of range [1, %d]", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// Pages iterates over the pages with their 1-based numbers.
func (d *Document) Pages() iter.Seq2[int, *Page] {
	return func(yield func(int, *Page) bool) {
		for i, p := range d.pages {
			if !yield(i+1, p) {
				return
			}
		}
	}
}

// Catalog returns the document catalog.
func (d *Document) Catalog() Dict {
	c, _ := d.Resolve(d.trailer["Root"]).(Dict)
	return c
}

// Metadata returns the text entries of the /Info dictionary.
func (d *Document) Metadata() map[string]string {
	meta := make(map[string]string)
	info, _ := d.Resolve(d.trailer["Info"]).(Dict)
	for k, v := range info {
		if s, ok := d.Resolve(v).(String); ok {
			meta[string(k)] = strings.TrimSpace(s.Text())
		}
	}
	return meta
}

// Resolve follows references until it reaches a direct object. Missing
// or unreadable objects resolve to Null.
func (d *Document) Resolve(o Object) Object {
	for i := 0; i < maxRefDepth; i++ {
		ref, ok := o.(Reference)
		if !ok {
			if o == nil {
				return Null{}
			}
			return o
		}
		var err error
		if o, err = d.object(ref.Num); err != nil {
			return Null{}
		}
	}
	return Null{}
}

func (d *Document) object(num int) (Object, error) {
	if o, ok := d.cache[num]; ok {
		return o, nil
	}
	e, ok := d.xref[num]
	if !ok || e.free {
		return Null{}, nil
	}
	if d.loading[num] {
		return nil, fmt.Errorf("%w: object %d refers to itself", ErrCorrupted, num)
	}
	d.loading[num] = true
	defer delete(d.loading, num)

	var o Object
	var err error
	if e.stream != 0 {
		o, err = d.compressed(e.stream, e.index)
	} else {
		o, err = d.direct(num, e.offset)
	}
	if err != nil {
		return nil, err
	}
	d.cache[num] = o
	return o, nil
}

func (d *Document) direct(num int, off int64) (Object, error) {
	if off < 0 || off >= int64(len(d.data)) {
		return nil, fmt.Errorf("%w: object %d offset %d out of range", ErrCorrupted, num, off)
	}
	l := newLexer(d.data[off:])
	l.length = func(r Reference) (int, bool) {
		n, ok := number(d.Resolve(r))
		return int(n), ok
	}
	ref, o, err := l.indirect()
	if err != nil {
		return nil, err
	}
	if ref.Num != num {
		return nil, fmt.Errorf("%w: expected object %d at %d, found %d", ErrCorrupted, num, off, ref.Num)
	}
	return o, nil
}

func (d *Document) compressed(stm, index int) (Object, error) {
	st, ok := d.objStms[stm]
	if !ok {
		var err error
		if st, err = d.loadObjStream(stm); err != nil {
			return nil, err
		}
		d.objStms[stm] = st
	}
	if index < 0 || index >= len(st.offsets) {
		return nil, fmt.Errorf("%w: index %d beyond object stream %d", ErrCorrupted, index, stm)
	}
	start := st.first + st.offsets[index]
	if start < 0 || start >= len(st.data) {
		return nil, fmt.Errorf("%w: object stream %d offset", ErrCorrupted, stm)
	}
	return newLexer(st.data[start:]).value()
}

func (d *Document) loadObjStream(num int) (*objStream, error) {
	o, err := d.object(num)
	if err != nil {
		return nil, err
	}
	s, ok := o.(Stream)
	if !ok {
		return nil, fmt.Errorf("%w: object %d is not an object stream", ErrCorrupted, num)
	}
	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: object stream %d: %v", ErrCorrupted, num, err)
	}
	n, _ := s.Dict.Int("N")
	first, _ := s.Dict.Int("First")

	l := newLexer(data)
	offs := make([]int, 0, max(n, 0))
	for i := int64(0); i < n; i++ {
		if _, err := l.value(); err != nil {
			return nil, fmt.Errorf("%w: object stream %d header", ErrCorrupted, num)
		}
		off, err := l.value()
		if err != nil {
			return nil, fmt.Errorf("%w: object stream %d header", ErrCorrupted, num)
		}
		v, _ := number(off)
		offs = append(offs, int(v))
	}
	return &objStream{data: data, first: int(first), offsets: offs}, nil
}
