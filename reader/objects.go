// Package reader parses existing PDF documents far enough to overlay them:
// the page tree with page boxes, AcroForm widgets with their pages, and the
// text drawn by page content streams.
//
// Classic and stream cross-reference sections, object streams and
// incremental updates are supported. Encrypted documents are rejected with
// ErrEncrypted.
package reader

import (
	"fmt"
	"strconv"
)

// Object is any PDF object. The set of implementations is closed.
type Object interface {
	pdfObject()
}

// Null is the PDF null object. Unresolvable references resolve to Null.
type Null struct{}

// Boolean is a PDF boolean.
type Boolean bool

// Integer is a PDF integer.
type Integer int64

// Real is a PDF real number.
type Real float64

// Name is a PDF name without its leading slash.
type Name string

// String is a literal or hexadecimal PDF string with escapes decoded.
type String []byte

// Array is a PDF array.
type Array []Object

// Dict is a PDF dictionary.
type Dict map[Name]Object

// Stream is a dictionary followed by raw, still encoded, data.
type Stream struct {
	Dict Dict
	Raw  []byte
}

// Reference is an indirect reference such as "12 0 R".
type Reference struct {
	Num, Gen int
}

func (Null) pdfObject()      {}
func (Boolean) pdfObject()   {}
func (Integer) pdfObject()   {}
func (Real) pdfObject()      {}
func (Name) pdfObject()      {}
func (String) pdfObject()    {}
func (Array) pdfObject()     {}
func (Dict) pdfObject()      {}
func (Stream) pdfObject()    {}
func (Reference) pdfObject() {}

func (r Reference) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Text decodes s as a PDF text string: UTF-16BE when it starts with a
// byte order mark, PDFDocEncoding (read as Latin-1) otherwise.
func (s String) Text() string {
	return decodeText(s)
}

// Name returns the name stored under key, or "".
func (d Dict) Name(key Name) Name {
	n, _ := d[key].(Name)
	return n
}

// Int returns the integer stored under key. Reals are truncated.
func (d Dict) Int(key Name) (int64, bool) {
	switch v := d[key].(type) {
	case Integer:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

// Text returns the decoded text string stored under key, or "".
func (d Dict) Text(key Name) string {
	if s, ok := d[key].(String); ok {
		return s.Text()
	}
	return ""
}

// number converts numeric objects to float64.
func number(o Object) (float64, bool) {
	switch v := o.(type) {
	case Integer:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// valueString renders a field value: text strings decoded, names bare,
// numbers in their shortest form.
func valueString(o Object) string {
	switch v := o.(type) {
	case String:
		return v.Text()
	case Name:
		return string(v)
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case Real:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Boolean:
		return strconv.FormatBool(bool(v))
	}
	return ""
}
