// Package render turns a field schema and a payload into per-page draw
// operations.
//
// Every field is classified into a Variant holding just what its rendering
// path needs, and Dispatch matches on the variant to produce operations.
// Coordinates in operations are PDF page space: origin bottom-left, y up,
// in points. Text positions are baselines.
//
// Rendering is pure: no I/O, no shared state. Fields that cannot be
// rendered (absent value, page out of range, unknown type, undecodable
// image) produce no operations instead of an error.
package render

import (
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

// Op is a single draw operation. The set of operations is closed.
type Op interface {
	isOp()
}

// TextRun draws Text with its baseline starting at (X, Y).
type TextRun struct {
	Text  string
	Font  style.Font
	Size  float64
	Color style.Color
	X, Y  float64
}

// Tick draws a check glyph with its baseline starting at (X, Y).
type Tick struct {
	Glyph string
	Font  style.Font
	Size  float64
	Color style.Color
	X, Y  float64
}

// Anchor is an invisible text marker located later by text search.
type Anchor struct {
	FieldID string
	Marker  string
	Font    style.Font
	Size    float64
	Color   style.Color
	X, Y    float64
}

// Image draws an encoded image with its lower-left corner at (X, Y).
type Image struct {
	Data   []byte
	Format string // PNG, JPG or GIF
	X, Y   float64
	W, H   float64
}

// Barcode draws Code in the given symbology with its lower-left corner at
// (X, Y).
type Barcode struct {
	Code   string
	Format schema.BarcodeFormat
	X, Y   float64
	W, H   float64
}

func (TextRun) isOp() {}
func (Tick) isOp()    {}
func (Anchor) isOp()  {}
func (Image) isOp()   {}
func (Barcode) isOp() {}
