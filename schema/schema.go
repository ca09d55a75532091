// Package schema defines the declarative field schema placed on a base PDF
// by the form builder, and the options of one generation call.
//
// Example JSON for a single field:
//
//	{
//	  "id": "f-1",
//	  "key": "client.pan_number",
//	  "type": "TEXT",
//	  "pageIndex": 0,
//	  "rect": {"x": 72, "y": 120, "w": 180, "h": 18},
//	  "style": {"fontFamily": "Helvetica", "fontSize": 11, "alignment": "LEFT", "color": "#000000"},
//	  "validation": {"required": true, "maxLen": 10}
//	}
//
// Style members left out of the JSON are defaulted when the field is
// rendered (see Style.Resolved), never when it is decoded, so a schema
// survives a decode/encode round trip unchanged.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType selects how a field is rendered.
type FieldType string

const (
	TypeText            FieldType = "TEXT"
	TypeTextarea        FieldType = "TEXTAREA"
	TypeNumber          FieldType = "NUMBER"
	TypeEmail           FieldType = "EMAIL"
	TypePhone           FieldType = "PHONE"
	TypeCheckbox        FieldType = "CHECKBOX"
	TypeRadio           FieldType = "RADIO"
	TypeDate            FieldType = "DATE"
	TypeSignature       FieldType = "SIGNATURE"
	TypeSignatureAnchor FieldType = "SIGNATURE_ANCHOR"
	TypeImage           FieldType = "IMAGE"
	TypeBarcode         FieldType = "BARCODE"
)

// Types lists every field type the renderer knows about.
func Types() []FieldType {
	return []FieldType{
		TypeText, TypeTextarea, TypeNumber, TypeEmail, TypePhone,
		TypeCheckbox, TypeRadio, TypeDate, TypeSignature, TypeSignatureAnchor,
		TypeImage, TypeBarcode,
	}
}

// Known reports whether t is one of Types.
func (t FieldType) Known() bool {
	for _, k := range Types() {
		if t == k {
			return true
		}
	}
	return false
}

// Alignment is the horizontal alignment of single-line text.
type Alignment string

const (
	AlignLeft   Alignment = "LEFT"
	AlignCenter Alignment = "CENTER"
	AlignRight  Alignment = "RIGHT"
)

// BarcodeFormat selects the symbology of a BARCODE field.
type BarcodeFormat string

const (
	BarcodeQR      BarcodeFormat = "qr"
	BarcodeCode128 BarcodeFormat = "code128"
	BarcodePDF417  BarcodeFormat = "pdf417"
)

// Defaults applied to missing style members.
const (
	DefaultFontFamily = "Helvetica"
	DefaultFontSize   = 11.0
	DefaultColor      = "#000000"
	DefaultTickChar   = "✓"
)

// Field is one entry of a field schema.
type Field struct {
	ID         string     `json:"id"`
	Key        string     `json:"key"`
	Type       FieldType  `json:"type"`
	PageIndex  int        `json:"pageIndex"`
	Rect       Rect       `json:"rect"`
	Style      Style      `json:"style"`
	Validation Validation `json:"validation"`
}

// Rect is a rectangle in PDF points with a top-left origin, y growing down.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Style holds the visual attributes of a field.
type Style struct {
	FontFamily string        `json:"fontFamily,omitempty"`
	FontSize   float64       `json:"fontSize,omitempty"`
	Alignment  Alignment     `json:"alignment,omitempty"`
	Color      string        `json:"color,omitempty"`
	TickChar   *string       `json:"tickChar,omitempty"`
	Barcode    BarcodeFormat `json:"barcode,omitempty"`
}

// Validation rules are enforced before generation, not by the renderer.
type Validation struct {
	Required    bool     `json:"required"`
	Regex       *string  `json:"regex,omitempty"`
	MaxLen      *int     `json:"maxLen,omitempty"`
	CharSpacing *float64 `json:"charSpacing,omitempty"`
}

// ResolvedStyle is a Style with every member filled in.
type ResolvedStyle struct {
	FontFamily string
	FontSize   float64
	Alignment  Alignment
	Color      string
	TickChar   string
	Barcode    BarcodeFormat
}

// Resolved returns s with defaults applied. Alignment and barcode format are
// upper/lower-cased; unknown alignments become LEFT and unknown barcode
// formats become qr. An explicitly empty tick character falls back to the
// default tick.
func (s Style) Resolved() ResolvedStyle {
	r := ResolvedStyle{
		FontFamily: s.FontFamily,
		FontSize:   s.FontSize,
		Alignment:  Alignment(strings.ToUpper(strings.TrimSpace(string(s.Alignment)))),
		Color:      s.Color,
		TickChar:   DefaultTickChar,
		Barcode:    BarcodeFormat(strings.ToLower(strings.TrimSpace(string(s.Barcode)))),
	}
	if r.FontFamily == "" {
		r.FontFamily = DefaultFontFamily
	}
	if r.FontSize <= 0 {
		r.FontSize = DefaultFontSize
	}
	switch r.Alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		r.Alignment = AlignLeft
	}
	if r.Color == "" {
		r.Color = DefaultColor
	}
	if s.TickChar != nil && *s.TickChar != "" {
		r.TickChar = *s.TickChar
	}
	switch r.Barcode {
	case BarcodeQR, BarcodeCode128, BarcodePDF417:
	default:
		r.Barcode = BarcodeQR
	}
	return r
}

// Output selects the encoding of the generated document.
type Output string

const (
	OutputBuffer Output = "buffer"
	OutputBase64 Output = "base64"
)

// RenderOptions are the per-call generation options.
type RenderOptions struct {
	Flatten bool   `json:"flatten,omitempty"`
	Output  Output `json:"output,omitempty"`
}

// Check reports an output mode other than buffer or base64.
func (o RenderOptions) Check() error {
	switch o.Output {
	case "", OutputBuffer, OutputBase64:
		return nil
	}
	return fmt.Errorf("schema: unknown output %q (want %q or %q)", o.Output, OutputBuffer, OutputBase64)
}

// Parse decodes a JSON array of fields.
func Parse(data []byte) ([]Field, error) {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("schema: parsing fields: %w", err)
	}
	return fields, nil
}
