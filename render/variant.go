package render

import (
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

// Variant is a field reduced to the data of its rendering path. The set of
// variants is closed; Dispatch matches on all of them.
type Variant interface {
	variant()
}

// TextVariant covers TEXT, TEXTAREA, NUMBER, EMAIL and PHONE.
type TextVariant struct {
	Rect  schema.Rect
	Font  style.Font
	Size  float64
	Align schema.Alignment
	Color style.Color
}

// CheckVariant covers CHECKBOX and RADIO.
type CheckVariant struct {
	Rect  schema.Rect
	Font  style.Font
	Color style.Color
	Glyph string
}

// DateVariant is single-line, left-aligned and never shrunk.
type DateVariant struct {
	Rect  schema.Rect
	Font  style.Font
	Size  float64
	Color style.Color
}

// AnchorVariant places an invisible marker for e-signature tooling.
type AnchorVariant struct {
	FieldID string
	Rect    schema.Rect
	Font    style.Font
}

// InertVariant is a known type with no visual output (SIGNATURE).
type InertVariant struct {
	Type schema.FieldType
}

// ImageVariant draws an embedded image contained in Rect.
type ImageVariant struct {
	Rect schema.Rect
}

// BarcodeVariant encodes the value as a barcode inside Rect.
type BarcodeVariant struct {
	Rect   schema.Rect
	Format schema.BarcodeFormat
}

// UnknownVariant is a type the renderer does not recognize.
type UnknownVariant struct {
	Type schema.FieldType
}

func (TextVariant) variant()    {}
func (CheckVariant) variant()   {}
func (DateVariant) variant()    {}
func (AnchorVariant) variant()  {}
func (InertVariant) variant()   {}
func (ImageVariant) variant()   {}
func (BarcodeVariant) variant() {}
func (UnknownVariant) variant() {}

// Classify resolves f's style against fonts and returns its variant.
func Classify(f schema.Field, fonts *style.Registry) Variant {
	st := f.Style.Resolved()
	font := fonts.Lookup(st.FontFamily)
	color := style.ParseHex(st.Color)

	switch f.Type {
	case schema.TypeText, schema.TypeTextarea, schema.TypeNumber, schema.TypeEmail, schema.TypePhone:
		return TextVariant{Rect: f.Rect, Font: font, Size: st.FontSize, Align: st.Alignment, Color: color}
	case schema.TypeCheckbox, schema.TypeRadio:
		return CheckVariant{Rect: f.Rect, Font: font, Color: color, Glyph: st.TickChar}
	case schema.TypeDate:
		return DateVariant{Rect: f.Rect, Font: font, Size: st.FontSize, Color: color}
	case schema.TypeSignatureAnchor:
		return AnchorVariant{FieldID: f.ID, Rect: f.Rect, Font: fonts.Default()}
	case schema.TypeSignature:
		return InertVariant{Type: f.Type}
	case schema.TypeImage:
		return ImageVariant{Rect: f.Rect}
	case schema.TypeBarcode:
		return BarcodeVariant{Rect: f.Rect, Format: st.Barcode}
	default:
		return UnknownVariant{Type: f.Type}
	}
}
