package render

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/lvillar/formfill/layout"
	"github.com/lvillar/formfill/payload"
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

const (
	// TickScale sizes a check glyph relative to the smaller box side.
	TickScale = 0.7
	// AnchorSize is the font size of signature anchor markers.
	AnchorSize = 1.0
)

var isoDatePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// AnchorMarker returns the marker text written for a signature anchor.
func AnchorMarker(fieldID string) string {
	return `\s{` + fieldID + `}\`
}

// Dispatch renders value through v on a page of height pageH. Variants
// without visual output, and unknown variants, produce nothing.
func Dispatch(v Variant, value any, pageH float64, m layout.Measurer) []Op {
	switch v := v.(type) {
	case TextVariant:
		return dispatchText(v, value, pageH, m)
	case CheckVariant:
		return dispatchCheck(v, value, pageH, m)
	case DateVariant:
		return dispatchDate(v, value, pageH)
	case AnchorVariant:
		return dispatchAnchor(v, pageH)
	case ImageVariant:
		return dispatchImage(v, value, pageH)
	case BarcodeVariant:
		return dispatchBarcode(v, value, pageH)
	case InertVariant:
		return nil
	case UnknownVariant:
		return nil
	default:
		return nil
	}
}

func dispatchText(v TextVariant, value any, pageH float64, m layout.Measurer) []Op {
	text := payload.String(value)
	size, width := layout.Fit(m, v.Font, text, v.Size, v.Rect.W)
	baseY := layout.BaseY(pageH, v.Rect)
	return []Op{TextRun{
		Text:  text,
		Font:  v.Font,
		Size:  size,
		Color: v.Color,
		X:     layout.AlignX(v.Align, v.Rect, width),
		Y:     layout.CenterY(baseY, v.Rect.H, size),
	}}
}

func dispatchCheck(v CheckVariant, value any, pageH float64, m layout.Measurer) []Op {
	if !payload.Truthy(value) {
		return nil
	}
	size := TickScale * math.Min(v.Rect.W, v.Rect.H)
	width := m.TextWidth(v.Font, size, v.Glyph)
	baseY := layout.BaseY(pageH, v.Rect)
	return []Op{Tick{
		Glyph: v.Glyph,
		Font:  v.Font,
		Size:  size,
		Color: v.Color,
		X:     v.Rect.X + (v.Rect.W-width)/2,
		Y:     layout.CenterY(baseY, v.Rect.H, size),
	}}
}

// dispatchDate keeps the requested size even when the text overflows.
func dispatchDate(v DateVariant, value any, pageH float64) []Op {
	baseY := layout.BaseY(pageH, v.Rect)
	return []Op{TextRun{
		Text:  FormatDate(value),
		Font:  v.Font,
		Size:  v.Size,
		Color: v.Color,
		X:     v.Rect.X,
		Y:     layout.CenterY(baseY, v.Rect.H, v.Size),
	}}
}

// FormatDate rewrites a string starting with an ISO YYYY-MM-DD date as
// DD-MM-YYYY, ignoring anything after the date. Other values, including
// prefixes that are not a real calendar date, are stringified unchanged.
func FormatDate(value any) string {
	s, ok := value.(string)
	if !ok {
		return payload.String(value)
	}
	m := isoDatePrefix.FindString(s)
	if m == "" {
		return s
	}
	d, err := time.Parse(time.DateOnly, m)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d-%02d-%04d", d.Day(), int(d.Month()), d.Year())
}

func dispatchAnchor(v AnchorVariant, pageH float64) []Op {
	return []Op{Anchor{
		FieldID: v.FieldID,
		Marker:  AnchorMarker(v.FieldID),
		Font:    v.Font,
		Size:    AnchorSize,
		Color:   style.White,
		X:       v.Rect.X,
		Y:       layout.BaseY(pageH, v.Rect),
	}}
}

func dispatchBarcode(v BarcodeVariant, value any, pageH float64) []Op {
	code := payload.String(value)
	if code == "" || v.Rect.W <= 0 || v.Rect.H <= 0 {
		return nil
	}
	op := Barcode{
		Code:   code,
		Format: v.Format,
		X:      v.Rect.X,
		Y:      layout.BaseY(pageH, v.Rect),
		W:      v.Rect.W,
		H:      v.Rect.H,
	}
	if v.Format == schema.BarcodeQR {
		side := math.Min(v.Rect.W, v.Rect.H)
		op.X += (v.Rect.W - side) / 2
		op.Y += (v.Rect.H - side) / 2
		op.W, op.H = side, side
	}
	return []Op{op}
}
