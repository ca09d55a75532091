package layout

import (
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

// ShrinkMargin is applied on top of the proportional shrink so the
// re-measured text does not overflow by a hinting rounding error.
const ShrinkMargin = 0.95

// Measurer reports the advance width of text set in font at size points.
type Measurer interface {
	TextWidth(font style.Font, size float64, text string) float64
}

// MeasureFunc adapts a plain function to the Measurer interface.
type MeasureFunc func(font style.Font, size float64, text string) float64

// TextWidth calls f.
func (f MeasureFunc) TextWidth(font style.Font, size float64, text string) float64 {
	return f(font, size, text)
}

// Fit returns the font size at which text fits boxWidth and the width of
// text at that size. Text that already fits keeps the requested size.
// Overflowing text is shrunk once, proportionally, with ShrinkMargin; width
// is linear in size so a second pass is never needed. A non-positive box
// width disables shrinking: text in a zero-width rect is drawn at the
// requested size.
func Fit(m Measurer, font style.Font, text string, size, boxWidth float64) (finalSize, textWidth float64) {
	measured := m.TextWidth(font, size, text)
	if measured <= boxWidth || boxWidth <= 0 || measured <= 0 {
		return size, measured
	}
	finalSize = size * (boxWidth / measured) * ShrinkMargin
	return finalSize, m.TextWidth(font, finalSize, text)
}

// AlignX returns the left edge of a run of width textWidth aligned inside r.
// Unknown alignments behave as LEFT.
func AlignX(align schema.Alignment, r schema.Rect, textWidth float64) float64 {
	switch align {
	case schema.AlignCenter:
		return r.X + (r.W-textWidth)/2
	case schema.AlignRight:
		return r.X + r.W - textWidth
	default:
		return r.X
	}
}

// CenterY places a single line of text of the given size vertically inside a
// box of height h whose bottom edge is at baseY. The font size stands in for
// the glyph cap height.
func CenterY(baseY, h, size float64) float64 {
	return baseY + (h-size)/2
}
