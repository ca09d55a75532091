// Package layout maps schema rectangles into the backend's page space and
// fits single-line text into them.
//
// Schema rectangles use a top-left origin with y growing downward, as the
// form builder draws them. PDF pages use a bottom-left origin with y growing
// upward. All arithmetic here is exact; nothing is rounded.
package layout

import "github.com/lvillar/formfill/schema"

// BaseY returns the bottom-left-origin y coordinate of the bottom edge of r
// on a page of height pageH. Callers add vertical centering on top of it.
func BaseY(pageH float64, r schema.Rect) float64 {
	return pageH - r.Y - r.H
}

// FromBottomLeft converts a PDF rectangle given by its lower-left and
// upper-right corners back into a top-left-origin schema rectangle.
// Corners may be given in either order.
func FromBottomLeft(pageH, llx, lly, urx, ury float64) schema.Rect {
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	return schema.Rect{
		X: llx,
		Y: pageH - ury,
		W: urx - llx,
		H: ury - lly,
	}
}
