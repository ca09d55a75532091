// Package anchor finds signature anchors in finished documents.
//
// SIGNATURE_ANCHOR fields are drawn as invisible 1-point text markers of
// the form \s{fieldID}\. E-signature tooling places signing widgets by
// searching the page text for them; Locate does that search.
package anchor

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/lvillar/formfill/reader"
)

var markerRe = regexp.MustCompile(`\\s\{([^}]*)\}\\`)

// Anchor is a marker found on a page. X and Y are the baseline origin in
// PDF space (bottom-left origin); Top is the same point measured from the
// top edge, as in field schemas.
type Anchor struct {
	FieldID string  `json:"fieldId"`
	Page    int     `json:"page"` // 1-based
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Top     float64 `json:"top"`
	Size    float64 `json:"size"`
}

// Locate returns every anchor of the PDF in data, in page order.
func Locate(data []byte) ([]Anchor, error) {
	doc, err := reader.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}
	return LocateIn(doc)
}

// LocateIn returns every anchor of doc, in page order.
func LocateIn(doc *reader.Document) ([]Anchor, error) {
	var out []Anchor
	for n, page := range doc.Pages() {
		runs, err := page.TextRuns()
		if err != nil {
			return nil, fmt.Errorf("anchor: page %d: %w", n, err)
		}
		_, h := page.Size()
		for _, r := range runs {
			for _, m := range markerRe.FindAllStringSubmatchIndex(r.Text, -1) {
				// Markers inside longer runs are placed by a half-em
				// estimate of the text before them.
				x := r.X + 0.5*r.Size*float64(utf8.RuneCountInString(r.Text[:m[0]]))
				out = append(out, Anchor{
					FieldID: r.Text[m[2]:m[3]],
					Page:    n,
					X:       x,
					Y:       r.Y,
					Top:     h - r.Y,
					Size:    r.Size,
				})
			}
		}
	}
	return out, nil
}

// Find returns the first anchor for fieldID.
func Find(data []byte, fieldID string) (Anchor, bool, error) {
	all, err := Locate(data)
	if err != nil {
		return Anchor{}, false, err
	}
	for _, a := range all {
		if a.FieldID == fieldID {
			return a, true, nil
		}
	}
	return Anchor{}, false, nil
}
