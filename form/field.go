// Package form reads the AcroForm of an existing PDF as field schemas, so
// a form designed in another tool can be rendered by the overlay engine.
//
// Widget rectangles are converted to the top-left origin used by schemas.
// Style is taken from each widget's default appearance string (/DA) and
// quadding (/Q); validation from the Required flag and /MaxLen.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lvillar/formfill/layout"
	"github.com/lvillar/formfill/reader"
	"github.com/lvillar/formfill/schema"
)

// Standard resource names for the base 14 fonts in AcroForm /DR
// dictionaries.
var daFonts = map[string]string{
	"Helv": "Helvetica",
	"HeBo": "Helvetica-Bold",
	"HeOb": "Helvetica-Oblique",
	"HeBO": "Helvetica-BoldOblique",
	"TiRo": "Times-Roman",
	"TiBo": "Times-Bold",
	"TiIt": "Times-Italic",
	"TiBI": "Times-BoldItalic",
	"Cour": "Courier",
	"CoBo": "Courier-Bold",
	"CoOb": "Courier-Oblique",
	"CoBO": "Courier-BoldOblique",
	"ZaDb": "ZapfDingbats",
}

// Appearance is what a /DA string specifies.
type Appearance struct {
	Font  string  // resource name without slash, e.g. "Helv"
	Size  float64 // 0 means auto-size
	Color string  // "#RRGGBB", empty when unset
}

// ParseDA reads the font (Tf) and fill color (g, rg or k) operators of a
// default appearance string. Later operators override earlier ones.
func ParseDA(da string) Appearance {
	var a Appearance
	var stack []string
	for _, tok := range strings.Fields(da) {
		switch tok {
		case "Tf":
			if n := len(stack); n >= 2 {
				a.Font = strings.TrimPrefix(stack[n-2], "/")
				a.Size, _ = strconv.ParseFloat(stack[n-1], 64)
			}
		case "g":
			if v, ok := floats(stack, 1); ok {
				a.Color = hexColor(v[0], v[0], v[0])
			}
		case "rg":
			if v, ok := floats(stack, 3); ok {
				a.Color = hexColor(v[0], v[1], v[2])
			}
		case "k":
			if v, ok := floats(stack, 4); ok {
				c, m, y, k := v[0], v[1], v[2], v[3]
				a.Color = hexColor((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
			}
		default:
			stack = append(stack, tok)
			continue
		}
		stack = stack[:0]
	}
	return a
}

func floats(stack []string, n int) ([]float64, bool) {
	if len(stack) < n {
		return nil, false
	}
	v := make([]float64, n)
	for i, s := range stack[len(stack)-n:] {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		v[i] = f
	}
	return v, true
}

func hexColor(r, g, b float64) string {
	c := func(f float64) int {
		return int(min(max(f, 0), 1)*255 + 0.5)
	}
	return fmt.Sprintf("#%02X%02X%02X", c(r), c(g), c(b))
}

// fieldType maps a widget to the schema type that renders its value.
// Push buttons and unknown field types have none.
func fieldType(w *reader.Widget) (schema.FieldType, bool) {
	switch w.Type {
	case "Tx":
		if w.IsMultiline() {
			return schema.TypeTextarea, true
		}
		return schema.TypeText, true
	case "Ch":
		return schema.TypeText, true
	case "Btn":
		switch {
		case w.IsPushButton():
			return "", false
		case w.IsRadio():
			return schema.TypeRadio, true
		}
		return schema.TypeCheckbox, true
	case "Sig":
		return schema.TypeSignature, true
	}
	return "", false
}

// convert builds the schema of one widget. Widgets on no page are skipped.
func convert(doc *reader.Document, w *reader.Widget) (schema.Field, bool) {
	ft, ok := fieldType(w)
	if !ok {
		return schema.Field{}, false
	}
	page, err := doc.Page(w.Page)
	if err != nil {
		return schema.Field{}, false
	}
	_, pageH := page.Size()

	f := schema.Field{
		ID:        w.Name,
		Key:       w.Name,
		Type:      ft,
		PageIndex: w.Page - 1,
		Rect:      layout.FromBottomLeft(pageH, w.Rect.LLX, w.Rect.LLY, w.Rect.URX, w.Rect.URY),
	}

	da := ParseDA(w.DA)
	if name, ok := daFonts[da.Font]; ok && name != "ZapfDingbats" {
		f.Style.FontFamily = name
	}
	if da.Size > 0 {
		f.Style.FontSize = da.Size
	}
	f.Style.Color = da.Color
	switch w.Quadding {
	case 1:
		f.Style.Alignment = schema.AlignCenter
	case 2:
		f.Style.Alignment = schema.AlignRight
	}

	f.Validation.Required = w.IsRequired()
	if w.MaxLen > 0 && (ft == schema.TypeText || ft == schema.TypeTextarea) {
		n := w.MaxLen
		f.Validation.MaxLen = &n
	}
	return f, true
}

// Fields returns a schema for every fillable widget of doc, keyed by the
// fully qualified field name. Radio groups yield one field per button,
// distinguished by an "#n" suffix on the ID.
func Fields(doc *reader.Document) []schema.Field {
	var out []schema.Field
	count := make(map[string]int)
	for _, w := range doc.Widgets() {
		f, ok := convert(doc, &w)
		if !ok {
			continue
		}
		if n := count[w.Name]; n > 0 {
			f.ID = fmt.Sprintf("%s#%d", w.Name, n)
		}
		count[w.Name]++
		out = append(out, f)
	}
	return out
}
