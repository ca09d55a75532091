package backend

import (
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/lvillar/formfill/style"
)

// DefaultFont is the fallback family of every document.
const DefaultFont = "Helvetica"

var coreFonts = []style.Font{
	{Name: "Helvetica", Family: "Helvetica"},
	{Name: "Helvetica-Bold", Family: "Helvetica", Style: "B"},
	{Name: "Helvetica-Oblique", Family: "Helvetica", Style: "I"},
	{Name: "Helvetica-BoldOblique", Family: "Helvetica", Style: "BI"},
	{Name: "Times-Roman", Family: "Times"},
	{Name: "Times-Bold", Family: "Times", Style: "B"},
	{Name: "Times-Italic", Family: "Times", Style: "I"},
	{Name: "Times-BoldItalic", Family: "Times", Style: "BI"},
	{Name: "Courier", Family: "Courier"},
	{Name: "Courier-Bold", Family: "Courier", Style: "B"},
	{Name: "Courier-Oblique", Family: "Courier", Style: "I"},
	{Name: "Courier-BoldOblique", Family: "Courier", Style: "BI"},
}

// Common names that resolve to a core font.
var fontAliases = map[string]string{
	"Arial":           "Helvetica",
	"Arial-Bold":      "Helvetica-Bold",
	"Times":           "Times-Roman",
	"Times New Roman": "Times-Roman",
	"Courier New":     "Courier",
}

// ZapfDingbats codes for check glyphs that core text fonts cannot encode.
var dingbats = map[string]string{
	"✓": "3",
	"✔": "4",
	"✗": "7",
	"✘": "8",
}

// TrueType is a font program registered under Name.
type TrueType struct {
	Name string
	Data []byte
}

// newRegistry builds the font registry of a document: the core fonts, their
// aliases and the TrueType fonts in ttf.
func newRegistry(ttf []TrueType, def string) *style.Registry {
	r := style.NewRegistry(coreFonts[0])
	for _, f := range coreFonts[1:] {
		r.Add(f)
	}
	for alias, name := range fontAliases {
		f := r.Lookup(name)
		f.Name = alias
		r.Add(f)
	}
	for _, t := range ttf {
		r.Add(style.Font{Name: t.Name, Family: t.Name})
	}
	if def != "" && r.Has(def) {
		r.SetDefault(r.Lookup(def))
	}
	return r
}

// fontSet knows which families are embedded TrueType fonts.
type fontSet struct {
	ttf []TrueType
	tr  func(string) string
}

func (s *fontSet) isUTF8(f style.Font) bool {
	for _, t := range s.ttf {
		if strings.EqualFold(t.Name, f.Family) {
			return true
		}
	}
	return false
}

// register adds the TrueType fonts to pdf.
func (s *fontSet) register(pdf *fpdf.Fpdf) {
	for _, t := range s.ttf {
		pdf.AddUTF8FontFromBytes(t.Name, "", t.Data)
	}
}

// encode returns the font and byte string fpdf needs to draw text set in
// f. Core fonts take cp1252 text; check glyphs outside cp1252 switch to
// ZapfDingbats.
func (s *fontSet) encode(f style.Font, text string) (style.Font, string) {
	if f.Family == "" {
		f = coreFonts[0]
	}
	if s.isUTF8(f) {
		return f, text
	}
	if code, ok := dingbats[text]; ok {
		return style.Font{Name: "ZapfDingbats", Family: "ZapfDingbats"}, code
	}
	return f, s.tr(text)
}
