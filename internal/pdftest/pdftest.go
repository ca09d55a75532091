// Package pdftest writes small PDF files by hand for tests: forms with
// widgets, cross-reference streams and object streams that the fpdf
// writer never produces.
package pdftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Builder collects numbered objects. Object n is objs[n-1].
type Builder struct {
	objs []string
}

// New returns an empty builder.
func New() *Builder { return &Builder{} }

// Add appends an object body (without "obj"/"endobj") and returns its
// number.
func (b *Builder) Add(body string) int {
	b.objs = append(b.objs, body)
	return len(b.objs)
}

// Reserve allocates a number to be filled with Set.
func (b *Builder) Reserve() int { return b.Add("null") }

// Set replaces the body of object n.
func (b *Builder) Set(n int, body string) { b.objs[n-1] = body }

// Stream formats a stream object body with a correct /Length.
func Stream(dict string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

func isStream(body string) bool { return strings.Contains(body, "\nstream\n") }

// Bytes writes the document with a classic cross-reference table.
func (b *Builder) Bytes(root int, trailer string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R %s >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objs)+1, root, trailer, xref)
	return buf.Bytes()
}

// BytesCompressed writes the document with every non-stream object packed
// into one object stream and a cross-reference stream.
func (b *Builder) BytesCompressed(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	stm := len(b.objs) + 1
	xrefNum := len(b.objs) + 2
	type entry struct {
		kind       byte
		off, index int
	}
	entries := make([]entry, xrefNum+1)

	var header, body strings.Builder
	packed := 0
	for i, o := range b.objs {
		if isStream(o) {
			continue
		}
		fmt.Fprintf(&header, "%d %d ", i+1, body.Len())
		body.WriteString(o)
		body.WriteString("\n")
		entries[i+1] = entry{kind: 2, off: stm, index: packed}
		packed++
	}

	for i, o := range b.objs {
		if !isStream(o) {
			continue
		}
		entries[i+1] = entry{kind: 1, off: buf.Len()}
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	data := header.String() + body.String()
	entries[stm] = entry{kind: 1, off: buf.Len()}
	fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", stm,
		Stream(fmt.Sprintf("/Type /ObjStm /N %d /First %d", packed, header.Len()), []byte(data)))

	entries[xrefNum] = entry{kind: 1, off: buf.Len()}
	var rows bytes.Buffer
	for _, e := range entries {
		rows.WriteByte(e.kind)
		binary.Write(&rows, binary.BigEndian, uint32(e.off))
		binary.Write(&rows, binary.BigEndian, uint16(e.index))
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", xrefNum,
		Stream(fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] /Root %d 0 R", len(entries), root), rows.Bytes()))
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// Page sizes in points.
const (
	PageW = 400.0
	PageH = 300.0
)

// Widget geometry of Form, as /Rect [llx lly urx ury].
var (
	NameRect    = [4]float64{50, 250, 250, 270}
	AgreeRect   = [4]float64{50, 200, 62, 212}
	CountryRect = [4]float64{50, 150, 200, 170}
	SigRect     = [4]float64{50, 50, 200, 90}
	NoteRect    = [4]float64{50, 100, 300, 140} // on page 2
	ColorRects  = [2][4]float64{{250, 200, 262, 212}, {280, 200, 292, 212}}
)

func rect(r [4]float64) string {
	return fmt.Sprintf("[%g %g %g %g]", r[0], r[1], r[2], r[3])
}

// Doc returns a document of n blank pages sized PageW × PageH whose first
// page shows text with Helvetica at (72, 72).
func Doc(n int, text string) []byte {
	b := New()
	catalog := b.Reserve()
	pages := b.Reserve()
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	var kids []string
	for i := 0; i < n; i++ {
		content := ""
		if i == 0 && text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 72 Td (%s) Tj ET", escape(text))
		}
		c := b.Add(Stream("", []byte(content)))
		p := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>", pages, c, font))
		kids = append(kids, fmt.Sprintf("%d 0 R", p))
	}
	b.Set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %g %g] >>",
		strings.Join(kids, " "), n, PageW, PageH))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
	return b.Bytes(catalog, "")
}

// Form returns a two-page document with an AcroForm:
//
//	name     text "Ada Lovelace", centered, 10pt red, page 1
//	agree    check box, on, page 1
//	country  combo box "Spain", page 1
//	sig      signature, page 1
//	person.note  multi-line text "Line", page 2 (found through /Annots)
//	color    radio group, value /blue, second kid on
//	push     push button, page 1
func Form() []byte {
	return formBuilder().build(false)
}

// FormCompressed is Form written with an object stream and a
// cross-reference stream.
func FormCompressed() []byte {
	return formBuilder().build(true)
}

type formDoc struct {
	b       *Builder
	catalog int
}

func (f formDoc) build(compressed bool) []byte {
	if compressed {
		return f.b.BytesCompressed(f.catalog)
	}
	return f.b.Bytes(f.catalog, "/Info << /Title (Form) >>")
}

func formBuilder() formDoc {
	b := New()
	catalog := b.Reserve()
	pages := b.Reserve()
	p1 := b.Reserve()
	p2 := b.Reserve()

	name := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Tx /T (name) /V (Ada Lovelace) /Q 1 /DA (/Helv 10 Tf 1 0 0 rg) /Rect %s /P %d 0 R >>", rect(NameRect), p1))
	agree := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /T (agree) /V /Yes /AS /Yes /Rect %s /P %d 0 R >>", rect(AgreeRect), p1))
	country := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Ch /Ff %d /T (country) /V (Spain) /Opt [(France) [(es) (Spain)]] /Rect %s /P %d 0 R >>", 1<<17, rect(CountryRect), p1))
	sig := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Sig /T (sig) /Rect %s /P %d 0 R >>", rect(SigRect), p1))

	person := b.Reserve()
	note := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Tx /Ff %d /T (note) /V <FEFF004C0069006E0065> /Parent %d 0 R /Rect %s >>", 1<<12, person, rect(NoteRect)))
	b.Set(person, fmt.Sprintf("<< /T (person) /Kids [%d 0 R] >>", note))

	color := b.Reserve()
	red := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %d 0 R /AS /Off /Rect %s /P %d 0 R >>", color, rect(ColorRects[0]), p1))
	blue := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %d 0 R /AS /blue /Rect %s /P %d 0 R >>", color, rect(ColorRects[1]), p1))
	b.Set(color, fmt.Sprintf("<< /FT /Btn /Ff %d /T (color) /V /blue /Kids [%d 0 R %d 0 R] >>", 1<<15, red, blue))

	push := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /Ff %d /T (push) /Rect [0 0 10 10] /P %d 0 R >>", 1<<16, p1))

	c1 := b.Add(Stream("", []byte("BT /F1 12 Tf 50 280 Td (Page one) Tj ET")))
	c2 := b.Add(Stream("", []byte("q 1 0 0 1 10 20 cm BT /F1 8 Tf 40 60 Td (Page two) Tj ET Q")))
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	res := fmt.Sprintf("<< /Font << /F1 %d 0 R >> >>", font)

	b.Set(p1, fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Contents %d 0 R /Resources %s /Annots [%d 0 R %d 0 R %d 0 R %d 0 R %d 0 R %d 0 R %d 0 R] >>",
		pages, c1, res, name, agree, country, sig, red, blue, push))
	b.Set(p2, fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Contents %d 0 R /Resources %s /Annots [%d 0 R] >>",
		pages, c2, res, note))
	b.Set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R %d 0 R] /Count 2 /MediaBox [0 0 %g %g] >>", p1, p2, PageW, PageH))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm << /Fields [%d 0 R %d 0 R %d 0 R %d 0 R %d 0 R %d 0 R %d 0 R] /DA (/Helv 0 Tf 0 g) >> >>",
		pages, name, agree, country, sig, person, color, push))
	return formDoc{b: b, catalog: catalog}
}

// Encrypted returns a minimal document carrying an /Encrypt dictionary.
func Encrypted() []byte {
	b := New()
	catalog := b.Reserve()
	pages := b.Add("<< /Type /Pages /Kids [] /Count 0 >>")
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
	enc := b.Add("<< /Filter /Standard /V 1 /R 2 /O (x) /U (y) /P -4 >>")
	return b.Bytes(catalog, fmt.Sprintf("/Encrypt %d 0 R", enc))
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
