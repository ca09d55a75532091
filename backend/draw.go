package backend

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/pdf417"
	"github.com/boombuler/barcode/qr"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/barcode"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/lvillar/formfill/render"
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

// Error correction level of PDF417 symbols.
const pdf417Security = 2

// compose imports every base page into a new document and draws the
// queued operations over it.
func (d *Document) compose() (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(d.creator, true)
	meta := d.doc.Metadata()
	if t := meta["Title"]; t != "" {
		pdf.SetTitle(t, true)
	}
	if a := meta["Author"]; a != "" {
		pdf.SetAuthor(a, true)
	}
	d.set.register(pdf)

	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(d.src))
	for i, p := range d.pages {
		tpl := imp.ImportPageFromStream(pdf, &rs, i+1, "/MediaBox")
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.Width, Ht: p.Height})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, p.Width, p.Height)
		if pdf.Err() {
			return nil, fmt.Errorf("backend: page %d: %w", i+1, pdf.Error())
		}
		for _, op := range d.ops[i] {
			d.draw(pdf, p, i, op)
		}
	}
	if pdf.Err() {
		return nil, fmt.Errorf("backend: composing: %w", pdf.Error())
	}
	return pdf, nil
}

// draw paints one operation. fpdf measures y from the top of the page.
// Operations fpdf rejects are logged and skipped.
func (d *Document) draw(pdf *fpdf.Fpdf, p render.Page, page int, op render.Op) {
	switch op := op.(type) {
	case render.TextRun:
		d.text(pdf, op.Font, op.Size, op.Color, op.X, p.Height-op.Y, op.Text)
	case render.Tick:
		d.text(pdf, op.Font, op.Size, op.Color, op.X, p.Height-op.Y, op.Glyph)
	case render.Anchor:
		font := op.Font
		if d.set.isUTF8(font) {
			// Embedded TrueType text is written as glyph ids; anchors
			// must stay searchable.
			font = coreFonts[0]
		}
		d.text(pdf, font, op.Size, op.Color, op.X, p.Height-op.Y, op.Marker)
	case render.Image:
		name := imageName(op.Data)
		opt := fpdf.ImageOptions{ImageType: op.Format}
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(op.Data))
		if d.skip(pdf, page, "image") {
			return
		}
		pdf.ImageOptions(name, op.X, p.Height-op.Y-op.H, op.W, op.H, false, opt, 0, "")
	case render.Barcode:
		code, err := encodeBarcode(op.Format, op.Code)
		if err != nil {
			d.log.Debug("skip barcode", "page", page, "format", string(op.Format), "error", err)
			return
		}
		key := barcode.Register(code)
		barcode.Barcode(pdf, key, op.X, p.Height-op.Y-op.H, op.W, op.H, false)
	}
	d.skip(pdf, page, "draw")
}

func (d *Document) text(pdf *fpdf.Fpdf, font style.Font, size float64, c style.Color, x, y float64, s string) {
	font, s = d.set.encode(font, s)
	pdf.SetFont(font.Family, font.Style, size)
	pdf.SetTextColor(c.RGB255())
	pdf.Text(x, y, s)
}

// skip clears an error left by the last operation and reports whether
// there was one.
func (d *Document) skip(pdf *fpdf.Fpdf, page int, what string) bool {
	if !pdf.Err() {
		return false
	}
	d.log.Debug("skip "+what, "page", page, "error", pdf.Error())
	pdf.ClearError()
	return true
}

func encodeBarcode(format schema.BarcodeFormat, code string) (bc.Barcode, error) {
	switch format {
	case schema.BarcodeCode128:
		return code128.Encode(code)
	case schema.BarcodePDF417:
		return pdf417.Encode(code, pdf417Security)
	default:
		return qr.Encode(code, qr.M, qr.Auto)
	}
}

func imageName(data []byte) string {
	sum := sha256.Sum256(data)
	return "img-" + hex.EncodeToString(sum[:8])
}
