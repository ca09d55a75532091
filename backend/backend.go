// Package backend loads a base PDF, measures and draws render operations
// over its pages with fpdf, and serializes the result.
//
// Every page of the base document is imported as a form XObject with
// gofpdi and placed on a fresh page of the same size; operations are drawn
// on top in schema order. Interactive AcroForm widgets of the base
// document are not carried over; Flatten draws their values instead, and
// callers that want to keep what the base document showed must call it.
package backend

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"

	"github.com/lvillar/formfill/form"
	"github.com/lvillar/formfill/reader"
	"github.com/lvillar/formfill/render"
	"github.com/lvillar/formfill/style"
)

// Option configures Open.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	ttf     []TrueType
	def     string
	creator string
}

// WithLogger sets the logger for skipped operations. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithFont embeds a TrueType font under name. Text set in it is written as
// UTF-8, so it can draw characters outside the core fonts' code page.
func WithFont(name string, ttf []byte) Option {
	return func(c *config) {
		c.ttf = append(c.ttf, TrueType{Name: name, Data: ttf})
	}
}

// WithDefaultFont changes the fallback font. Unknown names are ignored.
func WithDefaultFont(name string) Option {
	return func(c *config) {
		c.def = name
	}
}

// WithCreator sets the Creator entry of the output document.
func WithCreator(creator string) Option {
	return func(c *config) {
		c.creator = creator
	}
}

// Document is a base PDF being overlaid. It is not safe for concurrent
// use.
type Document struct {
	src     []byte
	doc     *reader.Document
	pages   []render.Page
	fonts   *style.Registry
	set     *fontSet
	measure *fpdf.Fpdf
	ops     [][]render.Op
	log     *slog.Logger
	creator string
}

// Open parses src and prepares it for drawing.
func Open(src []byte, opts ...Option) (*Document, error) {
	cfg := config{creator: "formfill"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	doc, err := reader.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	if doc.NumPages() == 0 {
		return nil, fmt.Errorf("backend: %w: no pages", reader.ErrCorrupted)
	}
	// gofpdi follows startxref with no recovery and can loop forever on
	// a damaged table.
	if doc.Repaired {
		return nil, fmt.Errorf("backend: %w: damaged cross-reference table", reader.ErrCorrupted)
	}

	d := &Document{
		src:     src,
		doc:     doc,
		fonts:   newRegistry(cfg.ttf, cfg.def),
		log:     cfg.logger,
		creator: cfg.creator,
	}
	for _, p := range doc.Pages() {
		w, h := p.Size()
		d.pages = append(d.pages, render.Page{Width: w, Height: h})
	}
	d.ops = make([][]render.Op, len(d.pages))

	d.set = &fontSet{ttf: cfg.ttf}
	d.measure = fpdf.New("P", "pt", "A4", "")
	d.set.tr = d.measure.UnicodeTranslatorFromDescriptor("")
	d.set.register(d.measure)
	if d.measure.Err() {
		return nil, fmt.Errorf("backend: registering fonts: %w", d.measure.Error())
	}
	return d, nil
}

// Pages returns the size of every page of the base document.
func (d *Document) Pages() []render.Page {
	return d.pages
}

// Fonts returns the font registry of the document.
func (d *Document) Fonts() *style.Registry {
	return d.fonts
}

// Reader returns the parsed base document.
func (d *Document) Reader() *reader.Document {
	return d.doc
}

// Env returns the render environment measuring with d.
func (d *Document) Env() render.Env {
	return render.Env{Fonts: d.fonts, Measure: d, Logger: d.log}
}

// TextWidth returns the advance width of text in points.
func (d *Document) TextWidth(font style.Font, size float64, text string) float64 {
	font, text = d.set.encode(font, text)
	d.measure.SetFont(font.Family, font.Style, size)
	w := d.measure.GetStringWidth(text)
	if d.measure.Err() {
		d.log.Debug("measure failed", "font", font.Name, "error", d.measure.Error())
		d.measure.ClearError()
		return 0
	}
	return w
}

// Draw queues ops for drawing, one slice per page. Operations for pages
// beyond the document are dropped.
func (d *Document) Draw(ops [][]render.Op) {
	for i, page := range ops {
		if i >= len(d.ops) {
			break
		}
		d.ops[i] = append(d.ops[i], page...)
	}
}

// Flatten queues the current value of every AcroForm widget of the base
// document as static content.
func (d *Document) Flatten() {
	fields, data := form.Flatten(d.doc)
	d.log.Debug("flatten", "widgets", len(fields))
	d.Draw(render.Plan(d.pages, fields, data, d.Env()))
}

// Bytes composes the output document. It can be called more than once.
func (d *Document) Bytes() (out []byte, err error) {
	defer func() {
		// gofpdi panics on some malformed inputs.
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("backend: importing pages: %v", r)
		}
	}()

	pdf, err := d.compose()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("backend: writing: %w", err)
	}
	return buf.Bytes(), nil
}
