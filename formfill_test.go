package formfill_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/internal/pdftest"
	"github.com/lvillar/formfill/reader"
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/source"
)

const a4Height = 841.89

func createTestPDF(t testing.TB, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(72, 72, "Contract")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generating test PDF: %v", err)
	}
	return buf.Bytes()
}

func helveticaWidth(size float64, text string) float64 {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", size)
	return pdf.GetStringWidth(text)
}

func runs(t *testing.T, out []byte, page int) []reader.TextRun {
	t.Helper()
	doc, err := reader.Parse(out)
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	p, err := doc.Page(page)
	if err != nil {
		t.Fatalf("page %d: %v", page, err)
	}
	r, err := p.TextRuns()
	if err != nil {
		t.Fatalf("TextRuns: %v", err)
	}
	return r
}

func find(rs []reader.TextRun, text string) (reader.TextRun, bool) {
	for _, r := range rs {
		if r.Text == text {
			return r, true
		}
	}
	return reader.TextRun{}, false
}

func TestRenderPlacesText(t *testing.T) {
	fields := []schema.Field{{
		ID:   "f1",
		Key:  "customer.name",
		Type: schema.TypeText,
		Rect: schema.Rect{X: 100, Y: 50, W: 200, H: 20},
		Style: schema.Style{
			FontSize:  11,
			Alignment: schema.AlignCenter,
		},
	}}
	data := map[string]any{"customer": map[string]any{"name": "Ada Lovelace"}}

	out, err := formfill.Render(context.Background(), createTestPDF(t, 1), fields, data, schema.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	r, ok := find(runs(t, out, 1), "Ada Lovelace")
	if !ok {
		t.Fatal("value not drawn")
	}
	wantX := 100 + (200-helveticaWidth(11, "Ada Lovelace"))/2
	wantY := (a4Height - 50 - 20) + (20-11)/2.0
	if math.Abs(r.X-wantX) > 0.01 || math.Abs(r.Y-wantY) > 0.01 || r.Size != 11 {
		t.Errorf("run at (%v, %v) size %v, want (%v, %v) size 11", r.X, r.Y, r.Size, wantX, wantY)
	}
}

func TestRenderSkipsWhatCannotBeDrawn(t *testing.T) {
	fields := []schema.Field{
		{ID: "ok", Key: "present", Type: schema.TypeText, Rect: schema.Rect{X: 10, Y: 10, W: 100, H: 20}},
		{ID: "absent", Key: "missing", Type: schema.TypeText, Rect: schema.Rect{X: 10, Y: 40, W: 100, H: 20}},
		{ID: "far", Key: "present", Type: schema.TypeText, PageIndex: 7, Rect: schema.Rect{X: 10, Y: 70, W: 100, H: 20}},
		{ID: "odd", Key: "present", Type: "HOLOGRAM", Rect: schema.Rect{X: 10, Y: 100, W: 100, H: 20}},
		{ID: "sig", Key: "present", Type: schema.TypeSignature, Rect: schema.Rect{X: 10, Y: 130, W: 100, H: 20}},
	}
	out, err := formfill.Render(context.Background(), createTestPDF(t, 1), fields, map[string]any{"present": "here"}, schema.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	count := 0
	for _, r := range runs(t, out, 1) {
		if r.Text == "here" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("value drawn %d times, want 1", count)
	}
}

func TestRenderBase64(t *testing.T) {
	out, err := formfill.Render(context.Background(), createTestPDF(t, 1), nil, nil, schema.RenderOptions{Output: schema.OutputBase64})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(string(out))
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		t.Errorf("decoded output starts with %q", raw[:min(8, len(raw))])
	}
}

func TestRenderRejectsOutputMode(t *testing.T) {
	_, err := formfill.Render(context.Background(), createTestPDF(t, 1), nil, nil, schema.RenderOptions{Output: "stream"})
	if !errors.Is(err, formfill.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestRenderLoadErrors(t *testing.T) {
	_, err := formfill.Render(context.Background(), []byte("<html>"), nil, nil, schema.RenderOptions{})
	if !errors.Is(err, formfill.ErrLoad) || !errors.Is(err, reader.ErrCorrupted) {
		t.Errorf("garbage: err = %v", err)
	}
	_, err = formfill.Render(context.Background(), pdftest.Encrypted(), nil, nil, schema.RenderOptions{})
	if !errors.Is(err, formfill.ErrLoad) || !errors.Is(err, reader.ErrEncrypted) {
		t.Errorf("encrypted: err = %v", err)
	}
	var op *formfill.OpError
	if !errors.As(err, &op) || op.Op != "open" {
		t.Errorf("op error = %+v", op)
	}

	base := createTestPDF(t, 2)
	truncated := base[:bytes.Index(base, []byte("trailer"))]
	done := make(chan error, 1)
	go func() {
		_, err := formfill.Render(context.Background(), truncated, nil, nil, schema.RenderOptions{})
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, formfill.ErrLoad) || !errors.Is(err, reader.ErrCorrupted) {
			t.Errorf("truncated: err = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("truncated document did not return")
	}
}

func TestRenderValidation(t *testing.T) {
	fields := []schema.Field{{
		ID: "email", Key: "email", Type: schema.TypeEmail,
		Rect:       schema.Rect{X: 10, Y: 10, W: 100, H: 20},
		Validation: schema.Validation{Required: true},
	}}
	base := createTestPDF(t, 1)

	if _, err := formfill.Render(context.Background(), base, fields, map[string]any{}, schema.RenderOptions{}); err != nil {
		t.Errorf("without validation: %v", err)
	}

	_, err := formfill.Render(context.Background(), base, fields, map[string]any{}, schema.RenderOptions{}, formfill.WithValidation())
	if !errors.Is(err, formfill.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var verr *schema.ValidationErrors
	if !errors.As(err, &verr) || len(verr.Violations) != 1 || verr.Violations[0].Rule != "required" {
		t.Errorf("violations = %+v", verr)
	}
}

func TestRenderFlatten(t *testing.T) {
	fields := []schema.Field{{
		ID: "extra", Key: "extra", Type: schema.TypeText,
		Rect: schema.Rect{X: 20, Y: 20, W: 150, H: 20},
	}}
	out, err := formfill.Render(context.Background(), pdftest.Form(), fields, map[string]any{"extra": "Overlay"}, schema.RenderOptions{Flatten: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rs := runs(t, out, 1)
	for _, want := range []string{"Overlay", "Ada Lovelace", "Spain"} {
		if _, ok := find(rs, want); !ok {
			t.Errorf("%q not drawn", want)
		}
	}

	// Widgets never survive the page import, so their values are drawn
	// whether or not flattening was asked for.
	out, err = formfill.Render(context.Background(), pdftest.Form(), nil, nil, schema.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rs = runs(t, out, 1)
	for _, want := range []string{"Ada Lovelace", "Spain"} {
		if _, ok := find(rs, want); !ok {
			t.Errorf("%q lost without flatten", want)
		}
	}
	doc, err := reader.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(doc.Widgets()); n != 0 {
		t.Errorf("output has %d widgets, want static content only", n)
	}
}

func TestGenerate(t *testing.T) {
	base := createTestPDF(t, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/base.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(base)
	}))
	defer srv.Close()

	var req formfill.Request
	body := `{
		"fileUrl": "` + srv.URL + `/base.pdf",
		"fieldSchema": [
			{"id": "sig-1", "key": "unused", "type": "SIGNATURE_ANCHOR", "pageIndex": 1,
			 "rect": {"x": 72, "y": 600, "w": 200, "h": 40}},
			{"id": "d", "key": "signed", "type": "DATE", "pageIndex": 1,
			 "rect": {"x": 300, "y": 600, "w": 10, "h": 20}}
		],
		"payload": {"unused": "signer", "signed": "2024-03-05T10:00:00Z"},
		"options": {"output": "buffer"}
	}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decoding request: %v", err)
	}

	out, err := formfill.Generate(context.Background(), req, formfill.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	rs := runs(t, out, 2)
	if _, ok := find(rs, `\s{sig-1}\`); !ok {
		t.Errorf("anchor missing: %+v", rs)
	}
	if r, ok := find(rs, "05-03-2024"); !ok || r.Size != 11 {
		t.Errorf("date run = %+v, %v", r, ok)
	}

	req.FileURL = srv.URL + "/gone.pdf"
	_, err = formfill.Generate(context.Background(), req, formfill.WithHTTPClient(srv.Client()))
	if !errors.Is(err, formfill.ErrLoad) || !errors.Is(err, source.ErrStatus) {
		t.Errorf("missing base: err = %v", err)
	}
}

func TestGenerateRejectsRequest(t *testing.T) {
	for _, req := range []formfill.Request{
		{},
		{FileURL: "base.pdf", Options: schema.RenderOptions{Output: "zip"}},
	} {
		if _, err := formfill.Generate(context.Background(), req); !errors.Is(err, formfill.ErrInvalidRequest) {
			t.Errorf("Generate(%+v) err = %v", req, err)
		}
	}
}

func TestOpErrorMessage(t *testing.T) {
	err := &formfill.OpError{Op: "load", Kind: formfill.ErrLoad, Err: errors.New("boom")}
	if got := err.Error(); got != "formfill.load: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !strings.Contains((&formfill.OpError{Op: "x"}).Error(), "unknown") {
		t.Error("nil cause not reported")
	}
}
