package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/lvillar/formfill/schema"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func basePDF(t *testing.T) string {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return writeFile(t, "base.pdf", buf.Bytes())
}

func TestParseRequestYAML(t *testing.T) {
	path := writeFile(t, "req.yaml", []byte(`
fileUrl: https://example.com/lease.pdf
fieldSchema:
  - id: start
    key: lease.start
    type: DATE
    pageIndex: 1
    rect: {x: 72, y: 140, w: 220, h: 18}
    style: {fontSize: 9, alignment: RIGHT}
payload:
  lease: {start: 2024-03-05, signed: 2024-03-05T10:00:00Z}
options: {flatten: true, output: base64}
`))
	req, err := parseRequest("@" + path)
	if err != nil {
		t.Fatalf("parseRequest: %v", err)
	}
	if len(req.FieldSchema) != 1 {
		t.Fatalf("fields = %+v", req.FieldSchema)
	}
	f := req.FieldSchema[0]
	if f.Type != schema.TypeDate || f.PageIndex != 1 || f.Rect.W != 220 || f.Style.FontSize != 9 || f.Style.Alignment != schema.AlignRight {
		t.Errorf("field = %+v", f)
	}
	if !req.Options.Flatten || req.Options.Output != schema.OutputBase64 {
		t.Errorf("options = %+v", req.Options)
	}
	lease := req.Payload.(map[string]any)["lease"].(map[string]any)
	if lease["start"] != "2024-03-05" {
		t.Errorf("start = %#v", lease["start"])
	}
	if lease["signed"] != "2024-03-05T10:00:00Z" {
		t.Errorf("signed = %#v", lease["signed"])
	}
}

func TestParseRequestRejects(t *testing.T) {
	for _, arg := range []string{"{", "@" + filepath.Join(t.TempDir(), "missing.yaml")} {
		if _, err := parseRequest(arg); err == nil {
			t.Errorf("parseRequest(%q) succeeded", arg)
		}
	}
}

func TestRun(t *testing.T) {
	req := `{"fileUrl": "` + basePDF(t) + `", "fieldSchema": [], "payload": {}, "options": {"output": "base64"}}`
	var stdout, stderr bytes.Buffer
	if code := run([]string{req}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "JVBERi0") {
		t.Errorf("stdout = %.20q", stdout.String())
	}

	out := filepath.Join(t.TempDir(), "out.pdf")
	if code := run([]string{"-o", out, req}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Error(err)
	}
}

func TestRunExitCodes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Errorf("no request: exit %d", code)
	}
	if code := run([]string{"not json"}, &stdout, &stderr); code != 2 {
		t.Errorf("bad request: exit %d", code)
	}
	missing := `{"fileUrl": "` + filepath.Join(t.TempDir(), "none.pdf") + `", "fieldSchema": [], "payload": {}}`
	if code := run([]string{missing}, &stdout, &stderr); code != 1 {
		t.Errorf("missing base: exit %d", code)
	}
}

func TestFontName(t *testing.T) {
	for in, want := range map[string]string{
		"/usr/share/fonts/DejaVuSans.ttf": "DejaVuSans",
		`C:\Fonts\Go-Regular.ttf`:         "Go-Regular",
		"plain":                           "plain",
	} {
		if got := fontName(in); got != want {
			t.Errorf("fontName(%q) = %q, want %q", in, got, want)
		}
	}
}
