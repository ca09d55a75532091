package reader_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/formfill/internal/pdftest"
	"github.com/lvillar/formfill/reader"
)

func widgetsByName(t *testing.T, data []byte) map[string][]reader.Widget {
	t.Helper()
	doc, err := reader.Parse(data)
	if err != nil {
		t.Fatalf("parsing PDF: %v", err)
	}
	m := make(map[string][]reader.Widget)
	for _, w := range doc.Widgets() {
		m[w.Name] = append(m[w.Name], w)
	}
	return m
}

func TestWidgets(t *testing.T) {
	m := widgetsByName(t, pdftest.Form())

	for _, name := range []string{"name", "agree", "country", "sig", "person.note", "color", "push"} {
		if len(m[name]) == 0 {
			t.Errorf("widget %q not found", name)
		}
	}

	name := m["name"][0]
	if name.Type != "Tx" || name.Value != "Ada Lovelace" || name.Quadding != 1 || name.Page != 1 {
		t.Errorf("name = %+v", name)
	}
	if name.DA != "/Helv 10 Tf 1 0 0 rg" {
		t.Errorf("name DA = %q", name.DA)
	}
	want := reader.Rectangle{LLX: 50, LLY: 250, URX: 250, URY: 270}
	if diff := cmp.Diff(want, name.Rect); diff != "" {
		t.Errorf("name rect (-want +got):\n%s", diff)
	}

	if c := m["country"][0]; c.Value != "Spain" || !cmp.Equal(c.Options, []string{"France", "Spain"}) {
		t.Errorf("country = %+v", c)
	}
	if s := m["sig"][0]; s.Type != "Sig" {
		t.Errorf("sig type = %q", s.Type)
	}
}

func TestWidgetInheritance(t *testing.T) {
	m := widgetsByName(t, pdftest.Form())

	note := m["person.note"][0]
	if note.Value != "Line" || !note.IsMultiline() {
		t.Errorf("note = %+v", note)
	}
	if note.Page != 2 {
		t.Errorf("note page = %d, want 2 (from page annotations)", note.Page)
	}
	if note.DA != "/Helv 0 Tf 0 g" {
		t.Errorf("note DA = %q, want the form default", note.DA)
	}

	color := m["color"]
	if len(color) != 2 {
		t.Fatalf("color widgets = %d, want 2", len(color))
	}
	for i, w := range color {
		if w.Type != "Btn" || !w.IsRadio() || w.Value != "blue" {
			t.Errorf("color[%d] = %+v", i, w)
		}
	}
	if color[0].Checked() || !color[1].Checked() {
		t.Errorf("checked = %v %v, want false true", color[0].Checked(), color[1].Checked())
	}
}

func TestWidgetButtons(t *testing.T) {
	m := widgetsByName(t, pdftest.Form())

	agree := m["agree"][0]
	if !agree.Checked() || agree.IsRadio() || agree.IsPushButton() {
		t.Errorf("agree = %+v", agree)
	}
	push := m["push"][0]
	if !push.IsPushButton() || push.Checked() {
		t.Errorf("push = %+v", push)
	}
}

func TestWidgetsWithoutForm(t *testing.T) {
	doc, err := reader.Parse(generateTestPDF(t, "No form here"))
	if err != nil {
		t.Fatalf("parsing PDF: %v", err)
	}
	if w := doc.Widgets(); len(w) != 0 {
		t.Errorf("expected no widgets, got %d", len(w))
	}
}
