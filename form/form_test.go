package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/formfill/form"
	"github.com/lvillar/formfill/internal/pdftest"
	"github.com/lvillar/formfill/reader"
	"github.com/lvillar/formfill/schema"
)

func parseForm(t *testing.T) *reader.Document {
	t.Helper()
	doc, err := reader.Parse(pdftest.Form())
	if err != nil {
		t.Fatalf("parsing form: %v", err)
	}
	return doc
}

func TestParseDA(t *testing.T) {
	tests := []struct {
		da   string
		want form.Appearance
	}{
		{"/Helv 10 Tf 1 0 0 rg", form.Appearance{Font: "Helv", Size: 10, Color: "#FF0000"}},
		{"0.5 g /TiBo 0 Tf", form.Appearance{Font: "TiBo", Color: "#808080"}},
		{"/Cour 9 Tf 0 0 0 1 k", form.Appearance{Font: "Cour", Size: 9, Color: "#000000"}},
		{"", form.Appearance{}},
		{"garbage rg", form.Appearance{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, form.ParseDA(tt.da)); diff != "" {
			t.Errorf("ParseDA(%q) (-want +got):\n%s", tt.da, diff)
		}
	}
}

func TestFields(t *testing.T) {
	fields := form.Fields(parseForm(t))

	byID := make(map[string]schema.Field)
	for _, f := range fields {
		byID[f.ID] = f
	}
	if _, ok := byID["push"]; ok {
		t.Error("push button should not become a field")
	}

	name := byID["name"]
	want := schema.Field{
		ID:        "name",
		Key:       "name",
		Type:      schema.TypeText,
		PageIndex: 0,
		Rect:      schema.Rect{X: 50, Y: pdftest.PageH - 270, W: 200, H: 20},
		Style: schema.Style{
			FontFamily: "Helvetica",
			FontSize:   10,
			Alignment:  schema.AlignCenter,
			Color:      "#FF0000",
		},
	}
	if diff := cmp.Diff(want, name); diff != "" {
		t.Errorf("name (-want +got):\n%s", diff)
	}

	if f := byID["person.note"]; f.Type != schema.TypeTextarea || f.PageIndex != 1 || f.Key != "person.note" {
		t.Errorf("note = %+v", f)
	}
	if f := byID["agree"]; f.Type != schema.TypeCheckbox {
		t.Errorf("agree type = %q", f.Type)
	}
	if f := byID["sig"]; f.Type != schema.TypeSignature {
		t.Errorf("sig type = %q", f.Type)
	}
	if byID["color"].Type != schema.TypeRadio || byID["color#1"].Type != schema.TypeRadio {
		t.Errorf("radio ids = %q %q", byID["color"].ID, byID["color#1"].ID)
	}
}

func TestFlatten(t *testing.T) {
	fields, data := form.Flatten(parseForm(t))

	got := make(map[string]any)
	for _, f := range fields {
		got[string(f.Type)+":"+f.Key] = data[f.Key]
		if f.ID != f.Key {
			t.Errorf("id %q != key %q", f.ID, f.Key)
		}
	}
	// name, agree, country, note and the checked radio button.
	if len(fields) != 5 {
		t.Fatalf("got %d fields: %v", len(fields), got)
	}

	var texts []any
	checks := 0
	for _, f := range fields {
		switch f.Type {
		case schema.TypeText, schema.TypeTextarea:
			texts = append(texts, data[f.Key])
		case schema.TypeCheckbox, schema.TypeRadio:
			if data[f.Key] != true {
				t.Errorf("%s = %v", f.Key, data[f.Key])
			}
			checks++
		default:
			t.Errorf("unexpected type %q", f.Type)
		}
	}
	if diff := cmp.Diff([]any{"Ada Lovelace", "Spain", "Line"}, texts); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}
	if checks != 2 {
		t.Errorf("checks = %d, want 2", checks)
	}
}
