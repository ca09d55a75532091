package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleSchema = `[
	{
		"id": "f-1",
		"key": "client.pan_number",
		"type": "TEXT",
		"pageIndex": 0,
		"rect": {"x": 72, "y": 120.5, "w": 180, "h": 18},
		"style": {"fontFamily": "Helvetica-Bold", "fontSize": 12, "alignment": "CENTER", "color": "#1A2B3C", "tickChar": "X"},
		"validation": {"required": true, "regex": "^[A-Z]{5}", "maxLen": 10, "charSpacing": 1.5}
	},
	{
		"id": "f-2",
		"key": "consent",
		"type": "CHECKBOX",
		"pageIndex": 1,
		"rect": {"x": 10, "y": 10, "w": 12, "h": 12},
		"style": {},
		"validation": {"required": false}
	}
]`

func TestParseRoundTrip(t *testing.T) {
	fields, err := Parse([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}

	out, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse round trip: %v", err)
	}
	if diff := cmp.Diff(fields, again); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}

	var a, b any
	json.Unmarshal([]byte(sampleSchema), &a)
	json.Unmarshal(out, &b)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("encoded schema differs from input (-in +out):\n%s", diff)
	}

	v := fields[0].Validation
	if v.Regex == nil || *v.Regex != "^[A-Z]{5}" || v.MaxLen == nil || *v.MaxLen != 10 ||
		v.CharSpacing == nil || *v.CharSpacing != 1.5 {
		t.Errorf("validation not carried through: %+v", v)
	}
}

func TestParseKeepsUnknownType(t *testing.T) {
	fields, err := Parse([]byte(`[{"id":"x","key":"k","type":"HOLOGRAM","pageIndex":0,"rect":{"x":0,"y":0,"w":1,"h":1}}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fields[0].Type != "HOLOGRAM" || fields[0].Type.Known() {
		t.Errorf("type = %q, known = %v", fields[0].Type, fields[0].Type.Known())
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`[{"id":`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestStyleResolvedDefaults(t *testing.T) {
	got := Style{}.Resolved()
	want := ResolvedStyle{
		FontFamily: "Helvetica",
		FontSize:   11,
		Alignment:  AlignLeft,
		Color:      "#000000",
		TickChar:   "✓",
		Barcode:    BarcodeQR,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}

	empty := ""
	custom := Style{Alignment: "right", TickChar: &empty, Barcode: "PDF417", FontSize: -3}.Resolved()
	if custom.Alignment != AlignRight {
		t.Errorf("alignment = %q", custom.Alignment)
	}
	if custom.TickChar != DefaultTickChar {
		t.Errorf("tick = %q", custom.TickChar)
	}
	if custom.Barcode != BarcodePDF417 {
		t.Errorf("barcode = %q", custom.Barcode)
	}
	if custom.FontSize != DefaultFontSize {
		t.Errorf("font size = %v", custom.FontSize)
	}
}

func TestTypesAreKnown(t *testing.T) {
	for _, ft := range Types() {
		if !ft.Known() {
			t.Errorf("%s not known", ft)
		}
	}
}

func TestRenderOptionsCheck(t *testing.T) {
	for _, o := range []Output{"", OutputBuffer, OutputBase64} {
		if err := (RenderOptions{Output: o}).Check(); err != nil {
			t.Errorf("Check(%q): %v", o, err)
		}
	}
	if err := (RenderOptions{Output: "hex"}).Check(); err == nil {
		t.Error("expected error for unknown output")
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	fields := []Field{
		{ID: "1", Key: "name", Validation: Validation{Required: true}},
		{ID: "2", Key: "pan", Validation: Validation{Regex: ptr("[A-Z]{5}[0-9]{4}[A-Z]")}},
		{ID: "3", Key: "city", Validation: Validation{MaxLen: ptr(5)}},
		{ID: "4", Key: "note", Validation: Validation{Required: true}},
		{ID: "5", Key: "count", Validation: Validation{Regex: ptr("[0-9]+")}},
	}
	data := map[string]any{
		"pan":   "abcde1234f",
		"city":  "Zaragoza",
		"note":  "",
		"count": float64(0),
	}

	err := Validate(fields, data)
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want *ValidationErrors", err)
	}

	got := make([]string, 0, len(verrs.Violations))
	for _, v := range verrs.Violations {
		got = append(got, v.FieldID+":"+v.Rule)
	}
	want := []string{"1:required", "2:regex", "3:maxLen", "4:required"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations (-want +got):\n%s", diff)
	}
	if verrs.Violations[0].Message != "Field 'name' is required but missing" {
		t.Errorf("message = %q", verrs.Violations[0].Message)
	}
}

func TestValidatePasses(t *testing.T) {
	fields := []Field{
		{Key: "pan", Validation: Validation{Required: true, Regex: ptr("[A-Z]{5}"), MaxLen: ptr(10)}},
		{Key: "ok", Validation: Validation{Required: true}},
	}
	data := map[string]any{"pan": "ABCDE1234F", "ok": false}
	if err := Validate(fields, data); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateInvalidPattern(t *testing.T) {
	fields := []Field{{Key: "a", Validation: Validation{Regex: ptr("(")}}}
	err := Validate(fields, map[string]any{"a": "x"})
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) || verrs.Violations[0].Rule != "regex" {
		t.Fatalf("err = %v", err)
	}
}
