package payload

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decoding %s: %v", s, err)
	}
	return v
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		path    string
		want    any
		present bool
	}{
		{"nested", `{"a":{"b":5}}`, "a.b", float64(5), true},
		{"null intermediate", `{"a":null}`, "a.b", nil, false},
		{"missing", `{}`, "a.b", nil, false},
		{"false is present", `{"a":{"b":false}}`, "a.b", false, true},
		{"zero is present", `{"a":{"b":0}}`, "a.b", float64(0), true},
		{"empty string is present", `{"a":{"b":""}}`, "a.b", "", true},
		{"null leaf", `{"a":{"b":null}}`, "a.b", nil, false},
		{"scalar intermediate", `{"a":"text"}`, "a.b", nil, false},
		{"array intermediate", `{"a":[{"b":1}]}`, "a.b", nil, false},
		{"top level", `{"client":"Acme"}`, "client", "Acme", true},
		{"deep", `{"client":{"pan":{"number":"ABCDE1234F"}}}`, "client.pan.number", "ABCDE1234F", true},
		{"scalar root", `42`, "a", nil, false},
		{"null root", `null`, "a", nil, false},
		{"empty path segment", `{"a":{"":1}}`, "a.", float64(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(decode(t, tt.data), tt.path)
			if ok != tt.present {
				t.Fatalf("present = %v, want %v", ok, tt.present)
			}
			if ok && got != tt.want {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResolveMapLeafIsPresent(t *testing.T) {
	got, ok := Resolve(decode(t, `{"a":{"b":{"c":1}}}`), "a.b")
	if !ok {
		t.Fatal("map leaf reported absent")
	}
	if String(got) != `{"c":1}` {
		t.Errorf("String(map) = %s", String(got))
	}
}

func TestResolveStringMap(t *testing.T) {
	data := map[string]any{"meta": map[string]string{"ref": "X-1"}}
	got, ok := Resolve(data, "meta.ref")
	if !ok || got != "X-1" {
		t.Errorf("Resolve = %v, %v", got, ok)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"Hello", "Hello"},
		{float64(100), "100"},
		{1.5, "1.5"},
		{-0.25, "-0.25"},
		{1234567.0, "1234567"},
		{1e21, "1e+21"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(9), "9"},
		{json.Number("12.50"), "12.50"},
		{[]any{"a", float64(1)}, `["a",1]`},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := String(tt.in); got != tt.want {
			t.Errorf("String(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	on := []any{true, "true", float64(1), 1, int64(1), uint(1), json.Number("1")}
	off := []any{false, "false", float64(0), 0, nil, "", "TRUE", "1", "yes", float64(2), []any{}}

	for _, v := range on {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false, want true", v)
		}
	}
	for _, v := range off {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true, want false", v)
		}
	}
}
