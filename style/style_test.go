package style

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#FF0000", Color{R: 1}},
		{"00ff00", Color{G: 1}},
		{"#0000fF", Color{B: 1}},
		{"#ffffff", White},
		{"zzz", Black},
		{"", Black},
		{"#FFF", Black},
		{"#GG0000", Black},
		{"#FF00001", Black},
		{"+12345", Black},
	}
	for _, tt := range tests {
		if got := ParseHex(tt.in); got != tt.want {
			t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRGB255(t *testing.T) {
	r, g, b := ParseHex("#1a80ff").RGB255()
	if r != 0x1a || g != 0x80 || b != 0xff {
		t.Errorf("RGB255 = %d,%d,%d", r, g, b)
	}
}

func TestRegistryFallback(t *testing.T) {
	helv := Font{Name: "Helvetica", Family: "Helvetica"}
	bold := Font{Name: "Helvetica-Bold", Family: "Helvetica", Style: "B"}

	reg := NewRegistry(helv)
	reg.Add(bold)

	if got := reg.Lookup("Helvetica-Bold"); got != bold {
		t.Errorf("Lookup(Helvetica-Bold) = %+v", got)
	}
	if got := reg.Lookup("helvetica-bold"); got != bold {
		t.Errorf("lookup is case sensitive: %+v", got)
	}
	if got := reg.Lookup("Comic Sans"); got != helv {
		t.Errorf("unknown font = %+v, want default", got)
	}
	if got := reg.Lookup(""); got != helv {
		t.Errorf("empty name = %+v, want default", got)
	}
	if !reg.Has("HELVETICA") {
		t.Error("default font is not registered under its own name")
	}
}

func TestRegistrySetDefault(t *testing.T) {
	reg := NewRegistry(Font{Name: "Helvetica"})
	courier := Font{Name: "Courier", Family: "Courier"}
	reg.SetDefault(courier)
	if got := reg.Lookup("missing"); got != courier {
		t.Errorf("fallback = %+v, want courier", got)
	}
}
