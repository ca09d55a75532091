package layout

import (
	"math"
	"testing"

	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

// perRune measures every rune as half the font size wide.
var perRune = MeasureFunc(func(_ style.Font, size float64, text string) float64 {
	return float64(len([]rune(text))) * size * 0.5
})

func TestBaseY(t *testing.T) {
	tests := []struct {
		pageH float64
		r     schema.Rect
		want  float64
	}{
		{100, schema.Rect{X: 10, Y: 10, W: 100, H: 20}, 70},
		{842, schema.Rect{Y: 0, H: 0}, 842},
		{792, schema.Rect{Y: 700.25, H: 12.5}, 79.25},
	}
	for _, tt := range tests {
		if got := BaseY(tt.pageH, tt.r); got != tt.want {
			t.Errorf("BaseY(%v, %+v) = %v, want %v", tt.pageH, tt.r, got, tt.want)
		}
	}
}

func TestBaseYKeepsDistanceFromTop(t *testing.T) {
	r := schema.Rect{X: 5, Y: 37.5, W: 40, H: 12}
	for _, h := range []float64{100, 595.28, 841.89, 1224} {
		top := h - (BaseY(h, r) + r.H)
		if top != r.Y {
			t.Errorf("page height %v: distance from top = %v, want %v", h, top, r.Y)
		}
	}
}

func TestFromBottomLeftRoundTrip(t *testing.T) {
	pageH := 841.89
	r := schema.Rect{X: 72, Y: 100, W: 200, H: 18}
	baseY := BaseY(pageH, r)

	got := FromBottomLeft(pageH, r.X, baseY, r.X+r.W, baseY+r.H)
	if math.Abs(got.X-r.X) > 1e-9 || math.Abs(got.Y-r.Y) > 1e-9 ||
		math.Abs(got.W-r.W) > 1e-9 || math.Abs(got.H-r.H) > 1e-9 {
		t.Fatalf("round trip = %+v, want %+v", got, r)
	}

	swapped := FromBottomLeft(pageH, r.X+r.W, baseY+r.H, r.X, baseY)
	if swapped != got {
		t.Errorf("swapped corners = %+v, want %+v", swapped, got)
	}
}

func TestFitKeepsSizeWhenTextFits(t *testing.T) {
	font := style.Font{Name: "Helvetica"}
	size, width := Fit(perRune, font, "Hello", 11, 100)
	if size != 11 {
		t.Errorf("size = %v, want 11", size)
	}
	if width != 27.5 {
		t.Errorf("width = %v, want 27.5", width)
	}
}

func TestFitExactWidthIsNotShrunk(t *testing.T) {
	size, _ := Fit(perRune, style.Font{}, "abcd", 10, 20)
	if size != 10 {
		t.Errorf("size = %v, want 10", size)
	}
}

func TestFitShrinksOverflowingText(t *testing.T) {
	text := "A rather long customer name"
	boxW := 60.0
	size, width := Fit(perRune, style.Font{}, text, 12, boxW)

	if size >= 12 {
		t.Fatalf("size = %v, want less than 12", size)
	}
	if width > boxW {
		t.Errorf("fitted width %v exceeds box %v", width, boxW)
	}
	measured := perRune.TextWidth(style.Font{}, 12, text)
	want := 12 * (boxW / measured) * ShrinkMargin
	if math.Abs(size-want) > 1e-9 {
		t.Errorf("size = %v, want %v", size, want)
	}
	if math.Abs(width-boxW*ShrinkMargin) > 1e-9 {
		t.Errorf("width = %v, want %v", width, boxW*ShrinkMargin)
	}
}

func TestFitNonPositiveBox(t *testing.T) {
	size, _ := Fit(perRune, style.Font{}, "overflow", 11, 0)
	if size != 11 {
		t.Errorf("size = %v, want 11", size)
	}
}

func TestAlignX(t *testing.T) {
	r := schema.Rect{X: 10, W: 100}
	tests := []struct {
		align schema.Alignment
		want  float64
	}{
		{schema.AlignLeft, 10},
		{schema.AlignCenter, 40},
		{schema.AlignRight, 70},
		{"JUSTIFY", 10},
	}
	for _, tt := range tests {
		if got := AlignX(tt.align, r, 40); got != tt.want {
			t.Errorf("AlignX(%s) = %v, want %v", tt.align, got, tt.want)
		}
	}
}

func TestCenterY(t *testing.T) {
	if got := CenterY(70, 20, 11); got != 74.5 {
		t.Errorf("CenterY = %v, want 74.5", got)
	}
}
