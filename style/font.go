// Package style resolves the symbolic style values of a field schema into
// concrete handles: fonts from an explicit per-document registry and colors
// from hex strings. Resolution never fails; bad input falls back to a
// default so one malformed field cannot abort a document.
package style

import "strings"

// Font is a handle to a font embedded in the output document. Family and
// Style are backend specific (for fpdf: a core family or a registered
// TrueType family, and "", "B", "I" or "BI").
type Font struct {
	Name   string // schema-facing name, e.g. "Helvetica-Bold"
	Family string
	Style  string
}

// Registry maps schema font family names to embedded fonts. It is built
// once per loaded document and handed to the renderer explicitly.
type Registry struct {
	fonts map[string]Font
	def   Font
}

// NewRegistry returns a registry whose fallback is def. def is also
// registered under its own name.
func NewRegistry(def Font) *Registry {
	r := &Registry{fonts: make(map[string]Font), def: def}
	r.Add(def)
	return r
}

// Add registers f under f.Name. Lookups are case-insensitive.
func (r *Registry) Add(f Font) {
	r.fonts[normalizeName(f.Name)] = f
}

// SetDefault changes the fallback font. Unregistered fonts are registered.
func (r *Registry) SetDefault(f Font) {
	r.def = f
	r.Add(f)
}

// Default returns the fallback font.
func (r *Registry) Default() Font {
	if r == nil {
		return Font{}
	}
	return r.def
}

// Lookup returns the font registered as name, or the default font.
func (r *Registry) Lookup(name string) Font {
	if r == nil {
		return Font{}
	}
	if f, ok := r.fonts[normalizeName(name)]; ok {
		return f
	}
	return r.def
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.fonts[normalizeName(name)]
	return ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
