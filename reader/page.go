package reader

import (
	"fmt"
)

// A4 is used for pages without a usable /MediaBox.
var A4 = Rectangle{URX: 595.28, URY: 841.89}

// Rectangle is a PDF rectangle in default user space.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// normalize orders the corners so that LL is below and left of UR.
func (r Rectangle) normalize() Rectangle {
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r
}

// Page is one leaf of the page tree.
type Page struct {
	Number    int       // 1-based
	Ref       Reference // zero for pages defined inline
	MediaBox  Rectangle
	CropBox   *Rectangle
	Rotate    int // normalized to 0, 90, 180 or 270
	Resources Dict

	contents []Stream
	annots   []Object
	doc      *Document
}

// Size returns the displayed page size in points: the media box, turned
// when the page is rotated by a quarter turn.
func (p *Page) Size() (w, h float64) {
	w, h = p.MediaBox.Width(), p.MediaBox.Height()
	if p.Rotate == 90 || p.Rotate == 270 {
		w, h = h, w
	}
	return w, h
}

// ContentStream returns the decoded content streams of the page joined by
// newlines.
func (p *Page) ContentStream() ([]byte, error) {
	var out []byte
	for _, s := range p.contents {
		b, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("reader: page %d content: %w", p.Number, err)
		}
		out = append(out, b...)
		out = append(out, '\n')
	}
	return out, nil
}

func (d *Document) rect(o Object) (Rectangle, bool) {
	a, ok := d.Resolve(o).(Array)
	if !ok || len(a) != 4 {
		return Rectangle{}, false
	}
	var v [4]float64
	for i, e := range a {
		if v[i], ok = number(d.Resolve(e)); !ok {
			return Rectangle{}, false
		}
	}
	return Rectangle{v[0], v[1], v[2], v[3]}.normalize(), true
}

// inheritable page attributes.
var inherited = []Name{"MediaBox", "CropBox", "Resources", "Rotate"}

func (d *Document) loadPages() error {
	cat := d.Catalog()
	if cat == nil {
		return fmt.Errorf("%w: missing catalog", ErrCorrupted)
	}
	root := cat["Pages"]
	if _, ok := d.Resolve(root).(Dict); !ok {
		return fmt.Errorf("%w: missing page tree", ErrCorrupted)
	}
	return d.walkPages(root, Dict{}, make(map[int]bool))
}

func (d *Document) walkPages(o Object, attrs Dict, seen map[int]bool) error {
	ref, isRef := o.(Reference)
	if isRef {
		if seen[ref.Num] {
			return fmt.Errorf("%w: page tree cycle at object %d", ErrCorrupted, ref.Num)
		}
		seen[ref.Num] = true
	}
	node, ok := d.Resolve(o).(Dict)
	if !ok {
		return nil
	}

	merged := make(Dict, len(attrs))
	for k, v := range attrs {
		merged[k] = v
	}
	for _, k := range inherited {
		if v, ok := node[k]; ok {
			merged[k] = v
		}
	}

	kids, hasKids := d.Resolve(node["Kids"]).(Array)
	if node.Name("Type") == "Pages" || (node.Name("Type") == "" && hasKids) {
		for _, k := range kids {
			if err := d.walkPages(k, merged, seen); err != nil {
				return err
			}
		}
		return nil
	}

	p := &Page{Number: len(d.pages) + 1, MediaBox: A4, doc: d}
	if isRef {
		p.Ref = ref
	}
	if r, ok := d.rect(merged["MediaBox"]); ok && r.Width() > 0 && r.Height() > 0 {
		p.MediaBox = r
	}
	if r, ok := d.rect(merged["CropBox"]); ok {
		p.CropBox = &r
	}
	if n, ok := number(d.Resolve(merged["Rotate"])); ok {
		p.Rotate = ((int(n)%360)+360)%360 / 90 * 90
	}
	p.Resources, _ = d.Resolve(merged["Resources"]).(Dict)

	switch c := d.Resolve(node["Contents"]).(type) {
	case Stream:
		p.contents = []Stream{c}
	case Array:
		for _, e := range c {
			if s, ok := d.Resolve(e).(Stream); ok {
				p.contents = append(p.contents, s)
			}
		}
	}
	if a, ok := d.Resolve(node["Annots"]).(Array); ok {
		p.annots = a
	}

	d.pages = append(d.pages, p)
	return nil
}
