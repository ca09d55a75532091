package reader

// Field flag bits (PDF 32000-1, 12.7.3.1 and 12.7.4).
const (
	FlagReadOnly    = 1 << 0
	FlagRequired    = 1 << 1
	FlagMultiline   = 1 << 12
	FlagRadio       = 1 << 15
	FlagPushButton  = 1 << 16
	FlagCombo       = 1 << 17
	FlagNoToggleOff = 1 << 14
)

// Widget is one widget annotation of a terminal AcroForm field, with the
// inheritable field attributes already resolved.
type Widget struct {
	Name     string   // fully qualified field name
	Type     Name     // Tx, Btn, Ch or Sig
	Value    string   // field value (/V)
	State    Name     // appearance state of a button widget (/AS)
	Flags    int      // field flags (/Ff)
	Rect     Rectangle
	Page     int      // 1-based page number, 0 when the widget is on no page
	Options  []string // choice options (/Opt)
	MaxLen   int
	DA       string // default appearance string
	Quadding int    // 0 left, 1 centered, 2 right
	Ref      Reference
}

// IsReadOnly reports the ReadOnly flag.
func (w *Widget) IsReadOnly() bool { return w.Flags&FlagReadOnly != 0 }

// IsRequired reports the Required flag.
func (w *Widget) IsRequired() bool { return w.Flags&FlagRequired != 0 }

// IsMultiline reports a multi-line text field.
func (w *Widget) IsMultiline() bool { return w.Type == "Tx" && w.Flags&FlagMultiline != 0 }

// IsRadio reports a radio button.
func (w *Widget) IsRadio() bool { return w.Type == "Btn" && w.Flags&FlagRadio != 0 }

// IsPushButton reports a push button, which holds no value.
func (w *Widget) IsPushButton() bool { return w.Type == "Btn" && w.Flags&FlagPushButton != 0 }

// Checked reports whether a check box or radio widget is on. The
// appearance state decides when present, the field value otherwise.
func (w *Widget) Checked() bool {
	if w.Type != "Btn" || w.IsPushButton() {
		return false
	}
	if w.State != "" {
		return w.State != "Off"
	}
	return w.Value != "" && w.Value != "Off"
}

// fieldAttrs are the attributes a field passes down to its kids.
type fieldAttrs struct {
	name  string
	ft    Name
	v     Object
	ff    int
	da    string
	q     int
	opt   Object
	maxLn int
}

// Widgets returns the widgets of every terminal field in the AcroForm,
// in field tree order. A document without a form has no widgets.
func (d *Document) Widgets() []Widget {
	form, _ := d.Resolve(d.Catalog()["AcroForm"]).(Dict)
	fields, _ := d.Resolve(form["Fields"]).(Array)
	if len(fields) == 0 {
		return nil
	}

	attrs := fieldAttrs{da: form.Text("DA")}
	if q, ok := form.Int("Q"); ok {
		attrs.q = int(q)
	}
	pageOf := d.annotationPages()

	var out []Widget
	seen := make(map[int]bool)
	for _, f := range fields {
		out = d.walkField(f, attrs, pageOf, seen, out)
	}
	return out
}

func (d *Document) walkField(o Object, parent fieldAttrs, pageOf map[int]int, seen map[int]bool, out []Widget) []Widget {
	ref, isRef := o.(Reference)
	if isRef {
		if seen[ref.Num] {
			return out
		}
		seen[ref.Num] = true
	}
	node, ok := d.Resolve(o).(Dict)
	if !ok {
		return out
	}

	a := parent
	if t := node.Text("T"); t != "" {
		if a.name != "" {
			a.name += "."
		}
		a.name += t
	}
	if ft := node.Name("FT"); ft != "" {
		a.ft = ft
	}
	if v, ok := node["V"]; ok {
		a.v = v
	}
	if ff, ok := node.Int("Ff"); ok {
		a.ff = int(ff)
	}
	if da := node.Text("DA"); da != "" {
		a.da = da
	}
	if q, ok := node.Int("Q"); ok {
		a.q = int(q)
	}
	if opt, ok := node["Opt"]; ok {
		a.opt = opt
	}
	if ml, ok := node.Int("MaxLen"); ok {
		a.maxLn = int(ml)
	}

	if kids, ok := d.Resolve(node["Kids"]).(Array); ok && len(kids) > 0 {
		for _, k := range kids {
			out = d.walkField(k, a, pageOf, seen, out)
		}
		return out
	}

	w := Widget{
		Name:     a.name,
		Type:     a.ft,
		Value:    valueString(d.Resolve(a.v)),
		State:    node.Name("AS"),
		Flags:    a.ff,
		MaxLen:   a.maxLn,
		DA:       a.da,
		Quadding: a.q,
	}
	if isRef {
		w.Ref = ref
	}
	w.Rect, _ = d.rect(node["Rect"])
	if opts, ok := d.Resolve(a.opt).(Array); ok {
		for _, e := range opts {
			// Entries are either a display string or an [export display] pair.
			if pair, ok := d.Resolve(e).(Array); ok && len(pair) == 2 {
				e = pair[1]
			}
			w.Options = append(w.Options, valueString(d.Resolve(e)))
		}
	}
	if p, ok := node["P"].(Reference); ok {
		w.Page = d.pageNumber(p)
	}
	if w.Page == 0 && isRef {
		w.Page = pageOf[ref.Num]
	}
	return append(out, w)
}

// annotationPages maps annotation object numbers to the page listing them.
func (d *Document) annotationPages() map[int]int {
	m := make(map[int]int)
	for _, p := range d.pages {
		for _, a := range p.annots {
			if r, ok := a.(Reference); ok {
				if _, dup := m[r.Num]; !dup {
					m[r.Num] = p.Number
				}
			}
		}
	}
	return m
}

func (d *Document) pageNumber(r Reference) int {
	for _, p := range d.pages {
		if p.Ref.Num == r.Num && r.Num != 0 {
			return p.Number
		}
	}
	return 0
}
