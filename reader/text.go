package reader

import (
	"errors"
	"io"
	"math"
	"strings"
	"unicode/utf16"
)

// TextRun is a string shown by one text operator, positioned at the start
// of its baseline in default user space.
type TextRun struct {
	Text string
	X, Y float64
	Size float64 // font size scaled by the text and graphics matrices
}

// maxFormDepth bounds nested form XObjects.
const maxFormDepth = 8

type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

// TextRuns returns the strings shown on the page, including those inside
// form XObjects. Glyph advances are not tracked: consecutive strings in
// one text object without a positioning operator share a start point.
// Strings are decoded as PDFDocEncoding or UTF-16BE, so text set in
// composite fonts is not recovered.
func (p *Page) TextRuns() ([]TextRun, error) {
	data, err := p.ContentStream()
	if err != nil {
		return nil, err
	}
	var runs []TextRun
	p.doc.scanText(data, p.Resources, identity, 0, &runs)
	return runs, nil
}

// ExtractText returns the page text with runs separated by spaces.
func (p *Page) ExtractText() (string, error) {
	runs, err := p.TextRuns()
	if err != nil {
		return "", err
	}
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = r.Text
	}
	return strings.Join(parts, " "), nil
}

type textState struct {
	ctm     matrix
	tm, tlm matrix
	size    float64
	leading float64
}

func (d *Document) scanText(data []byte, res Dict, ctm matrix, depth int, runs *[]TextRun) {
	l := newLexer(data)
	st := textState{ctm: ctm, tm: identity, tlm: identity}
	var stack []matrix
	var args []Object

	show := func(s String) {
		x, y := st.tm.mul(st.ctm).apply(0, 0)
		scale := st.tm.mul(st.ctm)
		*runs = append(*runs, TextRun{
			Text: s.Text(),
			X:    x,
			Y:    y,
			Size: st.size * math.Hypot(scale[2], scale[3]),
		})
	}
	nums := func(n int) ([]float64, bool) {
		if len(args) < n {
			return nil, false
		}
		v := make([]float64, n)
		for i, a := range args[len(args)-n:] {
			f, ok := number(a)
			if !ok {
				return nil, false
			}
			v[i] = f
		}
		return v, true
	}
	moveLine := func(tx, ty float64) {
		st.tlm = matrix{1, 0, 0, 1, tx, ty}.mul(st.tlm)
		st.tm = st.tlm
	}

	for {
		o, op, err := l.next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			// The bad token was consumed; drop its operands.
			args = args[:0]
			continue
		}
		if op == "" {
			args = append(args, o)
			continue
		}

		switch op {
		case "q":
			stack = append(stack, st.ctm)
		case "Q":
			if n := len(stack); n > 0 {
				st.ctm, stack = stack[n-1], stack[:n-1]
			}
		case "cm":
			if v, ok := nums(6); ok {
				st.ctm = matrix(v).mul(st.ctm)
			}
		case "BT":
			st.tm, st.tlm = identity, identity
		case "Tf":
			if v, ok := nums(1); ok {
				st.size = v[0]
			}
		case "TL":
			if v, ok := nums(1); ok {
				st.leading = v[0]
			}
		case "Td":
			if v, ok := nums(2); ok {
				moveLine(v[0], v[1])
			}
		case "TD":
			if v, ok := nums(2); ok {
				st.leading = -v[1]
				moveLine(v[0], v[1])
			}
		case "Tm":
			if v, ok := nums(6); ok {
				st.tm = matrix(v)
				st.tlm = st.tm
			}
		case "T*":
			moveLine(0, -st.leading)
		case "Tj":
			if s, ok := last(args).(String); ok {
				show(s)
			}
		case "'":
			moveLine(0, -st.leading)
			if s, ok := last(args).(String); ok {
				show(s)
			}
		case "\"":
			moveLine(0, -st.leading)
			if s, ok := last(args).(String); ok {
				show(s)
			}
		case "TJ":
			if a, ok := last(args).(Array); ok {
				var b []byte
				for _, e := range a {
					if s, ok := e.(String); ok {
						b = append(b, s...)
					}
				}
				show(String(b))
			}
		case "Do":
			if n, ok := last(args).(Name); ok && depth < maxFormDepth {
				d.scanForm(res, n, st.ctm, depth, runs)
			}
		case "BI":
			skipInlineImage(l)
		}
		args = args[:0]
	}
}

func (d *Document) scanForm(res Dict, name Name, ctm matrix, depth int, runs *[]TextRun) {
	xobjs, _ := d.Resolve(res["XObject"]).(Dict)
	s, ok := d.Resolve(xobjs[name]).(Stream)
	if !ok || s.Dict.Name("Subtype") != "Form" {
		return
	}
	data, err := s.Decode()
	if err != nil {
		return
	}
	m := identity
	if a, ok := d.Resolve(s.Dict["Matrix"]).(Array); ok && len(a) == 6 {
		for i, e := range a {
			m[i], _ = number(d.Resolve(e))
		}
	}
	formRes, ok := d.Resolve(s.Dict["Resources"]).(Dict)
	if !ok {
		formRes = res
	}
	d.scanText(data, formRes, m.mul(ctm), depth+1, runs)
}

// skipInlineImage moves past "ID <data> EI".
func skipInlineImage(l *lexer) {
	for {
		_, op, err := l.next()
		if err != nil && errors.Is(err, io.EOF) {
			return
		}
		if op == "ID" {
			break
		}
	}
	for l.pos+2 < len(l.buf) {
		if isSpace(l.buf[l.pos]) && l.buf[l.pos+1] == 'E' && l.buf[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.buf) || !isRegular(l.buf[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.buf)
}

func last(args []Object) Object {
	if len(args) == 0 {
		return nil
	}
	return args[len(args)-1]
}

func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		b = b[2:]
		u := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}
