package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// lexer reads PDF objects out of a byte slice. It serves both the file
// body, where streams and indirect objects appear, and page content
// streams, where bare operator keywords appear between operands.
type lexer struct {
	buf []byte
	pos int

	// length resolves an indirect /Length of a stream. Nil when the
	// lexer runs without a document.
	length func(Reference) (int, bool)
}

func newLexer(buf []byte) *lexer {
	return &lexer{buf: buf}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool { return !isSpace(c) && !isDelim(c) }

func (l *lexer) eof() bool { return l.pos >= len(l.buf) }

// skip advances over white space and comments.
func (l *lexer) skip() {
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		if c == '%' {
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

// word reads a run of regular characters.
func (l *lexer) word() string {
	l.skip()
	start := l.pos
	for l.pos < len(l.buf) && isRegular(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

// hasPrefix reports whether the input at the cursor starts with s.
func (l *lexer) hasPrefix(s string) bool {
	return bytes.HasPrefix(l.buf[l.pos:], []byte(s))
}

// next reads one object or, in content streams, one operator keyword.
// Exactly one of obj and keyword is set on success. io.EOF marks the end
// of input.
func (l *lexer) next() (obj Object, keyword string, err error) {
	l.skip()
	if l.eof() {
		return nil, "", io.EOF
	}
	switch c := l.buf[l.pos]; {
	case c == '/':
		return l.name(), "", nil
	case c == '(':
		s, err := l.literal()
		return s, "", err
	case c == '<':
		if l.hasPrefix("<<") {
			d, err := l.dict()
			return d, "", err
		}
		s, err := l.hex()
		return s, "", err
	case c == '[':
		a, err := l.array()
		return a, "", err
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		l.pos++
		return nil, string(c), nil
	case c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.':
		o, err := l.number()
		return o, "", err
	}

	w := l.word()
	switch w {
	case "true":
		return Boolean(true), "", nil
	case "false":
		return Boolean(false), "", nil
	case "null":
		return Null{}, "", nil
	case "":
		l.pos++
		return nil, "", fmt.Errorf("reader: unexpected byte %q at %d", l.buf[l.pos-1], l.pos-1)
	}
	return nil, w, nil
}

// value reads one object and rejects keywords.
func (l *lexer) value() (Object, error) {
	o, kw, err := l.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if kw != "" {
		return nil, fmt.Errorf("reader: unexpected %q at %d", kw, l.pos)
	}
	return o, nil
}

func (l *lexer) name() Name {
	l.pos++ // '/'
	var b []byte
	for l.pos < len(l.buf) && isRegular(l.buf[l.pos]) {
		c := l.buf[l.pos]
		if c == '#' && l.pos+2 < len(l.buf) {
			if hi, lo := unhex(l.buf[l.pos+1]), unhex(l.buf[l.pos+2]); hi >= 0 && lo >= 0 {
				b = append(b, byte(hi<<4|lo))
				l.pos += 3
				continue
			}
		}
		b = append(b, c)
		l.pos++
	}
	return Name(b)
}

// number reads an integer, a real, or an "N G R" reference.
func (l *lexer) number() (Object, error) {
	start := l.pos
	tok := l.word()
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(tok, 64)
		if ferr != nil {
			if tok == "-" || tok == "." || tok == "+" {
				return Real(0), nil
			}
			return nil, fmt.Errorf("reader: bad number %q at %d", tok, start)
		}
		return Real(f), nil
	}

	after := l.pos
	if gen, ok := l.refTail(); ok {
		return Reference{Num: int(n), Gen: gen}, nil
	}
	l.pos = after
	return Integer(n), nil
}

// refTail consumes " G R" after an integer if present.
func (l *lexer) refTail() (int, bool) {
	l.skip()
	if l.eof() || l.buf[l.pos] < '0' || l.buf[l.pos] > '9' {
		return 0, false
	}
	gen, err := strconv.Atoi(l.word())
	if err != nil {
		return 0, false
	}
	l.skip()
	if l.eof() || l.buf[l.pos] != 'R' {
		return 0, false
	}
	if l.pos+1 < len(l.buf) && isRegular(l.buf[l.pos+1]) {
		return 0, false
	}
	l.pos++
	return gen, true
}

func (l *lexer) literal() (String, error) {
	l.pos++ // '('
	var b []byte
	depth := 1
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return String(b), nil
			}
		case '\\':
			if l.eof() {
				return nil, io.ErrUnexpectedEOF
			}
			e := l.buf[l.pos]
			l.pos++
			switch e {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\r':
				if !l.eof() && l.buf[l.pos] == '\n' {
					l.pos++
				}
				continue
			case '\n':
				continue
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && !l.eof() && l.buf[l.pos] >= '0' && l.buf[l.pos] <= '7'; i++ {
						v = v*8 + int(l.buf[l.pos]-'0')
						l.pos++
					}
					c = byte(v)
				} else {
					c = e
				}
			}
		}
		b = append(b, c)
	}
	return nil, fmt.Errorf("reader: unterminated string")
}

func (l *lexer) hex() (String, error) {
	l.pos++ // '<'
	var b []byte
	hi := -1
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		l.pos++
		if c == '>' {
			if hi >= 0 {
				b = append(b, byte(hi<<4))
			}
			return String(b), nil
		}
		v := unhex(c)
		if v < 0 {
			if isSpace(c) {
				continue
			}
			return nil, fmt.Errorf("reader: bad hex digit %q", c)
		}
		if hi < 0 {
			hi = v
		} else {
			b = append(b, byte(hi<<4|v))
			hi = -1
		}
	}
	return nil, fmt.Errorf("reader: unterminated hex string")
}

func (l *lexer) array() (Array, error) {
	l.pos++ // '['
	var a Array
	for {
		l.skip()
		if l.eof() {
			return nil, fmt.Errorf("reader: unterminated array")
		}
		if l.buf[l.pos] == ']' {
			l.pos++
			return a, nil
		}
		o, err := l.value()
		if err != nil {
			return nil, err
		}
		a = append(a, o)
	}
}

func (l *lexer) dict() (Dict, error) {
	l.pos += 2 // '<<'
	d := make(Dict)
	for {
		l.skip()
		if l.eof() {
			return nil, fmt.Errorf("reader: unterminated dictionary")
		}
		if l.hasPrefix(">>") {
			l.pos += 2
			return d, nil
		}
		if l.buf[l.pos] != '/' {
			return nil, fmt.Errorf("reader: dictionary key expected at %d", l.pos)
		}
		key := l.name()
		v, err := l.value()
		if err != nil {
			return nil, fmt.Errorf("reader: value of /%s: %w", key, err)
		}
		d[key] = v
	}
}

// indirect reads "N G obj ... endobj", including stream data.
func (l *lexer) indirect() (Reference, Object, error) {
	var ref Reference
	num, err := strconv.Atoi(l.word())
	if err != nil {
		return ref, nil, fmt.Errorf("reader: object number expected at %d", l.pos)
	}
	gen, err := strconv.Atoi(l.word())
	if err != nil {
		return ref, nil, fmt.Errorf("reader: generation expected at %d", l.pos)
	}
	if kw := l.word(); kw != "obj" {
		return ref, nil, fmt.Errorf("reader: %d %d: \"obj\" expected, got %q", num, gen, kw)
	}
	ref = Reference{Num: num, Gen: gen}

	o, err := l.value()
	if err != nil {
		return ref, nil, fmt.Errorf("reader: object %s: %w", ref, err)
	}
	l.skip()
	if d, ok := o.(Dict); ok && l.hasPrefix("stream") {
		raw, err := l.streamData(d)
		if err != nil {
			return ref, nil, fmt.Errorf("reader: object %s: %w", ref, err)
		}
		o = Stream{Dict: d, Raw: raw}
	}
	return ref, o, nil
}

// streamData reads the bytes after the "stream" keyword. A missing or
// wrong /Length falls back to the position of "endstream".
func (l *lexer) streamData(d Dict) ([]byte, error) {
	l.pos += len("stream")
	if l.hasPrefix("\r\n") {
		l.pos += 2
	} else if l.hasPrefix("\n") || l.hasPrefix("\r") {
		l.pos++
	}
	start := l.pos

	n := -1
	switch v := d["Length"].(type) {
	case Integer:
		n = int(v)
	case Reference:
		if l.length != nil {
			if m, ok := l.length(v); ok {
				n = m
			}
		}
	}
	if n >= 0 && start+n <= len(l.buf) {
		l.pos = start + n
		l.skip()
		if l.hasPrefix("endstream") {
			l.pos += len("endstream")
			return l.buf[start : start+n], nil
		}
	}

	end := bytes.Index(l.buf[start:], []byte("endstream"))
	if end < 0 {
		return nil, fmt.Errorf("reader: endstream not found")
	}
	data := l.buf[start : start+end]
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	l.pos = start + end + len("endstream")
	return data, nil
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
