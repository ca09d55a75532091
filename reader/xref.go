package reader

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// xrefEntry locates one object: at a byte offset, or as the index-th
// member of an object stream.
type xrefEntry struct {
	free   bool
	offset int64
	stream int // object stream number, 0 for uncompressed objects
	index  int
	gen    int
}

type xrefTable map[int]xrefEntry

// putIfAbsent keeps the newest definition: sections are read newest first.
func (t xrefTable) putIfAbsent(num int, e xrefEntry) {
	if _, ok := t[num]; !ok {
		t[num] = e
	}
}

func findStartXRef(data []byte) (int64, error) {
	tail := data[max(0, len(data)-2048):]
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("%w: startxref not found", ErrCorrupted)
	}
	l := newLexer(tail[i+len("startxref"):])
	off, err := strconv.ParseInt(l.word(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad startxref", ErrCorrupted)
	}
	return off, nil
}

// readXRef follows the /Prev chain from the section at off. The returned
// trailer is the newest one, completed with keys only older trailers carry.
func readXRef(data []byte, off int64) (xrefTable, Dict, error) {
	table := make(xrefTable)
	var trailer Dict
	seen := make(map[int64]bool)

	for off >= 0 && !seen[off] {
		seen[off] = true
		if off >= int64(len(data)) {
			return nil, nil, fmt.Errorf("%w: xref offset %d beyond end of file", ErrCorrupted, off)
		}

		var section Dict
		var err error
		if bytes.HasPrefix(bytes.TrimLeft(data[off:], " \t\r\n"), []byte("xref")) {
			// Hybrid files list compressed objects in /XRefStm and mark
			// them free in the classic table; the stream wins.
			classic := make(xrefTable)
			section, err = readXRefTable(data, off, classic)
			if err == nil {
				if stm, ok := section.Int("XRefStm"); ok && !seen[stm] {
					seen[stm] = true
					_, err = readXRefStream(data, stm, table)
				}
			}
			for num, e := range classic {
				table.putIfAbsent(num, e)
			}
		} else {
			section, err = readXRefStream(data, off, table)
		}
		if err != nil {
			return nil, nil, err
		}

		if trailer == nil {
			trailer = section
		} else {
			for _, k := range []Name{"Root", "Info", "Encrypt", "ID"} {
				if _, ok := trailer[k]; !ok && section[k] != nil {
					trailer[k] = section[k]
				}
			}
		}

		prev, ok := section.Int("Prev")
		if !ok {
			break
		}
		off = prev
	}
	return table, trailer, nil
}

func readXRefTable(data []byte, off int64, table xrefTable) (Dict, error) {
	l := newLexer(data[off:])
	l.word() // xref
	for {
		save := l.pos
		w := l.word()
		if w == "trailer" {
			break
		}
		if w == "" {
			return nil, fmt.Errorf("%w: xref table without trailer", ErrCorrupted)
		}
		l.pos = save

		first, err1 := strconv.Atoi(l.word())
		count, err2 := strconv.Atoi(l.word())
		if err1 != nil || err2 != nil || count < 0 {
			return nil, fmt.Errorf("%w: bad xref subsection header", ErrCorrupted)
		}
		for i := 0; i < count; i++ {
			o, err1 := strconv.ParseInt(l.word(), 10, 64)
			g, err2 := strconv.Atoi(l.word())
			kind := l.word()
			if err1 != nil || err2 != nil || (kind != "n" && kind != "f") {
				return nil, fmt.Errorf("%w: bad xref entry for object %d", ErrCorrupted, first+i)
			}
			table.putIfAbsent(first+i, xrefEntry{free: kind == "f", offset: o, gen: g})
		}
	}
	t, err := l.value()
	if err != nil {
		return nil, fmt.Errorf("%w: trailer: %v", ErrCorrupted, err)
	}
	d, ok := t.(Dict)
	if !ok {
		return nil, fmt.Errorf("%w: trailer is not a dictionary", ErrCorrupted)
	}
	return d, nil
}

func readXRefStream(data []byte, off int64, table xrefTable) (Dict, error) {
	if off < 0 || off >= int64(len(data)) {
		return nil, fmt.Errorf("%w: xref stream offset %d", ErrCorrupted, off)
	}
	_, o, err := newLexer(data[off:]).indirect()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	s, ok := o.(Stream)
	if !ok || s.Dict.Name("Type") != "XRef" {
		return nil, fmt.Errorf("%w: no xref section at %d", ErrCorrupted, off)
	}
	raw, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: xref stream: %v", ErrCorrupted, err)
	}

	wa, _ := s.Dict["W"].(Array)
	if len(wa) != 3 {
		return nil, fmt.Errorf("%w: xref stream /W", ErrCorrupted)
	}
	var w [3]int
	for i, o := range wa {
		n, _ := number(o)
		w[i] = int(n)
	}
	size := w[0] + w[1] + w[2]
	if size == 0 {
		return nil, fmt.Errorf("%w: xref stream /W", ErrCorrupted)
	}

	var index []int
	if ia, ok := s.Dict["Index"].(Array); ok {
		for _, o := range ia {
			n, _ := number(o)
			index = append(index, int(n))
		}
	} else {
		n, _ := s.Dict.Int("Size")
		index = []int{0, int(n)}
	}

	field := func(b []byte) int64 {
		var v int64
		for _, c := range b {
			v = v<<8 | int64(c)
		}
		return v
	}
	for i := 0; i+1 < len(index); i += 2 {
		for j := 0; j < index[i+1] && len(raw) >= size; j++ {
			row := raw[:size]
			raw = raw[size:]
			kind := int64(1)
			if w[0] > 0 {
				kind = field(row[:w[0]])
			}
			a, b := field(row[w[0]:w[0]+w[1]]), field(row[w[0]+w[1]:])
			num := index[i] + j
			switch kind {
			case 0:
				table.putIfAbsent(num, xrefEntry{free: true})
			case 1:
				table.putIfAbsent(num, xrefEntry{offset: a, gen: int(b)})
			case 2:
				table.putIfAbsent(num, xrefEntry{stream: int(a), index: int(b)})
			}
		}
	}
	return s.Dict, nil
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)

// rebuildXRef recovers a table from a document whose cross-reference data
// is missing or damaged by scanning for object headers.
func rebuildXRef(data []byte) (xrefTable, Dict, error) {
	table := make(xrefTable)
	var root Reference
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		table[num] = xrefEntry{offset: int64(m[2]), gen: gen}

		if _, o, err := newLexer(data[m[2]:]).indirect(); err == nil {
			if d, ok := o.(Dict); ok && d.Name("Type") == "Catalog" {
				root = Reference{Num: num, Gen: gen}
			}
		}
	}
	if len(table) == 0 {
		return nil, nil, fmt.Errorf("%w: no objects found", ErrCorrupted)
	}

	trailer := Dict{}
	if i := bytes.LastIndex(data, []byte("trailer")); i >= 0 {
		l := newLexer(data[i+len("trailer"):])
		if o, err := l.value(); err == nil {
			if d, ok := o.(Dict); ok {
				trailer = d
			}
		}
	}
	if _, ok := trailer["Root"]; !ok {
		if root.Num == 0 {
			return nil, nil, fmt.Errorf("%w: catalog not found", ErrCorrupted)
		}
		trailer["Root"] = root
	}
	return table, trailer, nil
}
