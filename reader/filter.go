package reader

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"
)

// Decode returns the stream data with its filter chain undone.
func (s Stream) Decode() ([]byte, error) {
	var filters []Name
	var params []Dict
	switch f := s.Dict["Filter"].(type) {
	case nil:
		return s.Raw, nil
	case Name:
		filters = []Name{f}
		p, _ := s.Dict["DecodeParms"].(Dict)
		params = []Dict{p}
	case Array:
		pa, _ := s.Dict["DecodeParms"].(Array)
		for i, o := range f {
			n, ok := o.(Name)
			if !ok {
				return nil, fmt.Errorf("reader: filter %d is not a name", i)
			}
			filters = append(filters, n)
			var p Dict
			if i < len(pa) {
				p, _ = pa[i].(Dict)
			}
			params = append(params, p)
		}
	default:
		return nil, fmt.Errorf("reader: bad /Filter")
	}

	data := s.Raw
	for i, f := range filters {
		var err error
		switch f {
		case "FlateDecode", "Fl":
			data, err = inflate(data)
			if err == nil {
				data, err = unpredict(data, params[i])
			}
		case "ASCIIHexDecode", "AHx":
			data, err = asciiHex(data)
		case "ASCII85Decode", "A85":
			data, err = ascii85Data(data)
		case "RunLengthDecode", "RL":
			data = runLength(data)
		default:
			err = fmt.Errorf("unsupported filter /%s", f)
		}
		if err != nil {
			return nil, fmt.Errorf("reader: %w", err)
		}
	}
	return data, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("flate: %w", err)
	}
	// Truncated streams are common; keep what inflated.
	return out, nil
}

// unpredict reverses a PNG predictor (Predictor >= 10), the only kind
// writers use for cross-reference streams.
func unpredict(data []byte, p Dict) ([]byte, error) {
	pred, _ := p.Int("Predictor")
	if pred < 10 {
		return data, nil
	}
	cols, ok := p.Int("Columns")
	if !ok || cols < 1 {
		cols = 1
	}
	colors, ok := p.Int("Colors")
	if !ok || colors < 1 {
		colors = 1
	}
	bpc, ok := p.Int("BitsPerComponent")
	if !ok || bpc < 1 {
		bpc = 8
	}
	bpp := int((colors*bpc + 7) / 8)
	rowLen := int((cols*colors*bpc + 7) / 8)

	var out []byte
	prev := make([]byte, rowLen)
	for len(data) > 0 {
		if len(data) < rowLen+1 {
			return nil, fmt.Errorf("predictor: short row")
		}
		tag, row := data[0], append([]byte(nil), data[1:rowLen+1]...)
		data = data[rowLen+1:]
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = row[i-bpp], prev[i-bpp]
			}
			up := prev[i]
			switch tag {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("predictor: bad row filter %d", tag)
			}
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func asciiHex(data []byte) ([]byte, error) {
	var digits []byte
	for _, c := range data {
		if c == '>' {
			break
		}
		if !isSpace(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("ascii hex: %w", err)
	}
	return out, nil
}

func ascii85Data(data []byte) ([]byte, error) {
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	out, err := io.ReadAll(ascii85.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("ascii85: %w", err)
	}
	return out, nil
}

func runLength(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out
		case n < 128:
			end := min(i+n+1, len(data))
			out = append(out, data[i:end]...)
			i = end
		default:
			if i < len(data) {
				out = append(out, bytes.Repeat(data[i:i+1], 257-n)...)
				i++
			}
		}
	}
	return out
}
