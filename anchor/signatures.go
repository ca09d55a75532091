package anchor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	sigTypeRe   = regexp.MustCompile(`/Type\s*/Sig\b`)
	byteRangeRe = regexp.MustCompile(`/ByteRange\s*\[([^\]]+)\]`)
)

// Signature is a digital signature dictionary present in a document.
// Overlaying a signed document rewrites every page, so such signatures do
// not survive generation.
type Signature struct {
	Reason    string    `json:"reason,omitempty"`
	Location  string    `json:"location,omitempty"`
	SignedAt  time.Time `json:"signedAt,omitzero"`
	ByteRange [4]int    `json:"byteRange"`
}

// Signatures scans the raw bytes of a PDF for signature dictionaries.
func Signatures(data []byte) []Signature {
	var out []Signature
	for _, m := range sigTypeRe.FindAllIndex(data, -1) {
		start := dictStart(data, m[0])
		if start < 0 {
			continue
		}
		end := dictEnd(data, start)
		if end < 0 {
			continue
		}
		dict := data[start : end+1]
		out = append(out, Signature{
			Reason:    pdfString(dict, "/Reason"),
			Location:  pdfString(dict, "/Location"),
			SignedAt:  pdfDate(pdfString(dict, "/M")),
			ByteRange: byteRange(dict),
		})
	}
	return out
}

// dictStart finds the "<<" opening the dictionary around pos.
func dictStart(data []byte, pos int) int {
	for i := pos - 1; i > 0; i-- {
		if data[i] == '<' && data[i-1] == '<' {
			return i - 1
		}
		if i >= 6 && string(data[i-6:i+1]) == "endobj\n" {
			break
		}
	}
	return -1
}

// dictEnd finds the ">>" closing the dictionary opened at start.
func dictEnd(data []byte, start int) int {
	depth := 0
	for i := start; i < len(data)-1; i++ {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i++
		case data[i] == '>' && data[i+1] == '>':
			depth--
			if depth == 0 {
				return i + 1
			}
			i++
		}
	}
	return -1
}

func byteRange(dict []byte) [4]int {
	var br [4]int
	m := byteRangeRe.FindSubmatch(dict)
	if m == nil {
		return br
	}
	parts := strings.Fields(string(m[1]))
	if len(parts) != 4 {
		return br
	}
	for i, p := range parts {
		if v, err := strconv.Atoi(p); err == nil {
			br[i] = v
		}
	}
	return br
}

func pdfString(dict []byte, key string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(key) + `\s*\(([^)]*)\)`)
	m := re.FindSubmatch(dict)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// pdfDate parses D:YYYYMMDDHHmmSS with an optional zone.
func pdfDate(s string) time.Time {
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 14 {
		return time.Time{}
	}
	for _, layout := range []string{
		"20060102150405-07'00'",
		"20060102150405Z",
		"20060102150405",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
