// File path: internal/decoder/codepage.go
package decoder

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// codePage resolves the caller's code page name to a character map.
// A nil charmap means raw single byte text (the "ascii" escape hatch
// for files that were transferred in text mode).
type codePage struct {
	name string
	cm   *charmap.Charmap
}

var codePages = map[string]*charmap.Charmap{
	"cp037":     charmap.CodePage037,
	"ibm037":    charmap.CodePage037,
	"ebcdic":    charmap.CodePage037,
	"cp1047":    charmap.CodePage1047,
	"ibm1047":   charmap.CodePage1047,
	"cp1140":    charmap.CodePage1140,
	"ibm1140":   charmap.CodePage1140,
	"latin1":    charmap.ISO8859_1,
	"iso8859-1": charmap.ISO8859_1,
}

func lookupCodePage(name string) (codePage, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return codePage{}, &EncodingError{Name: name}
	}
	if key == "ascii" || key == "raw" {
		return codePage{name: key}, nil
	}
	cm, ok := codePages[key]
	if !ok {
		return codePage{}, &EncodingError{Name: name}
	}
	return codePage{name: key, cm: cm}, nil
}

// decodeText converts raw record bytes to a string under the page.
func (p codePage) decodeText(raw []byte) string {
	if p.cm == nil {
		return string(raw)
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		b.WriteRune(p.cm.DecodeByte(c))
	}
	return b.String()
}

// space is the blank byte in the page's encoding.
func (p codePage) space() byte {
	if p.cm == nil {
		return ' '
	}
	return 0x40
}
