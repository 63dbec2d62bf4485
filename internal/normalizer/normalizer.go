// File path: internal/normalizer/normalizer.go

// Package normalizer prepares raw mainframe transfer files for fixed
// length decoding. Files that crossed through text mode FTP pick up
// newline framing, report headers, and trailer padding that must be
// stripped before the buffer divides on record boundaries.
package normalizer

import (
	"bytes"
	"fmt"
)

// Report describes what Normalize removed.
type Report struct {
	OriginalSize   int  `json:"original_size"`
	NewlinesStripd int  `json:"newlines_removed"`
	HeaderBytes    int  `json:"header_bytes"`
	TrailerBytes   int  `json:"trailer_bytes"`
	NormalizedSize int  `json:"normalized_size"`
	Records        int  `json:"records"`
	TextFormat     bool `json:"text_format"`
}

// Normalize trims a transfer file down to whole records of the given
// length. It strips newline framing when the file looks line oriented,
// drops leading records that read as report headers, and cuts a short
// trailer remainder. The returned buffer always divides evenly by
// recordLength unless an error is reported.
func Normalize(content []byte, recordLength int) ([]byte, Report, error) {
	rep := Report{OriginalSize: len(content)}
	if recordLength <= 0 {
		return nil, rep, fmt.Errorf("normalizer: record length must be positive, got %d", recordLength)
	}
	if len(content) == 0 {
		return nil, rep, fmt.Errorf("normalizer: empty input")
	}

	buf := content
	if textFramed(buf, recordLength) {
		rep.TextFormat = true
		stripped := bytes.ReplaceAll(buf, []byte("\r\n"), nil)
		stripped = bytes.ReplaceAll(stripped, []byte("\n"), nil)
		stripped = bytes.ReplaceAll(stripped, []byte("\r"), nil)
		rep.NewlinesStripd = len(buf) - len(stripped)
		buf = stripped
	}

	skip := 0
	for skip+recordLength <= len(buf) && headerRecord(buf[skip:skip+recordLength]) {
		skip += recordLength
	}
	rep.HeaderBytes = skip
	buf = buf[skip:]

	if rem := len(buf) % recordLength; rem != 0 {
		rep.TrailerBytes = rem
		buf = buf[:len(buf)-rem]
	}
	if len(buf) == 0 {
		return nil, rep, fmt.Errorf("normalizer: no whole %d byte records remain after trimming", recordLength)
	}
	rep.NormalizedSize = len(buf)
	rep.Records = len(buf) / recordLength
	return buf, rep, nil
}

// textFramed reports whether the file looks newline delimited: a
// newline density consistent with one terminator per record rather
// than stray 0x0A bytes inside binary fields.
func textFramed(buf []byte, recordLength int) bool {
	newlines := bytes.Count(buf, []byte{'\n'}) + bytes.Count(buf, []byte{'\r'})
	if newlines == 0 {
		return false
	}
	if len(buf)%recordLength == 0 {
		return false
	}
	expect := len(buf) / (recordLength + 1)
	if expect == 0 {
		expect = 1
	}
	return newlines >= expect/2
}

// headerRecord flags a record that reads as report banner text rather
// than data: mostly printable ASCII with banner markers, which EBCDIC
// data records are not.
func headerRecord(rec []byte) bool {
	printable := 0
	for _, b := range rec {
		if b >= 0x20 && b < 0x7F {
			printable++
		}
	}
	if printable*10 < len(rec)*9 {
		return false
	}
	trimmed := bytes.TrimSpace(rec)
	if len(trimmed) == 0 {
		return true
	}
	for _, marker := range [][]byte{[]byte("HEADER"), []byte("REPORT"), []byte("PAGE"), []byte("*"), []byte("#")} {
		if bytes.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
