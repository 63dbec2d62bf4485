// File path: internal/normalizer/normalizer_test.go
package normalizer

import (
	"bytes"
	"testing"
)

func TestNormalizeCleanBinary(t *testing.T) {
	content := make([]byte, 30)
	for i := range content {
		content[i] = 0xC1
	}
	out, rep, err := Normalize(content, 10)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if !bytes.Equal(out, content) {
		t.Fatalf("clean input must pass through unchanged")
	}
	if rep.Records != 3 || rep.TextFormat || rep.HeaderBytes != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestNormalizeTextFramed(t *testing.T) {
	content := []byte("ABCDE\nFGHIJ\nKLMNO\n")
	out, rep, err := Normalize(content, 5)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if string(out) != "ABCDEFGHIJKLMNO" {
		t.Fatalf("unexpected output %q", out)
	}
	if !rep.TextFormat || rep.NewlinesStripd != 3 || rep.Records != 3 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestNormalizeHeaderAndTrailer(t *testing.T) {
	header := []byte("HEADER 0829")
	data := bytes.Repeat([]byte{0xC1, 0xF0}, 5)
	record := append(append([]byte{}, header...), data...)
	// header record, one data record, 3 byte trailer remainder
	content := append(record, 0x00, 0x00, 0x00)
	if len(header) != 11 || len(record) != 21 {
		t.Fatalf("test fixture sizing broken")
	}
	out, rep, err := Normalize(content, 11)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if rep.HeaderBytes != 11 {
		t.Fatalf("expected 11 header bytes, got %d", rep.HeaderBytes)
	}
	if rep.TrailerBytes != 2 {
		t.Fatalf("expected 2 trailer bytes, got %d", rep.TrailerBytes)
	}
	if len(out) != 11 {
		t.Fatalf("expected one 11 byte record, got %d bytes", len(out))
	}
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	if _, _, err := Normalize(nil, 10); err == nil {
		t.Fatalf("expected error on empty input")
	}
	if _, _, err := Normalize([]byte{0x01}, 0); err == nil {
		t.Fatalf("expected error on zero record length")
	}
	onlyHeader := []byte("HEADER ONE")
	if _, _, err := Normalize(onlyHeader, 10); err == nil {
		t.Fatalf("expected error when nothing remains after trimming")
	}
}
