// File path: internal/decoder/numeric_test.go
package decoder

import "testing"

func TestDecodePacked(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want int64
	}{
		{"negative", []byte{0x00, 0x12, 0x34, 0x5D}, -12345},
		{"positive c", []byte{0x12, 0x3C}, 123},
		{"positive f", []byte{0x12, 0x3F}, 123},
		{"zero", []byte{0x0C}, 0},
		{"alt negative", []byte{0x45, 0x6B}, -456},
	}
	for _, tc := range cases {
		got, err := decodePacked(tc.raw)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDecodePackedErrors(t *testing.T) {
	if _, err := decodePacked([]byte{0x12, 0x34}); err == nil {
		t.Fatalf("expected error on sign nibble 0x4")
	}
	if _, err := decodePacked([]byte{0xA2, 0x3C}); err == nil {
		t.Fatalf("expected error on digit nibble 0xA")
	}
	if _, err := decodePacked(nil); err == nil {
		t.Fatalf("expected error on empty field")
	}
}

func TestDecodeZoned(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want int64
	}{
		{"plain", []byte{0xF1, 0xF2, 0xF3}, 123},
		{"overpunch negative", []byte{0xF1, 0xF2, 0xD3}, -123},
		{"overpunch positive", []byte{0xF1, 0xF2, 0xC3}, 123},
		{"leading blanks", []byte{0x40, 0x40, 0xF7}, 7},
		{"explicit minus", []byte{0x60, 0xF4, 0xF2}, -42},
	}
	for _, tc := range cases {
		got, err := decodeZoned(tc.raw, 0x40)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDecodeZonedErrors(t *testing.T) {
	if _, err := decodeZoned([]byte{0xF1, 0xFA}, 0x40); err == nil {
		t.Fatalf("expected error on digit nibble 0xA")
	}
	if _, err := decodeZoned([]byte{0x40, 0x40}, 0x40); err == nil {
		t.Fatalf("expected error on all blank field")
	}
}

func TestDecodeBinary(t *testing.T) {
	cases := []struct {
		name   string
		raw    []byte
		signed bool
		want   int64
	}{
		{"half positive", []byte{0x00, 0x7B}, true, 123},
		{"half negative", []byte{0xFF, 0xFE}, true, -2},
		{"half unsigned high", []byte{0xFF, 0xFF}, false, 65535},
		{"word", []byte{0x00, 0x01, 0x86, 0xA0}, true, 100000},
		{"double", []byte{0x00, 0x00, 0x00, 0x02, 0x54, 0x0B, 0xE4, 0x00}, true, 10000000000},
	}
	for _, tc := range cases {
		got, err := decodeBinary(tc.raw, tc.signed)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDecodeBinaryErrors(t *testing.T) {
	if _, err := decodeBinary([]byte{0x01, 0x02, 0x03}, true); err == nil {
		t.Fatalf("expected error on 3 byte width")
	}
	if _, err := decodeBinary([]byte{0x80, 0, 0, 0, 0, 0, 0, 0}, false); err == nil {
		t.Fatalf("expected error on unsigned overflow")
	}
}
