// File path: internal/copybook/pic_test.go
package copybook

import "testing"

func TestParsePicture(t *testing.T) {
	cases := []struct {
		raw    string
		digits int
		scale  int
		alpha  bool
		signed bool
	}{
		{"X(10)", 10, 0, true, false},
		{"XXX", 3, 0, true, false},
		{"A(5)", 5, 0, true, false},
		{"9(5)", 5, 0, false, false},
		{"S9(5)V99", 7, 2, false, true},
		{"S9(7)V9(3)", 10, 3, false, true},
		{"V99", 2, 2, false, false},
		{"ZZ9", 3, 0, false, false},
		{"99999", 5, 0, false, false},
	}
	for _, tc := range cases {
		pic, err := parsePicture(tc.raw, 1, "F")
		if err != nil {
			t.Fatalf("%s: parse failed: %v", tc.raw, err)
		}
		if pic.Digits != tc.digits || pic.Scale != tc.scale || pic.Alpha != tc.alpha || pic.Signed != tc.signed {
			t.Fatalf("%s: got %+v", tc.raw, pic)
		}
	}
}

func TestParsePictureErrors(t *testing.T) {
	bad := []string{
		"9S9",   // sign not leading
		"9V9V9", // two decimal points
		"X(10",  // unbalanced repeat
		"X(0)",  // zero repeat
		"(3)X",  // repeat with nothing to repeat
		"SX(3)", // signed alphanumeric
		"9.99",  // insertion editing
		"S",     // no storage positions
		"$$9",   // currency editing
	}
	for _, raw := range bad {
		if _, err := parsePicture(raw, 1, "F"); err == nil {
			t.Fatalf("%s: expected error", raw)
		}
	}
}
