// File path: internal/copybook/pic.go
package copybook

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePicture expands and validates a PIC string. Repeat counts in
// parentheses are expanded, S must lead, V may appear once. Z edits are
// accepted and counted as digit positions; insertion editing is not.
func parsePicture(raw string, line int, name string) (*Picture, error) {
	pic := &Picture{Raw: raw}
	expanded, err := expandPicture(raw)
	if err != nil {
		return nil, &SemanticError{Line: line, Name: name, Msg: err.Error()}
	}
	sawV := false
	for i := 0; i < len(expanded); i++ {
		c := expanded[i]
		switch c {
		case 'S', 's':
			if i != 0 {
				return nil, &SemanticError{Line: line, Name: name, Msg: fmt.Sprintf("sign symbol must lead picture %q", raw)}
			}
			pic.Signed = true
		case 'V', 'v':
			if sawV {
				return nil, &SemanticError{Line: line, Name: name, Msg: fmt.Sprintf("multiple decimal points in picture %q", raw)}
			}
			sawV = true
		case '9', 'Z', 'z':
			pic.Digits++
			if sawV {
				pic.Scale++
			}
		case 'X', 'x', 'A', 'a':
			pic.Alpha = true
			pic.Digits++
		default:
			return nil, &SemanticError{Line: line, Name: name, Msg: fmt.Sprintf("unsupported picture symbol %q in %q", string(c), raw)}
		}
	}
	if pic.Alpha && (pic.Signed || sawV) {
		return nil, &SemanticError{Line: line, Name: name, Msg: fmt.Sprintf("alphanumeric picture %q cannot carry sign or decimal point", raw)}
	}
	if pic.Digits == 0 {
		return nil, &SemanticError{Line: line, Name: name, Msg: fmt.Sprintf("picture %q has no storage positions", raw)}
	}
	return pic, nil
}

// expandPicture rewrites X(3) style repeats into their literal form.
func expandPicture(raw string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '(' {
			out.WriteByte(c)
			continue
		}
		close := strings.IndexByte(raw[i:], ')')
		if close < 0 {
			return "", fmt.Errorf("unbalanced parentheses in picture %q", raw)
		}
		count, err := strconv.Atoi(raw[i+1 : i+close])
		if err != nil || count < 1 {
			return "", fmt.Errorf("bad repeat count in picture %q", raw)
		}
		if out.Len() == 0 {
			return "", fmt.Errorf("repeat count leads picture %q", raw)
		}
		last := out.String()[out.Len()-1]
		for n := 1; n < count; n++ {
			out.WriteByte(last)
		}
		i += close
	}
	return out.String(), nil
}
