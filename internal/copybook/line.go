// File path: internal/copybook/line.go
package copybook

import "strings"

// sentence is one data description entry spliced from the source, with
// the 1-based line number of its first physical line.
type sentence struct {
	text string
	line int
}

// fixedFormat reports whether the source uses the classic 80-column
// layout. Lines with digits or blanks in the sequence area and a known
// indicator in column 7 vote for fixed; anything else votes free.
func fixedFormat(lines []string) bool {
	fixed, free := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(line) >= 7 && sequenceArea(line[:6]) && indicator(line[6]) {
			fixed++
		} else {
			free++
		}
	}
	return fixed > free
}

func sequenceArea(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != ' ' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func indicator(c byte) bool {
	switch c {
	case ' ', '*', '/', '-', 'D', 'd':
		return true
	}
	return false
}

// stripInlineComment drops everything from an unquoted '#' onward. Some
// shops annotate copybooks this way even though the character has no
// meaning in standard COBOL.
func stripInlineComment(s string) string {
	quote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#':
			return s[:i]
		}
	}
	return s
}

// normalize strips the source into logical sentences: sequence and
// indicator columns removed, comments dropped, continuations joined,
// entries spliced until their terminating period.
func normalize(source string) ([]sentence, error) {
	raw := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	fixed := fixedFormat(raw)

	var out []sentence
	var buf strings.Builder
	start := 0

	flushAt := func(lineNo int, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		out = append(out, sentence{text: text, line: lineNo})
	}

	for i, line := range raw {
		lineNo := i + 1
		code := line
		continued := false
		if fixed {
			if len(code) < 7 {
				continue
			}
			switch code[6] {
			case '*', '/':
				continue
			case '-':
				continued = true
			}
			if len(code) > 72 {
				code = code[7:72]
			} else {
				code = code[7:]
			}
		} else {
			trimmed := strings.TrimSpace(code)
			if trimmed == "" || strings.HasPrefix(trimmed, "*") {
				continue
			}
			code = trimmed
		}
		code = stripInlineComment(code)
		if strings.TrimSpace(code) == "" {
			continue
		}
		if buf.Len() == 0 {
			start = lineNo
		}
		if continued {
			buf.WriteString(strings.TrimLeft(code, " "))
		} else {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(code)
		}

		// Split completed sentences out of the buffer; a partial entry
		// stays behind for the next line.
		for {
			text := buf.String()
			end := sentenceEnd(text)
			if end < 0 {
				break
			}
			flushAt(start, text[:end])
			buf.Reset()
			rest := strings.TrimSpace(text[end+1:])
			if rest != "" {
				buf.WriteString(rest)
				start = lineNo
			}
		}
	}
	if strings.TrimSpace(buf.String()) != "" {
		return nil, &SyntaxError{Line: start, Text: strings.TrimSpace(buf.String()), Msg: "entry missing terminating period"}
	}
	return out, nil
}

// sentenceEnd returns the index of the first period that terminates a
// sentence, or -1. Periods inside quoted literals do not count.
func sentenceEnd(s string) int {
	quote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '.':
			if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\t' {
				return i
			}
		}
	}
	return -1
}
