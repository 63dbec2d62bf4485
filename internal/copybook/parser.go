// File path: internal/copybook/parser.go
package copybook

import (
	"fmt"
	"strconv"
	"strings"
)

// Compile parses copybook source into a resolved Schema: tree built,
// pictures parsed, byte lengths and absolute offsets assigned.
func Compile(source string) (*Schema, error) {
	sentences, err := normalize(source)
	if err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, &SyntaxError{Line: 1, Msg: "no data description entries found"}
	}

	schema := &Schema{}
	var stack []*Field
	fillerSeq := 0

	for _, s := range sentences {
		tokens := splitTokens(s.text)
		if len(tokens) == 0 {
			continue
		}
		level, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, &SyntaxError{Line: s.line, Text: s.text, Msg: "entry does not start with a level number"}
		}
		switch {
		case level == 66 || level == 77:
			return nil, &SemanticError{Line: s.line, Msg: fmt.Sprintf("level %02d entries are not supported", level)}
		case level == 88:
			if len(stack) == 0 {
				return nil, &SemanticError{Line: s.line, Msg: "condition name has no preceding field"}
			}
			cond, err := parseCondition(tokens[1:], s)
			if err != nil {
				return nil, err
			}
			host := stack[len(stack)-1]
			host.Conditions = append(host.Conditions, *cond)
			continue
		case level < 1 || level > 49:
			return nil, &SemanticError{Line: s.line, Msg: fmt.Sprintf("level %d out of range", level)}
		}

		f := &Field{Level: level, Line: s.line, Usage: UsageDisplay}
		rest := tokens[1:]
		if len(rest) > 0 && !isClauseKeyword(rest[0]) {
			f.Name = strings.ToUpper(rest[0])
			rest = rest[1:]
		}
		if f.Name == "" || f.Name == "FILLER" {
			fillerSeq++
			f.Name = fmt.Sprintf("FILLER_%d", fillerSeq)
			f.Filler = true
		}
		if err := parseClauses(f, rest, s); err != nil {
			return nil, err
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			if level != 1 {
				return nil, &SemanticError{Line: s.line, Name: f.Name, Msg: fmt.Sprintf("level %02d entry outside a 01 record", level)}
			}
			schema.Roots = append(schema.Roots, f)
		} else {
			parent := stack[len(stack)-1]
			f.parent = parent
			parent.Children = append(parent.Children, f)
		}
		stack = append(stack, f)
	}

	for _, root := range schema.Roots {
		if root.Redefines != "" {
			return nil, &SemanticError{Line: root.Line, Name: root.Name, Msg: "record level REDEFINES is not supported"}
		}
		if err := resolve(root); err != nil {
			return nil, err
		}
		place(root, 0)
	}
	if err := validateSchema(schema); err != nil {
		return nil, err
	}
	schema.Fingerprint = fingerprint(sentences)
	return schema, nil
}

// parseClauses consumes the clause tokens of a data description entry.
func parseClauses(f *Field, tokens []string, s sentence) error {
	for i := 0; i < len(tokens); i++ {
		tok := strings.ToUpper(tokens[i])
		switch tok {
		case "REDEFINES":
			if i+1 >= len(tokens) {
				return &SyntaxError{Line: s.line, Text: s.text, Msg: "REDEFINES missing target"}
			}
			i++
			f.Redefines = strings.ToUpper(tokens[i])
		case "OCCURS":
			occ, used, err := parseOccurs(tokens[i+1:], s, f.Name)
			if err != nil {
				return err
			}
			f.Occurs = occ
			i += used
		case "PIC", "PICTURE":
			if i+1 < len(tokens) && strings.ToUpper(tokens[i+1]) == "IS" {
				i++
			}
			if i+1 >= len(tokens) {
				return &SyntaxError{Line: s.line, Text: s.text, Msg: "PIC clause missing picture string"}
			}
			i++
			pic, err := parsePicture(tokens[i], s.line, f.Name)
			if err != nil {
				return err
			}
			f.Picture = pic
		case "USAGE":
			if i+1 < len(tokens) && strings.ToUpper(tokens[i+1]) == "IS" {
				i++
			}
			if i+1 >= len(tokens) {
				return &SyntaxError{Line: s.line, Text: s.text, Msg: "USAGE clause missing storage format"}
			}
			i++
			usage, ok := parseUsage(strings.ToUpper(tokens[i]))
			if !ok {
				return &SemanticError{Line: s.line, Name: f.Name, Msg: fmt.Sprintf("unsupported usage %q", tokens[i])}
			}
			f.Usage = usage
		case "COMP", "COMPUTATIONAL", "COMP-4", "COMPUTATIONAL-4", "BINARY",
			"COMP-3", "COMPUTATIONAL-3", "PACKED-DECIMAL",
			"COMP-1", "COMPUTATIONAL-1", "COMP-2", "COMPUTATIONAL-2", "DISPLAY":
			usage, _ := parseUsage(tok)
			f.Usage = usage
		case "VALUE", "VALUES":
			if i+1 < len(tokens) {
				next := strings.ToUpper(tokens[i+1])
				if next == "IS" || next == "ARE" {
					i++
				}
			}
			if i+1 >= len(tokens) {
				return &SyntaxError{Line: s.line, Text: s.text, Msg: "VALUE clause missing literal"}
			}
			i++
			f.Value = unquote(tokens[i])
		case "INDEXED":
			// INDEXED BY names a subscript register; it occupies no
			// storage, so the names are consumed and dropped.
			for i+1 < len(tokens) && (strings.ToUpper(tokens[i+1]) == "BY" || !isClauseKeyword(tokens[i+1])) {
				i++
			}
		case "SYNC", "SYNCHRONIZED", "JUSTIFIED", "JUST", "SIGN", "BLANK":
			return &SemanticError{Line: s.line, Name: f.Name, Msg: fmt.Sprintf("unsupported clause %s", tok)}
		default:
			return &SyntaxError{Line: s.line, Text: s.text, Msg: fmt.Sprintf("unrecognized clause token %q", tokens[i])}
		}
	}
	return nil
}

// parseOccurs reads the clause body after the OCCURS keyword and
// returns the number of tokens consumed.
func parseOccurs(tokens []string, s sentence, name string) (*Occurs, int, error) {
	if len(tokens) == 0 {
		return nil, 0, &SyntaxError{Line: s.line, Text: s.text, Msg: "OCCURS missing count"}
	}
	count, err := strconv.Atoi(tokens[0])
	if err != nil || count < 1 {
		return nil, 0, &SemanticError{Line: s.line, Name: name, Msg: fmt.Sprintf("bad OCCURS count %q", tokens[0])}
	}
	occ := &Occurs{Count: count, Min: count}
	used := 1
	hadRange := false
	if used < len(tokens) && strings.ToUpper(tokens[used]) == "TO" {
		if used+1 >= len(tokens) {
			return nil, 0, &SyntaxError{Line: s.line, Text: s.text, Msg: "OCCURS TO missing upper bound"}
		}
		max, err := strconv.Atoi(tokens[used+1])
		if err != nil || max < count {
			return nil, 0, &SemanticError{Line: s.line, Name: name, Msg: fmt.Sprintf("bad OCCURS upper bound %q", tokens[used+1])}
		}
		occ.Min, occ.Count = count, max
		hadRange = true
		used += 2
	}
	if used < len(tokens) && strings.ToUpper(tokens[used]) == "TIMES" {
		used++
	}
	if used+1 < len(tokens) && strings.ToUpper(tokens[used]) == "DEPENDING" {
		used++
		if strings.ToUpper(tokens[used]) == "ON" {
			used++
		}
		if used >= len(tokens) {
			return nil, 0, &SyntaxError{Line: s.line, Text: s.text, Msg: "DEPENDING ON missing counter name"}
		}
		occ.DependingOn = strings.ToUpper(tokens[used])
		if !hadRange {
			occ.Min = 0
		}
		used++
	}
	return occ, used, nil
}

// parseCondition reads the body of an 88 level entry.
func parseCondition(tokens []string, s sentence) (*Condition, error) {
	if len(tokens) == 0 {
		return nil, &SyntaxError{Line: s.line, Text: s.text, Msg: "condition name entry is empty"}
	}
	cond := &Condition{Name: strings.ToUpper(tokens[0]), Line: s.line}
	rest := tokens[1:]
	if len(rest) == 0 {
		return nil, &SyntaxError{Line: s.line, Text: s.text, Msg: "condition name missing VALUE clause"}
	}
	head := strings.ToUpper(rest[0])
	if head != "VALUE" && head != "VALUES" {
		return nil, &SyntaxError{Line: s.line, Text: s.text, Msg: fmt.Sprintf("expected VALUE clause, found %q", rest[0])}
	}
	rest = rest[1:]
	if len(rest) > 0 {
		if up := strings.ToUpper(rest[0]); up == "IS" || up == "ARE" {
			rest = rest[1:]
		}
	}
	for i := 0; i < len(rest); i++ {
		cv := ConditionValue{Low: unquote(rest[i])}
		if i+2 < len(rest) {
			if up := strings.ToUpper(rest[i+1]); up == "THRU" || up == "THROUGH" {
				cv.High = unquote(rest[i+2])
				cv.Range = true
				i += 2
			}
		}
		cond.Values = append(cond.Values, cv)
	}
	if len(cond.Values) == 0 {
		return nil, &SyntaxError{Line: s.line, Text: s.text, Msg: "VALUE clause has no literals"}
	}
	return cond, nil
}

func parseUsage(tok string) (Usage, bool) {
	switch tok {
	case "DISPLAY":
		return UsageDisplay, true
	case "COMP", "COMPUTATIONAL", "COMP-4", "COMPUTATIONAL-4", "BINARY":
		return UsageComp, true
	case "COMP-3", "COMPUTATIONAL-3", "PACKED-DECIMAL":
		return UsageComp3, true
	case "COMP-1", "COMPUTATIONAL-1":
		return UsageComp1, true
	case "COMP-2", "COMPUTATIONAL-2":
		return UsageComp2, true
	}
	return UsageDisplay, false
}

func isClauseKeyword(tok string) bool {
	switch strings.ToUpper(tok) {
	case "REDEFINES", "OCCURS", "PIC", "PICTURE", "USAGE", "VALUE", "VALUES",
		"COMP", "COMPUTATIONAL", "COMP-1", "COMP-2", "COMP-3", "COMP-4",
		"COMPUTATIONAL-1", "COMPUTATIONAL-2", "COMPUTATIONAL-3", "COMPUTATIONAL-4",
		"BINARY", "PACKED-DECIMAL", "DISPLAY", "INDEXED",
		"SYNC", "SYNCHRONIZED", "JUSTIFIED", "JUST", "SIGN", "BLANK":
		return true
	}
	return false
}

// splitTokens splits an entry on whitespace while keeping quoted
// literals, spaces included, as single tokens.
func splitTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	quote := byte(0)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			cur.WriteByte(c)
		case c == ' ' || c == '\t' || c == ',' || c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
