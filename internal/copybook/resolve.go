// File path: internal/copybook/resolve.go
package copybook

import "fmt"

// resolve computes single-occurrence byte lengths bottom-up and assigns
// offsets relative to each field's parent. A REDEFINES entry reuses its
// target's relative offset and never advances the layout cursor; the
// group length is the maximum extent, so a redefinition may run past
// the storage it redefines.
func resolve(f *Field) error {
	if !f.Group() {
		length, err := elementaryLength(f)
		if err != nil {
			return err
		}
		f.Length = length
		return nil
	}
	if f.Picture != nil {
		return &SemanticError{Line: f.Line, Name: f.Name, Msg: "group item cannot carry a PIC clause"}
	}
	cursor := 0
	extent := 0
	for _, c := range f.Children {
		if c.Redefines != "" {
			target, err := redefinesTarget(f, c)
			if err != nil {
				return err
			}
			c.rel = target.rel
		} else {
			c.rel = cursor
		}
		if err := resolve(c); err != nil {
			return err
		}
		span := c.rel + c.Length*occursCount(c)
		if c.Redefines == "" {
			cursor = span
		}
		if span > extent {
			extent = span
		}
	}
	f.Length = extent
	return nil
}

// place converts the relative offsets into absolute record positions.
func place(f *Field, base int) {
	f.Offset = base + f.rel
	for _, c := range f.Children {
		place(c, f.Offset)
	}
}

func occursCount(f *Field) int {
	if f.Occurs != nil {
		return f.Occurs.Count
	}
	return 1
}

// elementaryLength maps picture and usage to stored bytes. DISPLAY
// stores one byte per position with sign and decimal point implied;
// COMP widths follow the standard 2/4/8 byte digit bands.
func elementaryLength(f *Field) (int, error) {
	switch f.Usage {
	case UsageComp1:
		return 4, nil
	case UsageComp2:
		return 8, nil
	}
	if f.Picture == nil {
		return 0, &SemanticError{Line: f.Line, Name: f.Name, Msg: "elementary item has no PIC clause"}
	}
	pic := f.Picture
	switch f.Usage {
	case UsageDisplay:
		return pic.Digits, nil
	case UsageComp:
		if pic.Alpha {
			return 0, &SemanticError{Line: f.Line, Name: f.Name, Msg: "COMP usage requires a numeric picture"}
		}
		switch {
		case pic.Digits <= 4:
			return 2, nil
		case pic.Digits <= 9:
			return 4, nil
		case pic.Digits <= 18:
			return 8, nil
		default:
			return 0, &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("COMP picture exceeds 18 digits (%d)", pic.Digits)}
		}
	case UsageComp3:
		if pic.Alpha {
			return 0, &SemanticError{Line: f.Line, Name: f.Name, Msg: "COMP-3 usage requires a numeric picture"}
		}
		if pic.Digits > 18 {
			return 0, &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("COMP-3 picture exceeds 18 digits (%d)", pic.Digits)}
		}
		return (pic.Digits + 2) / 2, nil
	}
	return 0, &SemanticError{Line: f.Line, Name: f.Name, Msg: "unresolvable storage format"}
}

// redefinesTarget finds the sibling a REDEFINES entry points at. The
// target must precede the redefiner at the same level and must not be
// a table.
func redefinesTarget(parent *Field, f *Field) (*Field, error) {
	for _, sib := range parent.Children {
		if sib == f {
			break
		}
		if sib.Level == f.Level && sib.Name == f.Redefines {
			if sib.Occurs != nil {
				return nil, &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("cannot redefine table %s", sib.Name)}
			}
			return sib, nil
		}
	}
	return nil, &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("REDEFINES target %s not found at level %02d", f.Redefines, f.Level)}
}

// validateSchema runs the cross-field checks that need the finished
// layout: DEPENDING ON counters and condition name hosts.
func validateSchema(s *Schema) error {
	for _, root := range s.Roots {
		var walkErr error
		root.Walk(func(f *Field) bool {
			if walkErr != nil {
				return false
			}
			if f.Occurs != nil && f.Occurs.DependingOn != "" {
				counter := s.Lookup(f.Occurs.DependingOn)
				switch {
				case counter == nil:
					walkErr = &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("DEPENDING ON counter %s not found", f.Occurs.DependingOn)}
				case counter.Group() || counter.Picture == nil || counter.Picture.Alpha:
					walkErr = &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("DEPENDING ON counter %s is not a numeric field", f.Occurs.DependingOn)}
				case counter.Offset >= f.Offset:
					walkErr = &SemanticError{Line: f.Line, Name: f.Name, Msg: fmt.Sprintf("DEPENDING ON counter %s must precede the table", f.Occurs.DependingOn)}
				}
			}
			if len(f.Conditions) > 0 && f.Group() {
				walkErr = &SemanticError{Line: f.Conditions[0].Line, Name: f.Conditions[0].Name, Msg: fmt.Sprintf("condition name attached to group item %s", f.Name)}
			}
			return walkErr == nil
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}
