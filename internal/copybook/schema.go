// File path: internal/copybook/schema.go
package copybook

import "strings"

// Usage identifies the storage format of an elementary field.
type Usage int

const (
	UsageDisplay Usage = iota
	UsageComp
	UsageComp3
	UsageComp1
	UsageComp2
)

func (u Usage) String() string {
	switch u {
	case UsageComp:
		return "COMP"
	case UsageComp3:
		return "COMP-3"
	case UsageComp1:
		return "COMP-1"
	case UsageComp2:
		return "COMP-2"
	default:
		return "DISPLAY"
	}
}

// Picture is the parsed form of a PIC clause. Digits counts the 9
// positions, Scale the positions to the right of the implied V.
// Alpha marks X/A pictures; those carry Digits as the character count.
type Picture struct {
	Raw    string
	Digits int
	Scale  int
	Alpha  bool
	Signed bool
}

// Occurs describes a fixed or DEPENDING ON repetition. Count holds the
// maximum occurrence count in both cases.
type Occurs struct {
	Count       int
	Min         int
	DependingOn string
}

// ConditionValue is a single VALUE or VALUE THRU entry on an 88 level.
// Range entries carry both bounds inclusive.
type ConditionValue struct {
	Low   string
	High  string
	Range bool
}

// Condition is an 88-level condition name attached to an elementary field.
type Condition struct {
	Name   string
	Values []ConditionValue
	Line   int
}

// Field is one data description entry. Offset is absolute from the start
// of the record; Length covers a single occurrence. Group fields carry
// Children and no Picture.
type Field struct {
	Level      int
	Name       string
	Filler     bool
	Picture    *Picture
	Usage      Usage
	Occurs     *Occurs
	Redefines  string
	Conditions []Condition
	Value      string
	Length     int
	Offset     int
	Line       int
	Children   []*Field

	parent *Field
	rel    int
}

// Group reports whether the field is a group item.
func (f *Field) Group() bool { return len(f.Children) > 0 }

// QualifiedName returns the OF-chain name from the record root down to
// this field, joined with dots.
func (f *Field) QualifiedName() string {
	parts := make([]string, 0, 4)
	for cur := f; cur != nil; cur = cur.parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// ElementaryCount counts the elementary fields in the subtree.
func (f *Field) ElementaryCount() int {
	count := 0
	f.Walk(func(c *Field) bool {
		if !c.Group() {
			count++
		}
		return true
	})
	return count
}

// ValueCount counts the elementary fields in the subtree that carry a
// VALUE literal.
func (f *Field) ValueCount() int {
	count := 0
	f.Walk(func(c *Field) bool {
		if !c.Group() && c.Value != "" {
			count++
		}
		return true
	})
	return count
}

// Walk visits the field and its subtree in declaration order.
func (f *Field) Walk(fn func(*Field) bool) {
	if !fn(f) {
		return
	}
	for _, c := range f.Children {
		c.Walk(fn)
	}
}

// Schema is the compiled copybook: one root per 01 level entry.
type Schema struct {
	Roots       []*Field
	Fingerprint string
}

// Record returns the root with the given name, or nil.
func (s *Schema) Record(name string) *Field {
	for _, r := range s.Roots {
		if strings.EqualFold(r.Name, name) {
			return r
		}
	}
	return nil
}

// DataRecord selects the root that describes the data on disk.
// Metadata and validation records are saturated with VALUE constants
// while data records carry few or none, so roots where at least half
// the elementary fields hold a VALUE literal are passed over. Among
// the rest the widest root wins, ties broken by declaration order;
// when every root looks like metadata the widest overall is returned.
func (s *Schema) DataRecord() *Field {
	var best, widest *Field
	for _, r := range s.Roots {
		if widest == nil || r.Length > widest.Length {
			widest = r
		}
		if n := r.ElementaryCount(); n > 0 && r.ValueCount()*2 >= n {
			continue
		}
		if best == nil || r.Length > best.Length {
			best = r
		}
	}
	if best == nil {
		return widest
	}
	return best
}

// Lookup finds a field by name anywhere in the schema. The first match
// in declaration order wins.
func (s *Schema) Lookup(name string) *Field {
	var found *Field
	for _, r := range s.Roots {
		r.Walk(func(f *Field) bool {
			if found == nil && strings.EqualFold(f.Name, name) {
				found = f
			}
			return found == nil
		})
	}
	return found
}

// FieldCount counts elementary fields across all roots.
func (s *Schema) FieldCount() int {
	count := 0
	for _, r := range s.Roots {
		r.Walk(func(f *Field) bool {
			if !f.Group() {
				count++
			}
			return true
		})
	}
	return count
}
