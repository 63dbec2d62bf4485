// File path: internal/decoder/value.go
package decoder

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind classifies a decoded value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindFloat
	KindGroup
	KindList
)

// Value is one decoded field. Scalars fill exactly one of Str, Int,
// Dec, or Float per Kind; groups carry Children, tables carry Items.
// OutOfRange marks a table whose DEPENDING ON counter fell outside the
// declared bounds, and each table occurrence past the decoded counter.
type Value struct {
	Name       string
	Qualified  string
	Kind       Kind
	Str        string
	Int        int64
	Dec        decimal.Decimal
	Float      float64
	Children   []*Value
	Items      []*Value
	OutOfRange bool
}

// MarshalJSON renders the bare scalar, object, or array.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindDecimal:
		return []byte(v.Dec.String()), nil
	case KindFloat:
		return json.Marshal(v.Float)
	case KindGroup:
		return marshalObject(v.Children, nil)
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(item)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return []byte("null"), nil
}

// ConditionFlag is the evaluated state of one 88 level condition name.
type ConditionFlag struct {
	Name  string
	Field string
	Set   bool
}

// Record is one decoded fixed-length record. Fields preserve
// declaration order; Conditions hold every 88 level evaluation.
type Record struct {
	Index      int
	Fields     []*Value
	Conditions []ConditionFlag
}

// Lookup returns the named field anywhere in the record, or nil.
func (r *Record) Lookup(name string) *Value {
	var find func(vs []*Value) *Value
	find = func(vs []*Value) *Value {
		for _, v := range vs {
			if strings.EqualFold(v.Name, name) {
				return v
			}
			if got := find(v.Children); got != nil {
				return got
			}
			if got := find(v.Items); got != nil {
				return got
			}
		}
		return nil
	}
	return find(r.Fields)
}

// Condition reports whether the named condition is set. The second
// return distinguishes false from unknown.
func (r *Record) Condition(name string) (bool, bool) {
	for _, c := range r.Conditions {
		if strings.EqualFold(c.Name, name) {
			return c.Set, true
		}
	}
	return false, false
}

// MarshalJSON renders the record as a flat object: fields in
// declaration order followed by condition names as booleans.
func (r *Record) MarshalJSON() ([]byte, error) {
	return marshalObject(r.Fields, r.Conditions)
}

func marshalObject(fields []*Value, conds []ConditionFlag) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	sep := func() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
	}
	for _, f := range fields {
		sep()
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		b, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	for _, c := range conds {
		sep()
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatBool(c.Set))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
