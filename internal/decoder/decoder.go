// File path: internal/decoder/decoder.go
package decoder

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/copybook"
)

// Decoder binds a compiled schema to a code page and turns fixed-length
// binary buffers into decoded records.
type Decoder struct {
	schema *copybook.Schema
	root   *copybook.Field
	page   codePage
}

type options struct {
	record string
}

// Option configures New.
type Option func(*options)

// WithRecord selects a specific 01 level record instead of the
// default widest-root heuristic.
func WithRecord(name string) Option {
	return func(o *options) { o.record = name }
}

// New validates the code page up front and fixes the record layout the
// decoder will apply. Multi-record copybooks default to the widest
// root, which is how header-plus-data copybooks are conventionally cut.
func New(schema *copybook.Schema, page string, opts ...Option) (*Decoder, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	cp, err := lookupCodePage(page)
	if err != nil {
		return nil, err
	}
	if schema == nil || len(schema.Roots) == 0 {
		return nil, fmt.Errorf("decoder: schema has no records")
	}
	root := schema.DataRecord()
	if o.record != "" {
		root = schema.Record(o.record)
		if root == nil {
			return nil, fmt.Errorf("decoder: record %q not found in schema", o.record)
		}
	}
	if root.Length == 0 {
		return nil, fmt.Errorf("decoder: record %s has zero length", root.Name)
	}
	return &Decoder{schema: schema, root: root, page: cp}, nil
}

// RecordLength returns the fixed byte length of one record.
func (d *Decoder) RecordLength() int { return d.root.Length }

// RecordName returns the name of the 01 level entry being decoded.
func (d *Decoder) RecordName() string { return d.root.Name }

// Decode splits the buffer on record boundaries and decodes every
// record. A buffer that is empty or does not divide evenly fails
// before any record is decoded.
func (d *Decoder) Decode(buf []byte) ([]Record, error) {
	rl := d.root.Length
	if len(buf) == 0 || len(buf)%rl != 0 {
		return nil, &BoundaryError{BufferLen: len(buf), RecordLen: rl}
	}
	count := len(buf) / rl
	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := d.decodeRecord(buf[i*rl:(i+1)*rl], i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

type recordState struct {
	index    int
	counters map[string]int64
	conds    []ConditionFlag
}

func (d *Decoder) decodeRecord(raw []byte, index int) (Record, error) {
	st := &recordState{index: index, counters: make(map[string]int64)}
	fields := make([]*Value, 0, len(d.root.Children))
	for _, child := range d.root.Children {
		v, err := d.decodeField(raw, child, 0, st)
		if err != nil {
			return Record{}, err
		}
		fields = append(fields, v)
	}
	return Record{Index: index, Fields: fields, Conditions: st.conds}, nil
}

// decodeField decodes one field. delta shifts the field's static offset
// when it sits inside a later table occurrence.
func (d *Decoder) decodeField(raw []byte, f *copybook.Field, delta int, st *recordState) (*Value, error) {
	if f.Occurs != nil {
		return d.decodeTable(raw, f, delta, st)
	}
	return d.decodeOnce(raw, f, delta, st)
}

// decodeTable decodes every declared occurrence; the record is fixed
// length, so the bytes are always present. A DEPENDING ON counter only
// bounds which occurrences are semantically populated: the trailing
// ones are decoded anyway and flagged out of declared range.
func (d *Decoder) decodeTable(raw []byte, f *copybook.Field, delta int, st *recordState) (*Value, error) {
	count := f.Occurs.Count
	live := int64(count)
	outOfRange := false
	if f.Occurs.DependingOn != "" {
		var ok bool
		if counter := d.schema.Lookup(f.Occurs.DependingOn); counter != nil {
			live, ok = st.counters[counter.QualifiedName()]
		}
		if !ok {
			return nil, &FieldError{Record: st.index, Field: f.QualifiedName(),
				Err: fmt.Errorf("DEPENDING ON counter %s was not decoded before the table", f.Occurs.DependingOn)}
		}
		if live < int64(f.Occurs.Min) || live > int64(f.Occurs.Count) {
			outOfRange = true
		}
	}
	items := make([]*Value, 0, count)
	for i := 0; i < count; i++ {
		item, err := d.decodeOnce(raw, f, delta+i*f.Length, st)
		if err != nil {
			return nil, err
		}
		if int64(i) >= live {
			item.OutOfRange = true
		}
		items = append(items, item)
	}
	return &Value{Name: f.Name, Qualified: f.QualifiedName(), Kind: KindList, Items: items, OutOfRange: outOfRange}, nil
}

func (d *Decoder) decodeOnce(raw []byte, f *copybook.Field, delta int, st *recordState) (*Value, error) {
	if f.Group() {
		children := make([]*Value, 0, len(f.Children))
		for _, c := range f.Children {
			v, err := d.decodeField(raw, c, delta, st)
			if err != nil {
				return nil, err
			}
			children = append(children, v)
		}
		return &Value{Name: f.Name, Qualified: f.QualifiedName(), Kind: KindGroup, Children: children}, nil
	}
	start := f.Offset + delta
	end := start + f.Length
	if start < 0 || end > len(raw) {
		return nil, &FieldError{Record: st.index, Field: f.QualifiedName(),
			Err: fmt.Errorf("field spans %d..%d outside the %d byte record", start, end, len(raw))}
	}
	v, err := d.decodeScalar(raw[start:end], f)
	if err != nil {
		return nil, &FieldError{Record: st.index, Field: f.QualifiedName(), Err: err}
	}
	if v.Kind == KindInt {
		st.counters[f.QualifiedName()] = v.Int
	}
	for _, cond := range f.Conditions {
		set, err := evalCondition(cond, v)
		if err != nil {
			return nil, &FieldError{Record: st.index, Field: f.QualifiedName(), Err: err}
		}
		st.conds = append(st.conds, ConditionFlag{Name: cond.Name, Field: f.Name, Set: set})
	}
	return v, nil
}

func (d *Decoder) decodeScalar(raw []byte, f *copybook.Field) (*Value, error) {
	v := &Value{Name: f.Name, Qualified: f.QualifiedName()}
	switch f.Usage {
	case copybook.UsageComp1:
		v.Kind = KindFloat
		v.Float = float64(math.Float32frombits(binary.BigEndian.Uint32(raw)))
		return v, nil
	case copybook.UsageComp2:
		v.Kind = KindFloat
		v.Float = math.Float64frombits(binary.BigEndian.Uint64(raw))
		return v, nil
	}
	pic := f.Picture
	if pic.Alpha {
		v.Kind = KindString
		v.Str = strings.TrimRight(d.page.decodeText(raw), " ")
		return v, nil
	}
	var unscaled int64
	var err error
	switch f.Usage {
	case copybook.UsageDisplay:
		unscaled, err = decodeZoned(raw, d.page.space())
	case copybook.UsageComp:
		unscaled, err = decodeBinary(raw, pic.Signed)
	case copybook.UsageComp3:
		unscaled, err = decodePacked(raw)
	}
	if err != nil {
		return nil, err
	}
	if !pic.Signed && unscaled < 0 {
		return nil, fmt.Errorf("negative value in unsigned field")
	}
	if pic.Scale > 0 {
		v.Kind = KindDecimal
		v.Dec = decimal.New(unscaled, -int32(pic.Scale))
	} else {
		v.Kind = KindInt
		v.Int = unscaled
	}
	return v, nil
}

// evalCondition tests one 88 level against a decoded scalar. String
// hosts compare by exact trimmed text; numeric hosts compare by value
// with THRU bounds inclusive on both ends.
func evalCondition(cond copybook.Condition, v *Value) (bool, error) {
	for _, cv := range cond.Values {
		match, err := matchConditionValue(cv, v)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

func matchConditionValue(cv copybook.ConditionValue, v *Value) (bool, error) {
	switch v.Kind {
	case KindString:
		if cv.Range {
			return v.Str >= cv.Low && v.Str <= cv.High, nil
		}
		return v.Str == cv.Low, nil
	case KindInt, KindDecimal:
		got := v.Dec
		if v.Kind == KindInt {
			got = decimal.NewFromInt(v.Int)
		}
		low, err := decimal.NewFromString(cv.Low)
		if err != nil {
			return false, fmt.Errorf("condition %q is not numeric for numeric field", cv.Low)
		}
		if !cv.Range {
			return got.Equal(low), nil
		}
		high, err := decimal.NewFromString(cv.High)
		if err != nil {
			return false, fmt.Errorf("condition bound %q is not numeric", cv.High)
		}
		return got.GreaterThanOrEqual(low) && got.LessThanOrEqual(high), nil
	case KindFloat:
		return false, fmt.Errorf("condition names are not supported on floating point fields")
	}
	return false, nil
}
