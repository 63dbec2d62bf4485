// File path: internal/decoder/decoder_test.go
package decoder

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/copybook"
)

const statusCopybook = `       01  REC.
           05  CODE           PIC X(1).
               88  ACTIVE     VALUE "A".
           05  AMT            PIC S9(5)V99 COMP-3.
`

func compileSchema(t *testing.T, src string) *copybook.Schema {
	t.Helper()
	schema, err := copybook.Compile(src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return schema
}

func TestDecodeStatusRecord(t *testing.T) {
	schema := compileSchema(t, statusCopybook)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	if dec.RecordLength() != 5 {
		t.Fatalf("expected record length 5, got %d", dec.RecordLength())
	}

	// CODE = EBCDIC "A", AMT = packed -123.45
	buf := []byte{0xC1, 0x00, 0x12, 0x34, 0x5D}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]

	code := rec.Lookup("CODE")
	if code == nil || code.Kind != KindString || code.Str != "A" {
		t.Fatalf("unexpected CODE value: %+v", code)
	}
	amt := rec.Lookup("AMT")
	if amt == nil || amt.Kind != KindDecimal {
		t.Fatalf("unexpected AMT value: %+v", amt)
	}
	if amt.Dec.String() != "-123.45" {
		t.Fatalf("expected AMT -123.45, got %s", amt.Dec.String())
	}
	active, known := rec.Condition("ACTIVE")
	if !known || !active {
		t.Fatalf("expected ACTIVE condition set")
	}

	out, err := json.Marshal(&rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	if string(out) != `{"CODE":"A","AMT":-123.45,"ACTIVE":true}` {
		t.Fatalf("unexpected JSON: %s", out)
	}
}

func TestDecodeBoundary(t *testing.T) {
	schema := compileSchema(t, statusCopybook)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	var boundaryErr *BoundaryError
	if _, err := dec.Decode(make([]byte, 6)); !errors.As(err, &boundaryErr) {
		t.Fatalf("expected boundary error for 6 bytes, got %v", err)
	}
	if _, err := dec.Decode(nil); !errors.As(err, &boundaryErr) {
		t.Fatalf("expected boundary error for empty buffer, got %v", err)
	}
	if _, err := dec.Decode(make([]byte, 4)); !errors.As(err, &boundaryErr) {
		t.Fatalf("expected boundary error for short buffer, got %v", err)
	}
}

func TestDecodeUnknownCodePage(t *testing.T) {
	schema := compileSchema(t, statusCopybook)
	_, err := New(schema, "cp999")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestDecodeOccursOffsets(t *testing.T) {
	src := `       01  REC.
           05  QTY OCCURS 3 TIMES PIC 9(2).
`
	schema := compileSchema(t, src)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	// 12, 34, 56 zoned
	buf := []byte{0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	qty := records[0].Fields[0]
	if qty.Kind != KindList || len(qty.Items) != 3 {
		t.Fatalf("unexpected table value: %+v", qty)
	}
	for i, want := range []int64{12, 34, 56} {
		if qty.Items[i].Int != want {
			t.Fatalf("occurrence %d: got %d, want %d", i, qty.Items[i].Int, want)
		}
	}
}

func TestDecodeDependingOn(t *testing.T) {
	src := `       01  REC.
           05  N              PIC 9(1).
           05  ITEM OCCURS 1 TO 3 TIMES DEPENDING ON N PIC X(2).
`
	schema := compileSchema(t, src)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	if dec.RecordLength() != 7 {
		t.Fatalf("expected record length 7, got %d", dec.RecordLength())
	}

	// N=2, items "AB" "CD" "EF"; the third is physically present but
	// past the counter
	buf := []byte{0xF2, 0xC1, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	item := records[0].Fields[1]
	if len(item.Items) != 3 || item.OutOfRange {
		t.Fatalf("expected all three declared occurrences: %+v", item)
	}
	for i, want := range []string{"AB", "CD", "EF"} {
		if item.Items[i].Str != want {
			t.Fatalf("occurrence %d: got %q, want %q", i, item.Items[i].Str, want)
		}
	}
	if item.Items[0].OutOfRange || item.Items[1].OutOfRange {
		t.Fatalf("occurrences under the counter must not be flagged")
	}
	if !item.Items[2].OutOfRange {
		t.Fatalf("occurrence past the counter must be flagged")
	}
	sum := Summarize(records)
	if sum.OutOfRange != 1 {
		t.Fatalf("expected one flagged value in summary, got %d", sum.OutOfRange)
	}

	// N=9 exceeds the declared maximum
	buf[0] = 0xF9
	records, err = dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	item = records[0].Fields[1]
	if !item.OutOfRange {
		t.Fatalf("expected out of range flag on the table")
	}
	if len(item.Items) != 3 {
		t.Fatalf("expected all declared occurrences, got %d items", len(item.Items))
	}

	// N=0 falls under the declared minimum
	buf[0] = 0xF0
	records, err = dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	item = records[0].Fields[1]
	if !item.OutOfRange || len(item.Items) != 3 {
		t.Fatalf("expected flagged table with all occurrences: %+v", item)
	}
	for i, it := range item.Items {
		if !it.OutOfRange {
			t.Fatalf("occurrence %d past a zero counter must be flagged", i)
		}
	}
}

func TestDecodeDependingOnQualifiedCounter(t *testing.T) {
	src := `       01  REC.
           05  HDR.
               10  CNT        PIC 9(1).
           05  TRL.
               10  CNT        PIC 9(1).
           05  ITEM OCCURS 3 TIMES DEPENDING ON CNT PIC X(2).
`
	schema := compileSchema(t, src)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	// HDR.CNT=1 governs the table; TRL.CNT=3 must not
	buf := []byte{0xF1, 0xF3, 0xC1, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	item := records[0].Fields[2]
	if item.Items[0].OutOfRange {
		t.Fatalf("first occurrence is under the counter")
	}
	if !item.Items[1].OutOfRange || !item.Items[2].OutOfRange {
		t.Fatalf("occurrences past HDR.CNT must be flagged: %+v", item)
	}
}

func TestLookupInsideTable(t *testing.T) {
	src := `       01  REC.
           05  ENTRY OCCURS 2 TIMES.
               10  TAG        PIC X(1).
`
	schema := compileSchema(t, src)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	records, err := dec.Decode([]byte{0xC1, 0xC2})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	tag := records[0].Lookup("TAG")
	if tag == nil || tag.Str != "A" {
		t.Fatalf("expected first occurrence TAG, got %+v", tag)
	}
}

func TestDecodeRedefines(t *testing.T) {
	src := `       01  REC.
           05  RAW            PIC X(4).
           05  NUM REDEFINES RAW PIC 9(4).
`
	schema := compileSchema(t, src)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	buf := []byte{0xF1, 0xF2, 0xF3, 0xF4}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	rec := records[0]
	if raw := rec.Lookup("RAW"); raw.Str != "1234" {
		t.Fatalf("unexpected RAW value %q", raw.Str)
	}
	if num := rec.Lookup("NUM"); num.Int != 1234 {
		t.Fatalf("unexpected NUM value %d", num.Int)
	}
}

func TestDecodeFloats(t *testing.T) {
	src := `       01  REC.
           05  SHORT-F        COMP-1.
           05  LONG-F         COMP-2.
`
	schema := compileSchema(t, src)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	if dec.RecordLength() != 12 {
		t.Fatalf("expected record length 12, got %d", dec.RecordLength())
	}
	// 1.5 as IEEE 754 single and double, big-endian
	buf := []byte{
		0x3F, 0xC0, 0x00, 0x00,
		0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	rec := records[0]
	if got := rec.Lookup("SHORT-F").Float; got != 1.5 {
		t.Fatalf("unexpected COMP-1 value %v", got)
	}
	if got := rec.Lookup("LONG-F").Float; got != 1.5 {
		t.Fatalf("unexpected COMP-2 value %v", got)
	}
}

func TestDecodeFieldFailureNamesField(t *testing.T) {
	schema := compileSchema(t, statusCopybook)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	// bad packed sign nibble in AMT
	buf := []byte{0xC1, 0x00, 0x12, 0x34, 0x51}
	_, err = dec.Decode(buf)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field error, got %v", err)
	}
	if fieldErr.Field != "REC.AMT" || fieldErr.Record != 0 {
		t.Fatalf("unexpected field error context: %+v", fieldErr)
	}
}

func TestDecodeMultipleRecords(t *testing.T) {
	schema := compileSchema(t, statusCopybook)
	dec, err := New(schema, "cp037")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	buf := []byte{
		0xC1, 0x00, 0x12, 0x34, 0x5D,
		0xC3, 0x00, 0x00, 0x10, 0x0C,
	}
	records, err := dec.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	if records[1].Index != 1 {
		t.Fatalf("expected record index 1, got %d", records[1].Index)
	}
	if active, _ := records[1].Condition("ACTIVE"); active {
		t.Fatalf("second record must not be active")
	}

	sum := Summarize(records)
	if sum.Records != 2 || sum.ConditionHits["ACTIVE"] != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
