// File path: internal/decoder/numeric.go
package decoder

import (
	"encoding/binary"
	"fmt"
)

// decodeZoned extracts the unscaled value of a zoned decimal field.
// Every byte carries one digit in its low nibble; the final byte's zone
// nibble may overpunch the sign. Leading blanks and an explicit EBCDIC
// minus are tolerated since flat files in the wild carry both.
func decodeZoned(raw []byte, space byte) (int64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty zoned field")
	}
	negative := false
	var value int64
	digits := 0
	for i, b := range raw {
		if b == space || b == ' ' {
			if i == len(raw)-1 && digits == 0 {
				return 0, fmt.Errorf("zoned field is all blanks")
			}
			continue
		}
		if b == 0x60 || b == '-' {
			// explicit minus ahead of the digits
			negative = true
			continue
		}
		digit := int64(b & 0x0F)
		if digit > 9 {
			return 0, fmt.Errorf("invalid zoned digit byte 0x%02X at position %d", b, i)
		}
		if i == len(raw)-1 {
			if b>>4 == 0x0D || b>>4 == 0x0B {
				negative = true
			}
		}
		value = value*10 + digit
		digits++
	}
	if digits == 0 {
		return 0, fmt.Errorf("zoned field has no digits")
	}
	if negative {
		value = -value
	}
	return value, nil
}

// decodePacked extracts the unscaled value of a COMP-3 field. Digit
// nibbles precede a trailing sign nibble.
func decodePacked(raw []byte) (int64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty packed field")
	}
	var value int64
	last := len(raw) - 1
	for i, b := range raw {
		hi := int64(b >> 4)
		lo := int64(b & 0x0F)
		if hi > 9 {
			return 0, fmt.Errorf("invalid packed digit nibble 0x%X at byte %d", hi, i)
		}
		value = value*10 + hi
		if i < last {
			if lo > 9 {
				return 0, fmt.Errorf("invalid packed digit nibble 0x%X at byte %d", lo, i)
			}
			value = value*10 + lo
		}
	}
	switch sign := raw[last] & 0x0F; sign {
	case 0x0D, 0x0B:
		return -value, nil
	case 0x0A, 0x0C, 0x0E, 0x0F:
		return value, nil
	default:
		return 0, fmt.Errorf("invalid packed sign nibble 0x%X", raw[last]&0x0F)
	}
}

// decodeBinary extracts a big-endian COMP value. Signed fields read as
// two's complement; unsigned fields must fit the declared width without
// a set high bit on the 8 byte form.
func decodeBinary(raw []byte, signed bool) (int64, error) {
	var value int64
	switch len(raw) {
	case 2:
		if signed {
			value = int64(int16(binary.BigEndian.Uint16(raw)))
		} else {
			value = int64(binary.BigEndian.Uint16(raw))
		}
	case 4:
		if signed {
			value = int64(int32(binary.BigEndian.Uint32(raw)))
		} else {
			value = int64(binary.BigEndian.Uint32(raw))
		}
	case 8:
		u := binary.BigEndian.Uint64(raw)
		if !signed && u > 1<<63-1 {
			return 0, fmt.Errorf("unsigned binary value overflows 18 digits")
		}
		value = int64(u)
	default:
		return 0, fmt.Errorf("unsupported binary width %d", len(raw))
	}
	if !signed && value < 0 {
		return 0, fmt.Errorf("negative value in unsigned binary field")
	}
	return value, nil
}
