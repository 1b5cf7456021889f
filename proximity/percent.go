package proximity

import (
	"encoding/json"
	"fmt"
)

// maxLevelNibble is the highest defined battery level (10 => 100%).
// Anything above it, including the 0xF "not present" marker, is unknown.
const maxLevelNibble uint8 = 0x0A

// Percent is a battery level that is either a known value in [0,100] or unknown.
// The zero value is Unknown.
type Percent struct {
	value uint8
	known bool
}

// Known returns a known Percent. Values outside [0,100] are clamped.
func Known(v int) Percent {
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	return Percent{value: uint8(v), known: true}
}

// Unknown returns the unknown Percent.
func Unknown() Percent {
	return Percent{}
}

// Value returns the percentage and whether it is known.
func (p Percent) Value() (int, bool) {
	return int(p.value), p.known
}

// IsKnown reports whether the level is known.
func (p Percent) IsKnown() bool {
	return p.known
}

func (p Percent) String() string {
	if !p.known {
		return "unknown"
	}
	return fmt.Sprintf("%d%%", p.value)
}

// MarshalJSON encodes a known level as a number and an unknown level as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.known {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

// percentFromNibble scales a 4-bit battery field to a Percent.
//
// 0x0-0xA: 0-100% in 10% steps
// 0xB-0xE: reserved, unknown
// 0xF:     not present, unknown
func percentFromNibble(n uint8) Percent {
	n &= 0x0F
	if n > maxLevelNibble {
		return Unknown()
	}
	return Known(int(n) * 10)
}
