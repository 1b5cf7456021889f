package proximity

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// AppleCompanyID is the Bluetooth SIG company identifier of the accessory vendor.
	AppleCompanyID uint16 = 0x004C

	// ProximityPairingType is the message type tag of a proximity pairing message.
	ProximityPairingType uint8 = 0x07

	// headerLen covers the type and length bytes preceding the message body.
	headerLen = 2
)

// Layout describes where the proximity pairing fields live inside the message body
// (the bytes following the type/length header). Field positions are not stable across
// firmware revisions, so the decoder is driven by a Layout instead of fixed offsets.
type Layout struct {
	Name string

	ModelOffset int
	ModelOrder  binary.ByteOrder

	StatusOffset int
	FlipMask     uint8 // status byte: left/right nibbles are swapped

	BatteryOffset int // high nibble = left, low nibble = right (before flip)

	CaseOffset        int
	CaseHighNibble    bool // case level in the high nibble, charging bits in the low one
	LeftChargingMask  uint8
	RightChargingMask uint8
	CaseChargingMask  uint8

	CountOffset   int
	SinglePodMask uint8 // count byte: only one earbud is reporting
}

// ContinuityLayout matches recorded advertisement captures: a prefix byte, a big-endian
// model, the status byte, the pods byte, a flags/case byte with the case level in its
// low nibble and charging flags in its high nibble, then the lid/count byte.
var ContinuityLayout = Layout{
	Name:              "continuity",
	ModelOffset:       1,
	ModelOrder:        binary.BigEndian,
	StatusOffset:      3,
	FlipMask:          0x02,
	BatteryOffset:     4,
	CaseOffset:        5,
	CaseHighNibble:    false,
	LeftChargingMask:  0x20,
	RightChargingMask: 0x10,
	CaseChargingMask:  0x40,
	CountOffset:       6,
	SinglePodMask:     0x80,
}

// CompactLayout has no prefix byte: a little-endian model directly after the header, the
// case level in the high nibble and charging flags in the low nibble of the case byte.
var CompactLayout = Layout{
	Name:              "compact",
	ModelOffset:       0,
	ModelOrder:        binary.LittleEndian,
	StatusOffset:      2,
	FlipMask:          0x02,
	BatteryOffset:     3,
	CaseOffset:        4,
	CaseHighNibble:    true,
	LeftChargingMask:  0x01,
	RightChargingMask: 0x02,
	CaseChargingMask:  0x04,
	CountOffset:       5,
	SinglePodMask:     0x80,
}

// DefaultLayout is used when no layout is configured.
var DefaultLayout = ContinuityLayout

// LayoutByName resolves a preset layout by its name (case-insensitive).
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ContinuityLayout.Name:
		return ContinuityLayout, nil
	case CompactLayout.Name:
		return CompactLayout, nil
	default:
		return Layout{}, fmt.Errorf("unknown layout %q (must be %s or %s)", name, ContinuityLayout.Name, CompactLayout.Name)
	}
}

// BodyLen returns the minimum message body length needed to read every field.
func (l Layout) BodyLen() int {
	n := l.ModelOffset + 2
	for _, off := range []int{l.StatusOffset, l.BatteryOffset, l.CaseOffset, l.CountOffset} {
		if off+1 > n {
			n = off + 1
		}
	}
	return n
}

// Validate checks that the layout can be used for decoding.
func (l Layout) Validate() error {
	if l.ModelOrder == nil {
		return fmt.Errorf("layout %q: model byte order is not set", l.Name)
	}
	for field, off := range map[string]int{
		"model":   l.ModelOffset,
		"status":  l.StatusOffset,
		"battery": l.BatteryOffset,
		"case":    l.CaseOffset,
		"count":   l.CountOffset,
	} {
		if off < 0 {
			return fmt.Errorf("layout %q: negative %s offset %d", l.Name, field, off)
		}
	}
	return nil
}
