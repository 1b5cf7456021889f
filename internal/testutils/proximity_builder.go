package testutils

import (
	"encoding/binary"

	"github.com/srg/podmon/proximity"
)

// ProximityPayloadBuilder builds proximity pairing payloads (the manufacturer data
// following the company identifier) for a given field layout.
//
// Default values produce a valid AirPods Pro 2 message with left 100%, right 50%,
// case 70% and nothing charging when used with proximity.ContinuityLayout.
//
// Example:
//
//	payload := testutils.NewProximityPayloadBuilder(proximity.ContinuityLayout).
//	    WithPods(0x42).
//	    WithStatus(0x02). // flipped
//	    Build()
type ProximityPayloadBuilder struct {
	layout   proximity.Layout
	msgType  uint8
	length   uint8
	prefix   uint8
	model    proximity.Model
	status   uint8
	pods     uint8
	caseByte uint8
	count    uint8
	truncate int
}

// NewProximityPayloadBuilder creates a builder placing fields according to layout.
func NewProximityPayloadBuilder(layout proximity.Layout) *ProximityPayloadBuilder {
	b := &ProximityPayloadBuilder{
		layout:   layout,
		msgType:  proximity.ProximityPairingType,
		length:   0x19,
		prefix:   0x01,
		model:    proximity.ModelAirPodsPro2,
		pods:     0xA5,
		caseByte: 0x07,
		count:    0x01,
		truncate: -1,
	}
	if layout.CaseHighNibble {
		b.caseByte = 0x70
		b.model = proximity.ModelAirPodsPro
		b.count = 0x00
	}
	return b
}

// WithType overrides the message type tag.
func (b *ProximityPayloadBuilder) WithType(t uint8) *ProximityPayloadBuilder {
	b.msgType = t
	return b
}

// WithLength overrides the declared body length.
func (b *ProximityPayloadBuilder) WithLength(n uint8) *ProximityPayloadBuilder {
	b.length = n
	return b
}

// WithModel sets the device model identifier.
func (b *ProximityPayloadBuilder) WithModel(m proximity.Model) *ProximityPayloadBuilder {
	b.model = m
	return b
}

// WithStatus sets the status byte (flip flag).
func (b *ProximityPayloadBuilder) WithStatus(s uint8) *ProximityPayloadBuilder {
	b.status = s
	return b
}

// WithPods sets the earbud battery byte.
func (b *ProximityPayloadBuilder) WithPods(p uint8) *ProximityPayloadBuilder {
	b.pods = p
	return b
}

// WithCase sets the case battery and charging flags byte.
func (b *ProximityPayloadBuilder) WithCase(c uint8) *ProximityPayloadBuilder {
	b.caseByte = c
	return b
}

// WithCount sets the count/flags byte (single-pod flag).
func (b *ProximityPayloadBuilder) WithCount(c uint8) *ProximityPayloadBuilder {
	b.count = c
	return b
}

// WithTruncate cuts the built payload to n bytes.
func (b *ProximityPayloadBuilder) WithTruncate(n int) *ProximityPayloadBuilder {
	b.truncate = n
	return b
}

// Build returns the payload bytes: type, length, then a body of the declared length.
func (b *ProximityPayloadBuilder) Build() []byte {
	bodyLen := int(b.length)
	if need := b.layout.BodyLen(); bodyLen < need {
		bodyLen = need
	}
	body := make([]byte, bodyLen)

	l := b.layout
	if l.ModelOffset > 0 {
		body[0] = b.prefix
	}
	l.ModelOrder.PutUint16(body[l.ModelOffset:l.ModelOffset+2], uint16(b.model))
	body[l.StatusOffset] = b.status
	body[l.BatteryOffset] = b.pods
	body[l.CaseOffset] = b.caseByte
	body[l.CountOffset] = b.count

	payload := append([]byte{b.msgType, b.length}, body...)
	if b.truncate >= 0 && b.truncate < len(payload) {
		payload = payload[:b.truncate]
	}
	return payload
}

// ManufacturerData prefixes payload with the little-endian company identifier, the way
// it appears in the manufacturer specific AD structure.
func ManufacturerData(companyID uint16, payload []byte) []byte {
	data := make([]byte, 2, 2+len(payload))
	binary.LittleEndian.PutUint16(data, companyID)
	return append(data, payload...)
}
