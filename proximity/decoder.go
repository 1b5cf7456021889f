package proximity

import "fmt"

// Decoder extracts battery state from proximity pairing advertisements of one vendor and
// one family of models. It holds no mutable state and is safe for concurrent use.
type Decoder struct {
	vendorID uint16
	layout   Layout
	bodyLen  int
	models   map[Model]struct{}
}

// NewDecoder creates a decoder for vendorID using layout. When no models are given every
// model from KnownModels is accepted.
func NewDecoder(vendorID uint16, layout Layout, models ...Model) (*Decoder, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		models = KnownModels()
	}

	set := make(map[Model]struct{}, len(models))
	for _, m := range models {
		set[m] = struct{}{}
	}

	return &Decoder{
		vendorID: vendorID,
		layout:   layout,
		bodyLen:  layout.BodyLen(),
		models:   set,
	}, nil
}

var defaultDecoder = func() *Decoder {
	d, err := NewDecoder(AppleCompanyID, DefaultLayout)
	if err != nil {
		panic(fmt.Sprintf("proximity: default decoder: %v", err))
	}
	return d
}()

// Decode decodes payload with the default decoder.
func Decode(payload []byte, vendorID uint16) (BatteryStatus, bool) {
	return defaultDecoder.Decode(payload, vendorID)
}

// VendorID returns the company identifier the decoder accepts.
func (d *Decoder) VendorID() uint16 {
	return d.vendorID
}

// Layout returns the field layout used by the decoder.
func (d *Decoder) Layout() Layout {
	return d.layout
}

// Accepts reports whether the decoder is configured for model m.
func (d *Decoder) Accepts(m Model) bool {
	_, ok := d.models[m]
	return ok
}

// Decode parses the manufacturer payload (the bytes following the company identifier).
//
// The second return value is false when the advertisement is not a proximity pairing
// message of a targeted model: wrong vendor, wrong type tag, too short, or an
// unrecognised model. This is the normal outcome for unrelated nearby devices.
// Reserved bit patterns never fail decoding; they resolve to unknown.
func (d *Decoder) Decode(payload []byte, vendorID uint16) (BatteryStatus, bool) {
	if vendorID != d.vendorID {
		return BatteryStatus{}, false
	}
	if len(payload) < headerLen || payload[0] != ProximityPairingType {
		return BatteryStatus{}, false
	}

	declared := int(payload[1])
	if declared < d.bodyLen || len(payload) < headerLen+declared {
		return BatteryStatus{}, false
	}
	body := payload[headerLen : headerLen+declared]

	l := d.layout
	model := Model(l.ModelOrder.Uint16(body[l.ModelOffset : l.ModelOffset+2]))
	if !d.Accepts(model) {
		return BatteryStatus{}, false
	}

	status := body[l.StatusOffset]
	pods := body[l.BatteryOffset]
	caseByte := body[l.CaseOffset]
	count := body[l.CountOffset]

	leftNibble := (pods >> 4) & 0x0F
	rightNibble := pods & 0x0F

	var caseNibble uint8
	if l.CaseHighNibble {
		caseNibble = (caseByte >> 4) & 0x0F
	} else {
		caseNibble = caseByte & 0x0F
	}

	leftCharging := caseByte&l.LeftChargingMask != 0
	rightCharging := caseByte&l.RightChargingMask != 0
	caseCharging := caseByte&l.CaseChargingMask != 0

	if status&l.FlipMask != 0 {
		leftNibble, rightNibble = rightNibble, leftNibble
		leftCharging, rightCharging = rightCharging, leftCharging
	}

	st := BatteryStatus{
		Left:          percentFromNibble(leftNibble),
		Right:         percentFromNibble(rightNibble),
		Case:          percentFromNibble(caseNibble),
		LeftCharging:  leftCharging,
		RightCharging: rightCharging,
		CaseCharging:  caseCharging,
		Model:         model,
	}

	if l.SinglePodMask != 0 && count&l.SinglePodMask != 0 {
		st.SinglePod = true
		// Keep the reporting side; the other earbud is absent.
		if st.Left.IsKnown() {
			st.Right = Unknown()
			st.RightCharging = false
		} else {
			st.Left = Unknown()
			st.LeftCharging = false
		}
	}

	return st, true
}
