package listener

import "github.com/srg/podmon/proximity"

// Decoder turns a vendor payload into a battery status.
type Decoder interface {
	Decode(payload []byte, vendorID uint16) (proximity.BatteryStatus, bool)
}

// Sink consumes decoded battery statuses, typically a state.Manager.
type Sink interface {
	OnDecoded(status proximity.BatteryStatus)
}

// DecodeTo returns a Handler that decodes every advertisement with decoder and
// forwards the applicable ones to sink. A nil decoder uses proximity.Decode.
func DecodeTo(decoder Decoder, sink Sink) Handler {
	decode := proximity.Decode
	if decoder != nil {
		decode = decoder.Decode
	}
	return func(raw RawAdvertisement) {
		if status, ok := decode(raw.Payload, raw.VendorID); ok {
			sink.OnDecoded(status)
		}
	}
}
