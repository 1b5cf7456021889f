package testutils

import (
	"encoding/json"
	"fmt"

	"github.com/go-ble/ble"
	"github.com/srg/podmon/internal/testutils/mocks"
)

// AdvertisementBuilder builds mocked BLE advertisements for testing.
// Only explicitly configured fields get mock expectations, so a test fails loudly
// when the code under test reads a field it should not need.
type AdvertisementBuilder struct {
	name        string
	address     string
	rssi        int
	manufData   []byte
	connectable bool

	nameSet        bool
	addressSet     bool
	rssiSet        bool
	manufDataSet   bool
	connectableSet bool
}

// NewAdvertisementBuilder creates a new AdvertisementBuilder.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{connectable: true}
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.name = name
	b.nameSet = true
	return b
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.address = addr
	b.addressSet = true
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.rssi = rssi
	b.rssiSet = true
	return b
}

// WithManufacturerData sets the raw manufacturer-specific data, company identifier included.
func (b *AdvertisementBuilder) WithManufacturerData(data []byte) *AdvertisementBuilder {
	b.manufData = data
	b.manufDataSet = true
	return b
}

// WithVendorPayload sets manufacturer data to companyID followed by payload.
func (b *AdvertisementBuilder) WithVendorPayload(companyID uint16, payload []byte) *AdvertisementBuilder {
	return b.WithManufacturerData(ManufacturerData(companyID, payload))
}

// WithConnectable sets whether the device accepts connections.
func (b *AdvertisementBuilder) WithConnectable(c bool) *AdvertisementBuilder {
	b.connectable = c
	b.connectableSet = true
	return b
}

// FromJSON fills builder fields from a JSON string with format support.
// Panics on invalid JSON as this is intended for test data setup.
//
//	NewAdvertisementBuilder().FromJSON(`{"address":"%s","rssi":-60,"manufacturerData":"TAAHGQ=="}`, addr)
func (b *AdvertisementBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	var data struct {
		Name             *string `json:"name"`
		Address          *string `json:"address"`
		RSSI             *int    `json:"rssi"`
		ManufacturerData []byte  `json:"manufacturerData"`
		Connectable      *bool   `json:"connectable"`
	}
	raw := []byte(fmt.Sprintf(jsonStrFmt, args...))
	if err := json.Unmarshal(raw, &data); err != nil {
		panic(fmt.Sprintf("FromJSON: %v", err))
	}

	var present map[string]json.RawMessage
	_ = json.Unmarshal(raw, &present)

	if data.Name != nil {
		b.WithName(*data.Name)
	}
	if data.Address != nil {
		b.WithAddress(*data.Address)
	}
	if data.RSSI != nil {
		b.WithRSSI(*data.RSSI)
	}
	if _, ok := present["manufacturerData"]; ok {
		b.WithManufacturerData(data.ManufacturerData)
	}
	if data.Connectable != nil {
		b.WithConnectable(*data.Connectable)
	}
	return b
}

// Build creates a MockAdvertisement that implements ble.Advertisement interface.
func (b *AdvertisementBuilder) Build() *mocks.MockAdvertisement {
	adv := &mocks.MockAdvertisement{}

	if b.addressSet {
		addr := &mocks.MockAddr{}
		addr.On("String").Return(b.address)
		adv.On("Addr").Return(addr)
	}
	if b.nameSet {
		adv.On("LocalName").Return(b.name)
	}
	if b.rssiSet {
		adv.On("RSSI").Return(b.rssi)
	}
	if b.manufDataSet {
		adv.On("ManufacturerData").Return(b.manufData)
	}
	if b.connectableSet {
		adv.On("Connectable").Return(b.connectable)
	}
	return adv
}

// BuildAll is a convenience for building several advertisements into a slice.
func BuildAll(builders ...*AdvertisementBuilder) []ble.Advertisement {
	out := make([]ble.Advertisement, 0, len(builders))
	for _, b := range builders {
		out = append(out, b.Build())
	}
	return out
}
