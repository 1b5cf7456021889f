package device

import (
	"encoding/binary"
	"fmt"
)

const (
	// UnknownCompanyID is returned when manufacturer data is too short to carry
	// a company identifier.
	UnknownCompanyID uint16 = 0xFFFF

	// companyIDLen is the size of the little-endian company identifier that
	// prefixes manufacturer-specific data.
	companyIDLen = 2
)

// knownVendors maps Bluetooth SIG company identifiers to vendor names
var knownVendors = map[uint16]string{
	0x004C: "Apple",
	0x0006: "Microsoft",
	0x0075: "Samsung",
	0x00E0: "Google",
	0x012D: "Sony",
	0x0087: "Garmin",
}

// SplitManufacturerData splits raw manufacturer-specific data into its company
// identifier and the vendor payload following it.
//
// The company identifier occupies the first 2 bytes (little-endian) per the BLE
// convention. ok is false when rawData is too short to carry one.
func SplitManufacturerData(rawData []byte) (companyID uint16, payload []byte, ok bool) {
	if len(rawData) < companyIDLen {
		return UnknownCompanyID, nil, false
	}
	return binary.LittleEndian.Uint16(rawData[:companyIDLen]), rawData[companyIDLen:], true
}

// VendorName returns a human-readable name for the company identifier.
func VendorName(companyID uint16) string {
	if name, ok := knownVendors[companyID]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%04X)", companyID)
}
