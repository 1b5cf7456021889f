// Package proximity decodes the battery and charging state carried in the
// manufacturer-specific "proximity pairing" advertisements broadcast by wireless
// earbuds and their charging case.
//
// Decoding is a pure function of the payload bytes:
//   - Battery levels are 4-bit fields on a 0-10 scale, 0xF meaning unknown
//   - A status bit swaps the left/right nibble assignment
//   - Charging flags are independent bits next to the case level
//   - A count/flags bit marks single-earbud mode
//
// Payloads that do not belong to the protocol are reported as not applicable
// rather than as errors, since most advertisements seen by a scanner come from
// unrelated devices.
package proximity
