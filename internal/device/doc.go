// Package device provides the platform-neutral Bluetooth Low Energy (BLE)
// abstractions used for passive advertisement scanning.
//
// This package defines:
//   - The ScanningDevice and Advertisement interfaces implemented by platform backends
//   - The error taxonomy separating an unusable adapter from transient failures
//   - Helpers for splitting manufacturer-specific data into company ID and payload
package device
