// Package listener subscribes to passive BLE advertisements and forwards those
// carrying manufacturer data of one vendor to a handler.
//
// The listener never connects to a device and never writes to the air. Callbacks
// are serialised in the order the platform reports advertisements and are never
// invoked after Subscription.Stop returns.
package listener
