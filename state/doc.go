// Package state owns the single current DeviceStatus of the tracked accessory.
//
// A Manager folds decoded battery readings and a staleness watchdog into discrete
// transitions and notifies registered observers of each one. All mutations happen
// under one lock; observers are called from a dedicated dispatcher goroutine, in
// transition order, after the lock has been released, so they may call back into
// the Manager.
package state
