package goble

import (
	"errors"
	"testing"

	"github.com/srg/podmon/internal/device"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"darwin powered off", errors.New("central manager has invalid state: have=4 want=5: is Bluetooth turned on?"), device.ErrBluetoothOff},
		{"bluez off", errors.New("Bluetooth is turned off"), device.ErrBluetoothOff},
		{"permission", errors.New("can't init hci: operation not permitted"), device.ErrPermissionDenied},
		{"unauthorized", errors.New("central manager unauthorized"), device.ErrPermissionDenied},
		{"no adapter", errors.New("can't init hci: no such device"), device.ErrNoAdapter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, device.ErrBleUnavailable)
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}
}

func TestNormalizeError_PassThrough(t *testing.T) {
	assert.NoError(t, NormalizeError(nil))

	other := errors.New("hci: command timeout")
	assert.Same(t, other, NormalizeError(other))

	already := device.ErrNoAdapter
	assert.Same(t, already, NormalizeError(already))
}

func TestNormalizeStartError(t *testing.T) {
	err := NormalizeStartError(errors.New("something odd"))
	assert.ErrorIs(t, err, device.ErrBleUnavailable)
	assert.Contains(t, err.Error(), "something odd")

	err = NormalizeStartError(errors.New("Bluetooth is turned off"))
	assert.ErrorIs(t, err, device.ErrBluetoothOff)

	assert.NoError(t, NormalizeStartError(nil))
}
