package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/srg/podmon/proximity"
	"github.com/srg/podmon/state"
)

const chargingMark = "+"

// batteryRenderer formats battery readings, colouring levels by charge.
type batteryRenderer struct {
	lowThreshold int
	low          *color.Color
	mid          *color.Color
	high         *color.Color
	dim          *color.Color
}

func newBatteryRenderer(lowThreshold int, colorize bool) *batteryRenderer {
	r := &batteryRenderer{
		lowThreshold: lowThreshold,
		low:          color.New(color.FgRed, color.Bold),
		mid:          color.New(color.FgYellow),
		high:         color.New(color.FgGreen),
		dim:          color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.low, r.mid, r.high, r.dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// level renders one percentage with its charging mark.
func (r *batteryRenderer) level(label string, p proximity.Percent, charging bool) string {
	v, ok := p.Value()
	if !ok {
		return r.dim.Sprintf("%s --", label)
	}

	text := fmt.Sprintf("%s %d%%", label, v)
	if charging {
		text += chargingMark
	}

	switch {
	case v <= r.lowThreshold:
		return r.low.Sprint(text)
	case v < 50:
		return r.mid.Sprint(text)
	default:
		return r.high.Sprint(text)
	}
}

// battery renders the three levels on one line.
func (r *batteryRenderer) battery(b proximity.BatteryStatus) string {
	parts := []string{
		r.level("L", b.Left, b.LeftCharging),
		r.level("R", b.Right, b.RightCharging),
		r.level("C", b.Case, b.CaseCharging),
	}
	return strings.Join(parts, "  ")
}

// status renders a full device status line.
func (r *batteryRenderer) status(st state.DeviceStatus) string {
	switch {
	case !st.AdapterAvailable:
		return r.low.Sprint("Bluetooth unavailable")
	case !st.Seen():
		return "Waiting for device..."
	case !st.Connected:
		return fmt.Sprintf("%s  %s  %s", st.Battery.Model.Name(), r.dim.Sprint("disconnected"), r.dim.Sprint(plainBattery(st.Battery)))
	}

	line := fmt.Sprintf("%s  %s", st.Battery.Model.Name(), r.battery(st.Battery))
	if st.Battery.SinglePod {
		line += "  " + r.dim.Sprint("(single)")
	}
	if st.Battery.Low(r.lowThreshold) {
		line += "  " + r.low.Sprint("LOW")
	}
	return line
}

// plainBattery renders levels without colour.
func plainBattery(b proximity.BatteryStatus) string {
	return newBatteryRenderer(0, false).battery(b)
}
