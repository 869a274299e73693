//go:build rp2040

package main

import (
	"machine"

	"servofw/core"
)

// gateDriver implements core.MotorDriver for a DRV83xx-style gate
// driver: an enable pin that powers the driver's internal supplies, an
// inhibit pin gating the output stage, and an open-drain fault output.
type gateDriver struct {
	enablePin machine.Pin
	powerPin  machine.Pin
	faultPin  machine.Pin
}

func newGateDriver(enable, power, fault machine.Pin) *gateDriver {
	d := &gateDriver{
		enablePin: enable,
		powerPin:  power,
		faultPin:  fault,
	}

	d.enablePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.powerPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.faultPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	d.enablePin.Low()
	d.powerPin.Low()
	return d
}

func (d *gateDriver) Enable(on bool) {
	d.enablePin.Set(on)
}

func (d *gateDriver) Power(on bool) {
	d.powerPin.Set(on)
}

func (d *gateDriver) Fault() bool {
	// nFAULT is active low.
	return !d.faultPin.Get()
}

var _ core.MotorDriver = (*gateDriver)(nil)
