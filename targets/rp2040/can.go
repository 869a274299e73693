//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/mcp2515"

	"servofw/core"
	"servofw/protocol"
)

// CAN command ingress via an MCP2515 controller on SPI1. The bus
// carries the compact fixed-point command frames from
// protocol/cancmd.go; decoded commands go through the same
// Servo.Command boundary as any other foreground caller.
const (
	canCommandID     = 0x100
	canSetPositionID = 0x101
)

type canIngress struct {
	dev   *mcp2515.Device
	servo *core.Servo

	// last is re-sent with each set-position so the override rides on
	// the current command.
	last core.CommandData
}

func newCANIngress(spi *machine.SPI, cs machine.Pin, servo *core.Servo) (*canIngress, error) {
	err := spi.Configure(machine.SPIConfig{Frequency: 8_000_000})
	if err != nil {
		return nil, err
	}

	dev := mcp2515.New(spi, cs)
	dev.Configure()
	if err := dev.Begin(mcp2515.CAN500kBps, mcp2515.Clock16MHz); err != nil {
		return nil, err
	}

	return &canIngress{dev: dev, servo: servo}, nil
}

// Poll drains received frames. Foreground context, called from the
// main loop.
func (c *canIngress) Poll() {
	for c.dev.Received() {
		msg, err := c.dev.Rx()
		if err != nil {
			return
		}

		switch msg.ID {
		case canCommandID:
			cmd, err := protocol.DecodeCANCommand(msg.Data[:msg.Dlc])
			if err != nil {
				continue
			}
			data, ok := commandFromCAN(cmd)
			if !ok {
				continue
			}
			c.last = data
			c.servo.Command(data)

		case canSetPositionID:
			position, err := protocol.DecodeCANSetPosition(msg.Data[:msg.Dlc])
			if err != nil {
				continue
			}
			data := c.last
			data.SetPosition = position
			data.SetPositionValid = true
			c.servo.Command(data)
		}
	}
}

func commandFromCAN(cmd protocol.CANCommand) (core.CommandData, bool) {
	switch cmd.Mode {
	case protocol.CANModeStopped:
		return core.CommandData{Mode: core.ModeStopped}, true
	case protocol.CANModePwm:
		return core.CommandData{
			Mode: core.ModePwm,
			Pwm:  core.Vec3{A: cmd.F1, B: cmd.F2, C: cmd.F3},
		}, true
	case protocol.CANModeVoltage:
		return core.CommandData{
			Mode:   core.ModeVoltage,
			PhaseV: core.Vec3{A: cmd.F1, B: cmd.F2, C: cmd.F3},
		}, true
	case protocol.CANModeVoltageFoc:
		return core.CommandData{
			Mode:    core.ModeVoltageFoc,
			Theta:   cmd.F1,
			Voltage: cmd.F2,
		}, true
	case protocol.CANModeCurrent:
		return core.CommandData{
			Mode: core.ModeCurrent,
			IDA:  cmd.F1,
			IQA:  cmd.F2,
		}, true
	case protocol.CANModePosition:
		return core.CommandData{
			Mode:       core.ModePosition,
			Position:   cmd.F1,
			Velocity:   cmd.F2,
			MaxCurrent: cmd.F3,
		}, true
	}
	return core.CommandData{}, false
}
