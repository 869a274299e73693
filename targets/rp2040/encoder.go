//go:build rp2040

package main

import (
	"machine"

	"servofw/core"
)

// spiEncoder implements core.PositionSensor for an AS5047-style
// absolute magnetic encoder on SPI: one 16-bit transfer returns the
// 14-bit compensated angle, scaled up to the full 16-bit count the
// core expects.
type spiEncoder struct {
	spi *machine.SPI
	cs  machine.Pin
}

// as5047CmdAngle is the ANGLECOM read frame: address 0x3FFF, read
// flag, even parity.
const as5047CmdAngle = 0xFFFF

func newSPIEncoder(spi *machine.SPI, cs machine.Pin) (*spiEncoder, error) {
	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	cs.High()

	// The sensor samples MOSI on the falling edge: SPI mode 1.
	err := spi.Configure(machine.SPIConfig{
		Frequency: 8_000_000,
		Mode:      1,
	})
	if err != nil {
		return nil, err
	}

	e := &spiEncoder{spi: spi, cs: cs}

	// The first response after power-up answers the previous (stale)
	// command; throw one transfer away.
	e.transfer()
	return e, nil
}

func (e *spiEncoder) Sample() uint16 {
	angle14 := e.transfer() & 0x3FFF
	return angle14 << 2
}

func (e *spiEncoder) transfer() uint16 {
	w := [2]byte{as5047CmdAngle >> 8, as5047CmdAngle & 0xFF}
	var r [2]byte

	e.cs.Low()
	e.spi.Tx(w[:], r[:])
	e.cs.High()

	return uint16(r[0])<<8 | uint16(r[1])
}

var _ core.PositionSensor = (*spiEncoder)(nil)
