//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"servofw/core"
)

// PIO debug UART transmitter. The machine UARTs top out well below
// what streaming a 12-byte frame at 40kHz needs, so a PIO state
// machine clocks out 8N1 at 3Mbaud instead. Emit never blocks: a full
// TX FIFO drops the frame, per the core's DebugSink contract.

const debugBaud = 3_000_000

// buildUartTxProgram assembles the 8N1 transmitter using AssemblerV0.
// Each bit lasts 8 PIO cycles; the clock divider maps that onto the
// baud rate.
//
// Program flow:
//  1. Pull a byte from the FIFO (blocks while idle, line rests high)
//  2. Drive the start bit for 8 cycles
//  3. Shift out 8 data bits, LSB first, 8 cycles each
//  4. Drive the stop bit and wrap back to the pull
func buildUartTxProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                   // 0: pull block
		asm.Set(rp2pio.SetDestX, 7).Encode(),             // 1: set x, 7 (bit count)
		asm.Set(rp2pio.SetDestPins, 0).Delay(7).Encode(), // 2: set pins, 0 [7] (start bit)
		// bitloop:
		asm.Out(rp2pio.OutDestPins, 1).Delay(6).Encode(), // 3: out pins, 1 [6]
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(),         // 4: jmp x--, 3
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 5: set pins, 1 [7] (stop bit)
		// .wrap
	}
}

const uartTxOrigin = 0 // Load at offset 0 for correct jump addresses

// pioDebugSink implements core.DebugSink on a PIO state machine.
type pioDebugSink struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	pin machine.Pin
}

func newPIODebugSink(pioNum, smNum uint8, txPin machine.Pin) (*pioDebugSink, error) {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}

	s := &pioDebugSink{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
		pin: txPin,
	}

	s.sm.TryClaim()

	program := buildUartTxProgram()
	offset, err := s.pio.AddProgram(program, uartTxOrigin)
	if err != nil {
		return nil, err
	}

	s.pin.Configure(machine.PinConfig{Mode: s.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(s.pin, 1)
	cfg.SetOutPins(s.pin, 1)

	// Shift right (UART is LSB first), explicit pull, one byte per
	// FIFO word.
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// 8 PIO cycles per bit.
	div := float32(machine.CPUFrequency()) / (8 * debugBaud)
	whole := uint16(div)
	frac := uint8((div - float32(whole)) * 256)
	cfg.SetClkDivIntFrac(whole, frac)

	s.sm.Init(offset, cfg)
	s.sm.SetPindirsConsecutive(s.pin, 1, true)
	s.sm.SetPinsConsecutive(s.pin, 1, true) // idle high
	s.sm.SetEnabled(true)

	return s, nil
}

// Emit queues one frame. Called from the control interrupt: if the
// FIFO cannot take the whole frame the remainder is dropped rather
// than waited for.
func (s *pioDebugSink) Emit(frame []byte) {
	for _, b := range frame {
		if s.sm.IsTxFIFOFull() {
			return
		}
		s.sm.TxPut(uint32(b))
	}
}

var _ core.DebugSink = (*pioDebugSink)(nil)
