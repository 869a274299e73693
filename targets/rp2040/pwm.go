//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"

	"servofw/core"
)

// Three-phase PWM on two RP2040 PWM slices in phase-correct mode.
//
// f_pwm = f_sys / (2 * (TOP + 1)), so at 125MHz a TOP of 1561 gives
// the 40kHz control rate. Both slices are released simultaneously
// through the EN register so their counters stay phase-locked.
const (
	pwmTop = 1561

	// Slice 0 carries channels 1 (A output) and 2 (B output); slice 1
	// carries channel 3 (A output).
	pwmSliceA = 0
	pwmSliceB = 1

	// GPIO0/1 are slice 0 A/B, GPIO2 is slice 1 A.
	pinPwm1 = machine.GPIO0
	pinPwm2 = machine.GPIO1
	pinPwm3 = machine.GPIO2
)

// phaseTimer implements core.PhaseTimer on the RP2040 PWM block.
//
// Timer channel 1 drives the phase-A half bridge, channel 2 phase C
// and channel 3 phase B; the core writes compares with that swap in
// mind, and the board must route GPIO0/1/2 accordingly.
type phaseTimer struct{}

func newPhaseTimer() *phaseTimer {
	return &phaseTimer{}
}

func (p *phaseTimer) Configure() {
	for _, pin := range []machine.Pin{pinPwm1, pinPwm2, pinPwm3} {
		pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	}

	// Phase-correct (center-aligned) count, no clock divide.
	rp.PWM.CH0_TOP.Set(pwmTop)
	rp.PWM.CH0_DIV.Set(1 << rp.PWM_CH0_DIV_INT_Pos)
	rp.PWM.CH0_CC.Set(0)
	rp.PWM.CH0_CSR.Set(rp.PWM_CH0_CSR_PH_CORRECT)

	rp.PWM.CH1_TOP.Set(pwmTop)
	rp.PWM.CH1_DIV.Set(1 << rp.PWM_CH1_DIV_INT_Pos)
	rp.PWM.CH1_CC.Set(0)
	rp.PWM.CH1_CSR.Set(rp.PWM_CH1_CSR_PH_CORRECT)

	// The wrap interrupt of slice 0 is the control interrupt; it
	// fires once per up/down cycle in phase-correct mode.
	rp.PWM.INTR.Set(1 << pwmSliceA)
	rp.PWM.INTE.Set(1 << pwmSliceA)

	irq := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, pwmWrapHandler)
	irq.SetPriority(0x00) // highest: nothing may delay the control loop
	irq.Enable()

	// Release both counters in the same cycle.
	rp.PWM.EN.SetBits((1 << pwmSliceA) | (1 << pwmSliceB))
}

// pwmWrapHandler is the bare interrupt entry; it reaches the servo
// through the pointer installed at construction.
func pwmWrapHandler(interrupt.Interrupt) {
	rp.PWM.INTR.Set(1 << pwmSliceA) // acknowledge

	if activeServo != nil {
		activeServo.HandleTimerUpdate()
	}
}

func (p *phaseTimer) Period() uint32 {
	return pwmTop
}

func (p *phaseTimer) SetCompare1(v uint32) {
	rp.PWM.CH0_CC.ReplaceBits(v<<rp.PWM_CH0_CC_A_Pos, rp.PWM_CH0_CC_A_Msk, 0)
}

func (p *phaseTimer) SetCompare2(v uint32) {
	rp.PWM.CH0_CC.ReplaceBits(v<<rp.PWM_CH0_CC_B_Pos, rp.PWM_CH0_CC_B_Msk, 0)
}

func (p *phaseTimer) SetCompare3(v uint32) {
	rp.PWM.CH1_CC.ReplaceBits(v<<rp.PWM_CH1_CC_A_Pos, rp.PWM_CH1_CC_A_Msk, 0)
}

var _ core.PhaseTimer = (*phaseTimer)(nil)
