//go:build rp2040

package main

import (
	"device/rp"
	"machine"

	"servofw/core"
)

// tripleADC implements core.TripleADC on the RP2040's SAR ADC.
//
// The part has a single converter behind a mux, so the three channels
// are converted round-robin rather than simultaneously: roughly 2us
// per channel at the fixed 500kS/s rate. The current-sense channels
// are read back to back to keep their skew minimal, with the
// bus-voltage sense last.
type tripleADC struct {
	// ADC channel numbers: GPIO26=0, GPIO27=1, GPIO28=2.
	cur1Ch   uint32
	cur2Ch   uint32
	vsenseCh uint32
}

func newTripleADC() *tripleADC {
	return &tripleADC{
		cur1Ch:   0,
		cur2Ch:   1,
		vsenseCh: 2,
	}
}

func (a *tripleADC) Configure(sampleCyclesIndex int) error {
	machine.InitADC()

	for _, pin := range []machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2} {
		adc := machine.ADC{Pin: pin}
		if err := adc.Configure(machine.ADCConfig{}); err != nil {
			return err
		}
	}

	// The SAR conversion time is fixed in silicon; the sample-cycle
	// selection exists for converters with programmable sampling
	// windows and has nothing to map onto here.
	_ = sampleCyclesIndex
	return nil
}

func (a *tripleADC) Convert() (cur1, cur2, vsense uint16) {
	cur1 = convertOnce(a.cur1Ch)
	cur2 = convertOnce(a.cur2Ch)
	vsense = convertOnce(a.vsenseCh)
	return cur1, cur2, vsense
}

// convertOnce runs one conversion: select the mux channel, start, and
// busy-wait on READY. The wait is part of the ISR's conversion budget.
func convertOnce(ch uint32) uint16 {
	rp.ADC.CS.ReplaceBits(ch<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)

	for !rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
	}

	// Raw 12-bit result, matching the core's 2048-centered
	// current-sense calibration.
	return uint16(rp.ADC.RESULT.Get())
}

// Interface check against the core contract.
var _ core.TripleADC = (*tripleADC)(nil)
