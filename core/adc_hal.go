package core

// SampleCycles is the selectable ADC sample-time table, in converter
// clock cycles. Config.AdcCycles is mapped onto an index into this
// table with MapConfig.
var SampleCycles = []uint16{3, 15, 28, 56, 84, 112, 144, 480}

// TripleADC is the abstract interface to three converters running in
// simultaneous regular-conversion mode: two phase-current channels and
// one bus-voltage channel.
//
// Convert performs one software-started conversion across all three
// converters and busy-waits for end of conversion. The wait happens
// inside the ISR's oversample loop, so the total conversion time for
// Config.AdcSampleCount rounds must fit well inside the 25us tick.
type TripleADC interface {
	// Configure applies the shared sample-time selection (an index
	// into SampleCycles) before the control loop starts.
	Configure(sampleCyclesIndex int) error

	// Convert returns one raw sample per converter: phase-1 current,
	// phase-2 current, bus-voltage sense. 12-bit right-aligned.
	Convert() (cur1, cur2, vsense uint16)
}
