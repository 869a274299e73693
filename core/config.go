package core

// Config is owned by the foreground and read by the ISR without
// locking. The foreground must only swap whole values field by field;
// partial updates of a single float are not possible on the supported
// targets.
type Config struct {
	// Motor parameters.
	MotorPoles      uint8
	MotorOffset     float32 // fraction of an electrical revolution
	MotorResistance float32 // ohms, phase-to-neutral
	MotorVPerHz     float32 // back-EMF constant as volts per rev/s of Status.Velocity

	// Scaling.
	UnwrappedPositionScale float32
	IScaleA                float32 // amperes per ADC count
	VScaleV                float32 // volts per ADC count

	// Limits.
	MaxVoltage float32

	FeedforwardScale float32

	// ADC acquisition: index into SampleCycles and the number of
	// oversampled conversions per tick.
	AdcCycles      int
	AdcSampleCount uint16

	PidDq       PIDGains
	PidPosition PIDGains
}

// DefaultConfig returns the configuration for the reference motor and
// current-sense hardware.
func DefaultConfig() Config {
	return Config{
		MotorPoles:             14,
		MotorOffset:            0.0,
		MotorResistance:        0.030,
		MotorVPerHz:            0.151,
		UnwrappedPositionScale: 1.0,
		IScaleA:                0.02014,
		VScaleV:                0.00884,
		MaxVoltage:             30.0,
		FeedforwardScale:       1.0,
		AdcCycles:              15,
		AdcSampleCount:         4,
		PidDq:                  PIDGains{Kp: 0.2, Ki: 30.0},
		PidPosition:            PIDGains{Kp: 300.0, Kd: 20.0},
	}
}
