package core

// MotorDriver is the abstract interface to the gate-driver chip.
type MotorDriver interface {
	// Enable powers the gate driver itself. Enabling takes time; the
	// millisecond poll advances the state machine once it is done.
	Enable(on bool)

	// Power enables the output stage. With power off the bridge
	// floats regardless of the PWM compares.
	Power(on bool)

	// Fault reports whether the driver has latched a hardware fault.
	Fault() bool
}

// PositionSensor is the abstract interface to the absolute rotor
// position sensor.
type PositionSensor interface {
	// Sample returns the raw angular count, 0..65535 per revolution.
	Sample() uint16
}

// DebugSink receives the per-tick debug frame. Emit must be
// fire-and-forget: on hardware the frame goes out via DMA or a FIFO,
// and a sink that cannot accept the frame drops it rather than stall
// the control interrupt.
type DebugSink interface {
	Emit(frame []byte)
}
