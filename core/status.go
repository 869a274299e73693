package core

// Vec3 carries one value per motor phase.
type Vec3 struct {
	A float32
	B float32
	C float32
}

// Status is the ISR-owned view of the drive. Everything here is
// written only from interrupt context; Servo.Status copies it out for
// other readers.
type Status struct {
	Mode  Mode
	Fault FaultCode

	// Raw oversampled ADC readings and the calibrated zero offsets
	// for the two current channels.
	Adc1Raw    uint16
	Adc2Raw    uint16
	Adc3Raw    uint16
	Adc1Offset uint16
	Adc2Offset uint16

	BusV  float32
	Cur1A float32
	Cur2A float32
	DA    float32
	QA    float32

	// Rotor position: raw sensor count, the wrap-accumulated integer
	// position in 1/65536 revolution, its scaled value, and the
	// filtered velocity in revolutions per second.
	PositionRaw          uint16
	UnwrappedPositionRaw int32
	UnwrappedPosition    float32
	Velocity             float32

	ElectricalTheta float32

	PidD        PIDState
	PidQ        PIDState
	PidPosition PIDState
}

// Control is the ISR-owned trace of the last control tick.
type Control struct {
	IDA float32
	IQA float32

	DV float32
	QV float32

	Voltage Vec3
	Pwm     Vec3
}
