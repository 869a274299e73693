// Package core implements the real-time control loop of a brushless
// DC servo drive: a 40kHz interrupt-driven cycle that samples phase
// currents and rotor position, runs field-oriented control with nested
// PID loops, and drives three half-bridge PWM outputs. Hardware is
// reached only through the HAL interfaces in *_hal.go, so the whole
// loop runs unmodified against mock drivers on the host.
package core

import (
	"sync/atomic"

	"servofw/protocol"
	"servofw/telemetry"
)

const (
	// RateHz is the control rate. PID integration and the velocity
	// estimate use this value exactly; tick jitter is the platform
	// layer's problem.
	RateHz = 40000.0

	calibrateCount = 256

	// The maximum the absolute encoder may change in one cycle
	// before we assume the reading is garbage.
	maxPositionDelta = 1000
)

// Servo is one drive axis. The ISR methods run only from the PWM
// timer's update interrupt; Command, Status and PollMillisecond run
// from the foreground. The command buffer pair and the mode atomic are
// the only state shared between the two contexts.
type Servo struct {
	cfg *Config

	position PositionSensor
	driver   MotorDriver
	pwm      PhaseTimer
	adc      TripleADC
	debug    DebugSink

	mode atomic.Int32

	// Command handoff: the foreground writes dataBuffers[nextData]
	// and publishes it through currentData; the ISR only ever reads
	// the published buffer.
	dataBuffers   [2]CommandData
	currentData   atomic.Pointer[CommandData]
	nextData      int
	telemetryData CommandData

	status  Status
	control Control

	velocityFilter WindowedAverage

	calibrateAdc1 uint32
	calibrateAdc2 uint32
	calibrate     uint16

	pidD        PID
	pidQ        PID
	pidPosition PID

	debugBuf [protocol.DebugFrameSize]byte
}

// New wires a Servo to its peripherals. debug may be nil to disable
// the per-tick debug frame. If reg is non-nil the drive registers its
// config, status, last command and control trace for external
// persistence and telemetry services.
func New(cfg *Config, reg *telemetry.Registry, position PositionSensor,
	driver MotorDriver, pwm PhaseTimer, adc TripleADC, debug DebugSink) *Servo {

	s := &Servo{
		cfg:      cfg,
		position: position,
		driver:   driver,
		pwm:      pwm,
		adc:      adc,
		debug:    debug,
	}

	s.status.Adc1Offset = 2048
	s.status.Adc2Offset = 2048

	s.pidD = NewPID(&cfg.PidDq, &s.status.PidD)
	s.pidQ = NewPID(&cfg.PidDq, &s.status.PidQ)
	s.pidPosition = NewPID(&cfg.PidPosition, &s.status.PidPosition)

	s.currentData.Store(&s.dataBuffers[0])
	s.nextData = 1

	if reg != nil {
		reg.Register("servo", func() any { return *s.cfg })
		reg.Register("servo_stats", func() any { return s.Status() })
		reg.Register("servo_cmd", func() any { return s.telemetryData })
		reg.Register("servo_control", func() any { return s.Control() })
	}

	return s
}

// Mode returns the current operating mode.
func (s *Servo) Mode() Mode {
	return Mode(s.mode.Load())
}

// Status returns a snapshot of the drive state.
func (s *Servo) Status() Status {
	st := s.status
	st.Mode = s.Mode()
	return st
}

// Control returns the control trace of the last tick.
func (s *Servo) Control() Control {
	return s.control
}

// PollMillisecond runs supervisory transitions from the foreground at
// roughly millisecond rate. Once the gate driver has been told to
// enable, calibration may start; the CAS loses deliberately to any
// concurrent ISR transition (for instance into fault).
func (s *Servo) PollMillisecond() {
	if Mode(s.mode.Load()) == ModeEnabling {
		s.driver.Enable(true)
		s.mode.CompareAndSwap(int32(ModeEnabling), int32(ModeCalibrating))
	}
}

// HandleTimerUpdate is the control interrupt. The target registers it
// as the PWM timer's update handler and must invoke it only on the
// update event at the end of the up-count phase.
func (s *Servo) HandleTimerUpdate() {
	// No matter what mode we are in, always sample the ADCs and the
	// position sensor.
	s.isrSense()

	sc := NewSinCos(s.status.ElectricalTheta)

	s.isrCalculateCurrentState(sc)
	s.isrDoControl(sc)

	s.isrMaybeEmitDebug()
}

func (s *Servo) isrSense() {
	var adc1, adc2, adc3 uint32

	n := s.cfg.AdcSampleCount
	if n == 0 {
		n = 1
	}
	for i := uint16(0); i < n; i++ {
		c1, c2, vs := s.adc.Convert()
		adc1 += uint32(c1)
		adc2 += uint32(c2)
		adc3 += uint32(vs)
	}

	s.status.Adc1Raw = uint16(adc1 / uint32(n))
	s.status.Adc2Raw = uint16(adc2 / uint32(n))
	s.status.Adc3Raw = uint16(adc3 / uint32(n))

	// Conversion time until here limits the maximum usable duty
	// cycle; everything below just eats budget from the rest of the
	// tick.

	oldPositionRaw := s.status.PositionRaw
	s.status.PositionRaw = s.position.Sample()

	s.status.ElectricalTheta = k2Pi * wrapUnit(
		float32(s.status.PositionRaw)/65536.0*
			(float32(s.cfg.MotorPoles)/2.0)-s.cfg.MotorOffset)

	deltaPosition := int16(s.status.PositionRaw - oldPositionRaw)
	if Mode(s.mode.Load()) != ModeStopped &&
		(deltaPosition > maxPositionDelta || deltaPosition < -maxPositionDelta) {
		// The position read is almost certainly corrupt. Fault.
		s.mode.Store(int32(ModeFault))
		s.status.Fault = FaultEncoder
	}

	s.status.UnwrappedPositionRaw += int32(deltaPosition)
	s.velocityFilter.Add(float32(deltaPosition) * s.cfg.UnwrappedPositionScale *
		(1.0 / 65536.0) * RateHz)
	s.status.Velocity = s.velocityFilter.Average()

	s.status.UnwrappedPosition =
		float32(s.status.UnwrappedPositionRaw) * s.cfg.UnwrappedPositionScale *
			(1.0 / 65536.0)
}

func (s *Servo) isrCalculateCurrentState(sc SinCos) {
	s.status.Cur1A = (float32(s.status.Adc1Raw) - float32(s.status.Adc1Offset)) * s.cfg.IScaleA
	s.status.Cur2A = (float32(s.status.Adc2Raw) - float32(s.status.Adc2Offset)) * s.cfg.IScaleA
	s.status.BusV = float32(s.status.Adc3Raw) * s.cfg.VScaleV

	// The third phase current follows from Kirchhoff.
	dq := NewDqTransform(sc,
		s.status.Cur1A,
		0.0-(s.status.Cur1A+s.status.Cur2A),
		s.status.Cur2A)
	s.status.DA = dq.D
	s.status.QA = dq.Q
}

func (s *Servo) isrDoControl(sc SinCos) {
	// Read the published pointer once; the rest of the tick works on
	// that buffer even if the foreground publishes a new one.
	data := s.currentData.Load()

	s.control = Control{}

	if data.SetPositionValid {
		s.status.UnwrappedPositionRaw = roundI32f(data.SetPosition * 65536.0)
		data.SetPositionValid = false
	}

	mode := Mode(s.mode.Load())
	if data.Mode != mode {
		s.isrMaybeChangeMode(data)

		mode = Mode(s.mode.Load())
		if mode != ModeStopped {
			if s.driver.Fault() {
				s.mode.Store(int32(ModeFault))
				s.status.Fault = FaultMotorDriver
				return
			}
			if s.status.BusV > s.cfg.MaxVoltage {
				s.mode.Store(int32(ModeFault))
				s.status.Fault = FaultOverVoltage
				return
			}
		}
	}

	// Ensure unused PID controllers carry zeroed state.
	s.isrClearPid()

	mode = Mode(s.mode.Load())
	if mode != ModeFault {
		s.status.Fault = FaultNone
	}

	switch mode {
	case ModeStopped:
		s.isrDoStopped()
	case ModeFault:
		s.isrDoFault()
	case ModeEnabling:
		// Waiting on the millisecond poll; no output this tick.
	case ModeCalibrating:
		s.isrDoCalibrating()
	case ModeCalibrationComplete:
		// Holding for a mode command; no output this tick.
	case ModePwm:
		s.isrDoPwmControl(data.Pwm)
	case ModeVoltage:
		s.isrDoVoltageControl(data.PhaseV)
	case ModeVoltageFoc:
		s.isrDoVoltageFOC(data.Theta, data.Voltage)
	case ModeCurrent:
		s.isrDoCurrent(sc, data.IDA, data.IQA)
	case ModePosition:
		s.isrDoPosition(sc, data.Position, data.Velocity, data.MaxCurrent)
	default:
		s.isrDoStopped()
	}
}

// isrMaybeChangeMode arbitrates a requested mode change. Requests for
// internal states were rejected at the Command boundary, so seeing one
// here means a corrupted buffer; they are ignored.
func (s *Servo) isrMaybeChangeMode(data *CommandData) {
	switch data.Mode {
	case ModeStopped:
		// Always valid.
		s.mode.Store(int32(ModeStopped))
		return

	case ModePwm, ModeVoltage, ModeVoltageFoc, ModeCurrent, ModePosition:
		switch Mode(s.mode.Load()) {
		case ModeFault:
			// A fault must pass through stopped before anything
			// active runs again.
			return
		case ModeStopped:
			// An active mode first requires calibration.
			s.isrStartCalibrating()
			return
		case ModeEnabling, ModeCalibrating:
			// Only leavable once calibration completes.
			return
		case ModeCalibrationComplete, ModePwm, ModeVoltage,
			ModeVoltageFoc, ModeCurrent, ModePosition:
			s.mode.Store(int32(data.Mode))
			return
		}
	}
}

func (s *Servo) isrStartCalibrating() {
	s.mode.Store(int32(ModeEnabling))

	// The millisecond poll advances to calibrating once the gate
	// driver is fully enabled.

	s.pwm.SetCompare1(0)
	s.pwm.SetCompare2(0)
	s.pwm.SetCompare3(0)

	// Power should already be off in every state that can reach
	// here.
	s.driver.Power(false)

	s.calibrateAdc1 = 0
	s.calibrateAdc2 = 0
	s.calibrate = 0
}

func (s *Servo) isrClearPid() {
	mode := Mode(s.mode.Load())

	currentPidActive := mode == ModeCurrent || mode == ModePosition
	if !currentPidActive {
		s.status.PidD = PIDState{}
		s.status.PidQ = PIDState{}
	}

	if mode != ModePosition {
		s.status.PidPosition = PIDState{}
	}
}

func (s *Servo) isrDoStopped() {
	s.driver.Enable(false)
	s.driver.Power(false)
	s.pwm.SetCompare1(0)
	s.pwm.SetCompare2(0)
	s.pwm.SetCompare3(0)
}

func (s *Servo) isrDoFault() {
	s.driver.Power(false)
	s.pwm.SetCompare1(0)
	s.pwm.SetCompare2(0)
	s.pwm.SetCompare3(0)
}

func (s *Servo) isrDoCalibrating() {
	s.calibrateAdc1 += uint32(s.status.Adc1Raw)
	s.calibrateAdc2 += uint32(s.status.Adc2Raw)
	s.calibrate++

	if s.calibrate < calibrateCount {
		return
	}

	adc1Offset := uint16(s.calibrateAdc1 / calibrateCount)
	adc2Offset := uint16(s.calibrateAdc2 / calibrateCount)

	// The current-sense zero points must land near mid-scale of the
	// 12-bit converters.
	if absI32(int32(adc1Offset)-2048) > 200 ||
		absI32(int32(adc2Offset)-2048) > 200 {
		s.mode.Store(int32(ModeFault))
		s.status.Fault = FaultCalibration
		return
	}

	s.status.Adc1Offset = adc1Offset
	s.status.Adc2Offset = adc2Offset
	s.mode.Store(int32(ModeCalibrationComplete))
}

func (s *Servo) isrDoPwmControl(pwm Vec3) {
	s.control.Pwm.A = limitPwm(pwm.A)
	s.control.Pwm.B = limitPwm(pwm.B)
	s.control.Pwm.C = limitPwm(pwm.C)

	period := float32(s.pwm.Period())

	// The board routes phase B through timer channel 3 and phase C
	// through channel 2.
	s.pwm.SetCompare1(uint32(s.control.Pwm.A * period))
	s.pwm.SetCompare3(uint32(s.control.Pwm.B * period))
	s.pwm.SetCompare2(uint32(s.control.Pwm.C * period))

	s.driver.Power(true)
}

func (s *Servo) isrDoVoltageControl(voltage Vec3) {
	s.control.Voltage = voltage

	busV := s.status.BusV
	s.isrDoPwmControl(Vec3{
		A: 0.5 + 2.0*voltage.A/busV,
		B: 0.5 + 2.0*voltage.B/busV,
		C: 0.5 + 2.0*voltage.C/busV,
	})
}

func (s *Servo) isrDoVoltageFOC(theta, voltage float32) {
	sc := NewSinCos(theta)
	idt := NewInverseDqTransform(sc, 0, voltage)
	s.isrDoVoltageControl(Vec3{A: idt.A, B: idt.B, C: idt.C})
}

func (s *Servo) isrDoCurrent(sc SinCos, iDA, iQA float32) {
	s.control.IDA = iDA
	s.control.IQA = iQA

	// The d-axis feed-forward carries the back-EMF term.
	s.control.DV =
		s.cfg.FeedforwardScale*(iDA*s.cfg.MotorResistance-
			s.status.Velocity*s.cfg.MotorVPerHz) +
			s.pidD.Apply(s.status.DA, iDA, 0.0, 0.0, RateHz)
	s.control.QV =
		s.cfg.FeedforwardScale*iQA*s.cfg.MotorResistance +
			s.pidQ.Apply(s.status.QA, iQA, 0.0, 0.0, RateHz)

	idt := NewInverseDqTransform(sc, s.control.DV, s.control.QV)

	s.isrDoVoltageControl(Vec3{A: idt.A, B: idt.B, C: idt.C})
}

func (s *Servo) isrDoPosition(sc SinCos, position, velocity, maxCurrent float32) {
	unlimitedDA := s.pidPosition.Apply(
		s.status.UnwrappedPosition, position,
		s.status.Velocity, velocity,
		RateHz)
	dA := Limit(unlimitedDA, -maxCurrent, maxCurrent)

	s.isrDoCurrent(sc, dA, 0.0)
}

// limitPwm keeps every phase inside [0.1, 0.9]: full duty would leave
// no window to sample the phase currents.
func limitPwm(in float32) float32 {
	return Limit(in, 0.1, 0.9)
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func roundI32f(x float32) int32 {
	if x < 0 {
		return int32(x - 0.5)
	}
	return int32(x + 0.5)
}
