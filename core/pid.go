package core

// PIDGains holds the tuning for one PID controller. Gains live in
// Config so the foreground can retune without touching ISR state.
type PIDGains struct {
	Kp float32
	Ki float32
	Kd float32
}

// PIDState is the mutable state of one PID controller. It lives in
// Status so the mode arbiter can zero it in place when the controller
// is inactive, and so telemetry sees the individual terms.
type PIDState struct {
	Error     float32
	ErrorRate float32
	P         float32
	D         float32
	Integral  float32
	Command   float32
}

// PID is a discrete PID block with velocity feed-forward. The gain and
// state structs are supplied by reference at construction; the
// controller itself holds no data of its own.
type PID struct {
	gains *PIDGains
	state *PIDState
}

// NewPID binds a controller to externally stored gains and state.
func NewPID(gains *PIDGains, state *PIDState) PID {
	return PID{gains: gains, state: state}
}

// Apply advances the controller by one sample at rateHz. The
// derivative term comes from the externally supplied rates rather than
// from differentiating the measurement.
func (p PID) Apply(measured, desired, measuredRate, desiredRate, rateHz float32) float32 {
	st := p.state
	g := p.gains

	st.Error = desired - measured
	st.ErrorRate = desiredRate - measuredRate

	st.P = g.Kp * st.Error
	st.D = g.Kd * st.ErrorRate
	st.Integral += g.Ki * st.Error * (1.0 / rateHz)

	st.Command = st.P + st.Integral + st.D
	return st.Command
}
