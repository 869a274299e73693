package core

import "servofw/protocol"

// isrMaybeEmitDebug streams the fixed debug frame for this tick. The
// sink must not block; the frame buffer is static so the ISR never
// allocates.
func (s *Servo) isrMaybeEmitDebug() {
	if s.debug == nil {
		return
	}

	protocol.EncodeDebugFrame(s.debugBuf[:], protocol.DebugFields{
		Theta:        s.status.ElectricalTheta,
		IDCommand:    s.control.IDA,
		DMeasured:    s.status.DA,
		PidDP:        s.status.PidD.P,
		PidDIntegral: s.status.PidD.Integral,
		DVCommand:    s.control.DV,
		Velocity:     s.status.Velocity,
	})

	s.debug.Emit(s.debugBuf[:])
}
