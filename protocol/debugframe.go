// Package protocol holds the drive's wire formats: the fixed 12-byte
// debug frame streamed from the control interrupt, the framed CBOR
// telemetry packets, and the compact CAN command encoding.
package protocol

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	// DebugSync is the first byte of every debug frame.
	DebugSync = 0x5A

	// DebugFrameSize is the fixed frame length in bytes.
	DebugFrameSize = 12
)

// DebugFields are the control quantities carried by one debug frame,
// in engineering units. The frame itself stores them as scaled
// fixed-point values; Decode reverses the scaling, so a round trip is
// exact only to the fixed-point resolution.
type DebugFields struct {
	Theta        float32 // electrical angle, radians
	IDCommand    float32 // commanded d-axis current, A
	DMeasured    float32 // measured d-axis current, A
	PidDP        float32 // d-axis PID proportional term, V
	PidDIntegral float32 // d-axis PID integral term, V
	DVCommand    float32 // commanded d-axis voltage, V
	Velocity     float32 // revolutions per second
}

const twoPi = 2 * math.Pi

// EncodeDebugFrame writes f into dst, which must be at least
// DebugFrameSize bytes. It does not allocate, so it is safe to call
// from interrupt context with a static buffer.
func EncodeDebugFrame(dst []byte, f DebugFields) {
	_ = dst[DebugFrameSize-1]

	dst[0] = DebugSync
	dst[1] = uint8(roundI32(255 * f.Theta / twoPi))
	dst[2] = uint8(int8(roundI32(2 * f.IDCommand)))
	binary.LittleEndian.PutUint16(dst[3:5], uint16(roundI16(500*f.DMeasured)))
	binary.LittleEndian.PutUint16(dst[5:7], uint16(roundI16(32767*f.PidDP/12)))
	binary.LittleEndian.PutUint16(dst[7:9], uint16(roundI16(32767*f.PidDIntegral/12)))
	binary.LittleEndian.PutUint16(dst[9:11], uint16(roundI16(32767*f.DVCommand/12)))
	dst[11] = uint8(int8(roundI32(127 * f.Velocity / 10)))
}

var errShortDebugFrame = errors.New("short debug frame")
var errBadDebugSync = errors.New("bad debug frame sync byte")

// DecodeDebugFrame parses one frame back into engineering units.
func DecodeDebugFrame(frame []byte) (DebugFields, error) {
	if len(frame) < DebugFrameSize {
		return DebugFields{}, errShortDebugFrame
	}
	if frame[0] != DebugSync {
		return DebugFields{}, errBadDebugSync
	}

	return DebugFields{
		Theta:        float32(frame[1]) * twoPi / 255,
		IDCommand:    float32(int8(frame[2])) / 2,
		DMeasured:    float32(int16(binary.LittleEndian.Uint16(frame[3:5]))) / 500,
		PidDP:        float32(int16(binary.LittleEndian.Uint16(frame[5:7]))) * 12 / 32767,
		PidDIntegral: float32(int16(binary.LittleEndian.Uint16(frame[7:9]))) * 12 / 32767,
		DVCommand:    float32(int16(binary.LittleEndian.Uint16(frame[9:11]))) * 12 / 32767,
		Velocity:     float32(int8(frame[11])) * 10 / 127,
	}, nil
}

func roundI32(x float32) int32 {
	return int32(math.Round(float64(x)))
}

func roundI16(x float32) int16 {
	return int16(math.Round(float64(x)))
}
