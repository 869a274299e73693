package monitor

import (
	"bytes"
	"io"
	"math"
	"testing"

	"servofw/protocol"
)

func frameBytes(t *testing.T, f protocol.DebugFields) []byte {
	t.Helper()
	var frame [protocol.DebugFrameSize]byte
	protocol.EncodeDebugFrame(frame[:], f)
	return frame[:]
}

func TestDecoderReadsCleanStream(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(t, protocol.DebugFields{Velocity: 5}))
	stream.Write(frameBytes(t, protocol.DebugFields{Velocity: -5}))

	d := NewDecoder(&stream)

	s1, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if math.Abs(float64(s1.Velocity-5)) > 0.1 {
		t.Errorf("velocity = %v, want about 5", s1.Velocity)
	}

	s2, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if math.Abs(float64(s2.Velocity+5)) > 0.1 {
		t.Errorf("velocity = %v, want about -5", s2.Velocity)
	}

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF at end of stream", err)
	}
}

func TestDecoderResynchronizes(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0xFF, 0x12}) // line noise before the first frame
	stream.Write(frameBytes(t, protocol.DebugFields{Theta: 2}))

	d := NewDecoder(&stream)

	s, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if math.Abs(float64(s.Theta-2)) > 0.05 {
		t.Errorf("theta = %v, want about 2", s.Theta)
	}
	if d.Resyncs() != 3 {
		t.Errorf("resyncs = %d, want 3", d.Resyncs())
	}
}
