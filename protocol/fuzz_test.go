package protocol

import (
	"bytes"
	"testing"
)

// FuzzDecodeTelemetryPacket ensures arbitrary input never panics the
// decoder and that valid packets round-trip.
func FuzzDecodeTelemetryPacket(f *testing.F) {
	seed, _ := EncodeTelemetryPacket(1, []byte{0xA1, 0x00, 0x01})
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{TelemetryStart})
	f.Add([]byte{TelemetryStart, 0xFF, 0xFF, 0xFF, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		id, payload, err := DecodeTelemetryPacket(data)
		if err != nil {
			return
		}

		// Anything that decodes must re-encode to the same packet.
		reencoded, err := EncodeTelemetryPacket(id, payload)
		if err != nil {
			t.Fatalf("re-encode of valid packet failed: %v", err)
		}
		if !bytes.Equal(reencoded, data[:len(reencoded)]) {
			t.Fatalf("round trip mismatch: %v -> %v", data, reencoded)
		}
	})
}

// FuzzDecodeDebugFrame ensures the fixed-frame decoder tolerates
// arbitrary bytes.
func FuzzDecodeDebugFrame(f *testing.F) {
	var frame [DebugFrameSize]byte
	EncodeDebugFrame(frame[:], DebugFields{Theta: 1, Velocity: 2})
	f.Add(frame[:])
	f.Add([]byte{DebugSync})

	f.Fuzz(func(t *testing.T, data []byte) {
		fields, err := DecodeDebugFrame(data)
		if err != nil {
			return
		}
		if fields.Theta < 0 {
			t.Fatalf("decoded negative theta %v from unsigned field", fields.Theta)
		}
	})
}
