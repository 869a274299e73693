package protocol

import (
	"bytes"
	"testing"
)

func TestTelemetryPacketRoundTrip(t *testing.T) {
	payload := []byte{0x82, 0x01, 0xA1, 0x00, 0x18, 0x2A}

	packet, err := EncodeTelemetryPacket(3, payload)
	if err != nil {
		t.Fatalf("EncodeTelemetryPacket: %v", err)
	}
	if packet[0] != TelemetryStart {
		t.Errorf("start byte = 0x%02X, want 0x%02X", packet[0], TelemetryStart)
	}

	id, got, err := DecodeTelemetryPacket(packet)
	if err != nil {
		t.Fatalf("DecodeTelemetryPacket: %v", err)
	}
	if id != 3 {
		t.Errorf("record id = %d, want 3", id)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %v, want %v", got, payload)
	}
}

func TestTelemetryPacketEmptyPayload(t *testing.T) {
	packet, err := EncodeTelemetryPacket(0, nil)
	if err != nil {
		t.Fatalf("EncodeTelemetryPacket: %v", err)
	}

	id, payload, err := DecodeTelemetryPacket(packet)
	if err != nil {
		t.Fatalf("DecodeTelemetryPacket: %v", err)
	}
	if id != 0 || len(payload) != 0 {
		t.Errorf("decoded (id %d, %d payload bytes), want (0, 0)", id, len(payload))
	}
}

func TestTelemetryPacketCorruption(t *testing.T) {
	packet, err := EncodeTelemetryPacket(1, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeTelemetryPacket: %v", err)
	}

	corrupt := append([]byte(nil), packet...)
	corrupt[5] ^= 0xFF
	if _, _, err := DecodeTelemetryPacket(corrupt); err == nil {
		t.Error("corrupted payload passed CRC")
	}

	truncated := packet[:len(packet)-1]
	if _, _, err := DecodeTelemetryPacket(truncated); err == nil {
		t.Error("truncated packet accepted")
	}

	bad := append([]byte(nil), packet...)
	bad[0] = 0x00
	if _, _, err := DecodeTelemetryPacket(bad); err == nil {
		t.Error("bad start byte accepted")
	}
}

func TestTelemetryPacketTooLarge(t *testing.T) {
	if _, err := EncodeTelemetryPacket(0, make([]byte, MaxTelemetryPayload+1)); err == nil {
		t.Error("oversize payload accepted")
	}
}
