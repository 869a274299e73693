package protocol

import (
	"encoding/binary"
	"fmt"
)

// Telemetry packets carry a CBOR-encoded snapshot of one registered
// record. Wire layout, little-endian where multi-byte:
//
//	offset 0  u8   start byte (0x7E)
//	offset 1  u8   record id
//	offset 2  u16  payload length
//	offset 4  ...  payload (CBOR)
//	...       u16  CRC16 over bytes [1, 4+len)
const (
	TelemetryStart = 0x7E

	telemetryHeaderSize  = 4
	telemetryTrailerSize = 2

	// MaxTelemetryPayload bounds a packet so fixed receive buffers on
	// the far side cannot overflow.
	MaxTelemetryPayload = 1024
)

// EncodeTelemetryPacket frames a record snapshot for the wire.
func EncodeTelemetryPacket(recordID uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxTelemetryPayload {
		return nil, fmt.Errorf("telemetry payload too large: %d bytes (max %d)", len(payload), MaxTelemetryPayload)
	}

	packet := make([]byte, telemetryHeaderSize+len(payload)+telemetryTrailerSize)
	packet[0] = TelemetryStart
	packet[1] = recordID
	binary.LittleEndian.PutUint16(packet[2:4], uint16(len(payload)))
	copy(packet[telemetryHeaderSize:], payload)

	crc := CRC16(packet[1 : telemetryHeaderSize+len(payload)])
	binary.LittleEndian.PutUint16(packet[telemetryHeaderSize+len(payload):], crc)
	return packet, nil
}

// DecodeTelemetryPacket parses one framed packet, returning the record
// id and payload. The input must start at the start byte.
func DecodeTelemetryPacket(packet []byte) (recordID uint8, payload []byte, err error) {
	if len(packet) < telemetryHeaderSize+telemetryTrailerSize {
		return 0, nil, fmt.Errorf("telemetry packet too short: %d bytes", len(packet))
	}
	if packet[0] != TelemetryStart {
		return 0, nil, fmt.Errorf("bad telemetry start byte 0x%02X", packet[0])
	}

	n := int(binary.LittleEndian.Uint16(packet[2:4]))
	if n > MaxTelemetryPayload {
		return 0, nil, fmt.Errorf("telemetry payload length %d exceeds max %d", n, MaxTelemetryPayload)
	}
	if len(packet) < telemetryHeaderSize+n+telemetryTrailerSize {
		return 0, nil, fmt.Errorf("telemetry packet truncated: have %d bytes, need %d",
			len(packet), telemetryHeaderSize+n+telemetryTrailerSize)
	}

	want := binary.LittleEndian.Uint16(packet[telemetryHeaderSize+n:])
	got := CRC16(packet[1 : telemetryHeaderSize+n])
	if want != got {
		return 0, nil, fmt.Errorf("telemetry CRC mismatch: got 0x%04X, want 0x%04X", got, want)
	}

	return packet[1], packet[telemetryHeaderSize : telemetryHeaderSize+n], nil
}
