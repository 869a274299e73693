package telemetry

import (
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"servofw/protocol"
)

type stats struct {
	Mode     string
	Velocity float32
	Faulted  bool
}

func TestRegistrySnapshot(t *testing.T) {
	reg := NewRegistry()

	current := stats{Mode: "pwm", Velocity: 2.5}
	reg.Register("servo_stats", func() any { return current })

	data, err := reg.Snapshot("servo_stats")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	var got stats
	if err := cbor.Unmarshal(data, &got); err != nil {
		t.Fatalf("cbor.Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, current) {
		t.Errorf("decoded snapshot = %+v, want %+v", got, current)
	}

	// Snapshots are live: the next call sees the new value.
	current.Velocity = -1
	data, err = reg.Snapshot("servo_stats")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if err := cbor.Unmarshal(data, &got); err != nil {
		t.Fatalf("cbor.Unmarshal: %v", err)
	}
	if got.Velocity != -1 {
		t.Errorf("velocity = %v, want -1", got.Velocity)
	}
}

func TestRegistryUnknownRecord(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Snapshot("nope"); err == nil {
		t.Error("unknown record did not error")
	}
	if _, err := reg.Packet("nope"); err == nil {
		t.Error("unknown record did not error")
	}
}

func TestRegistryNamesAndIDs(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"servo", "servo_stats", "servo_cmd", "servo_control"} {
		reg.Register(name, func() any { return 0 })
	}

	want := []string{"servo", "servo_cmd", "servo_control", "servo_stats"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	// Re-registering keeps the assigned wire id stable.
	id1, ok := reg.ID("servo_stats")
	if !ok {
		t.Fatal("servo_stats has no id")
	}
	reg.Register("servo_stats", func() any { return 1 })
	id2, _ := reg.ID("servo_stats")
	if id1 != id2 {
		t.Errorf("record id changed on re-register: %d -> %d", id1, id2)
	}
}

func TestRegistryPacket(t *testing.T) {
	reg := NewRegistry()
	reg.Register("servo_cmd", func() any { return stats{Mode: "position"} })

	packet, err := reg.Packet("servo_cmd")
	if err != nil {
		t.Fatalf("Packet: %v", err)
	}

	id, payload, err := protocol.DecodeTelemetryPacket(packet)
	if err != nil {
		t.Fatalf("DecodeTelemetryPacket: %v", err)
	}
	wantID, _ := reg.ID("servo_cmd")
	if id != wantID {
		t.Errorf("record id = %d, want %d", id, wantID)
	}

	var got stats
	if err := cbor.Unmarshal(payload, &got); err != nil {
		t.Fatalf("cbor.Unmarshal: %v", err)
	}
	if got.Mode != "position" {
		t.Errorf("mode = %q, want %q", got.Mode, "position")
	}
}
