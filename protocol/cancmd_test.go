package protocol

import (
	"math"
	"testing"
)

func TestCANCommandRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  CANCommand
		eps  float32
	}{
		{"stopped", CANCommand{Mode: CANModeStopped}, 0},
		{"pwm", CANCommand{Mode: CANModePwm, F1: 0.1, F2: 0.5, F3: 0.9}, 1.0 / 65535},
		{"voltage", CANCommand{Mode: CANModeVoltage, F1: 6, F2: -6, F3: 0}, 1.0 / 256},
		{"voltage_foc", CANCommand{Mode: CANModeVoltageFoc, F1: 1.5, F2: 4.0}, 1.0 / 256},
		{"current", CANCommand{Mode: CANModeCurrent, F1: 2.5, F2: -1.25}, 1.0 / 256},
		{"position", CANCommand{Mode: CANModePosition, F1: 2.0, F2: -0.5, F3: 8.0}, 1.0 / 256},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf [CANCommandSize]byte
			if err := EncodeCANCommand(buf[:], tc.cmd); err != nil {
				t.Fatalf("EncodeCANCommand: %v", err)
			}

			got, err := DecodeCANCommand(buf[:])
			if err != nil {
				t.Fatalf("DecodeCANCommand: %v", err)
			}

			if got.Mode != tc.cmd.Mode {
				t.Fatalf("mode = %d, want %d", got.Mode, tc.cmd.Mode)
			}
			for i, pair := range [][2]float32{
				{tc.cmd.F1, got.F1}, {tc.cmd.F2, got.F2}, {tc.cmd.F3, got.F3},
			} {
				if diff := math.Abs(float64(pair[0] - pair[1])); diff > float64(tc.eps) {
					t.Errorf("field %d = %v, want %v within %v", i+1, pair[1], pair[0], tc.eps)
				}
			}
		})
	}
}

func TestCANCommandAngleWraps(t *testing.T) {
	// Electrical angle is stored as a unit fraction, so any input
	// angle decodes back into [0, 2pi).
	var buf [CANCommandSize]byte
	err := EncodeCANCommand(buf[:], CANCommand{
		Mode: CANModeVoltageFoc,
		F1:   float32(5 * math.Pi), // 2.5 turns
		F2:   1,
	})
	if err != nil {
		t.Fatalf("EncodeCANCommand: %v", err)
	}

	got, err := DecodeCANCommand(buf[:])
	if err != nil {
		t.Fatalf("DecodeCANCommand: %v", err)
	}
	if got.F1 < 0 || got.F1 >= 2*math.Pi {
		t.Fatalf("angle = %v, want [0, 2pi)", got.F1)
	}
	if diff := math.Abs(float64(got.F1) - math.Pi); diff > 0.001 {
		t.Errorf("angle = %v, want about pi", got.F1)
	}
}

func TestCANCommandUnknownMode(t *testing.T) {
	var buf [CANCommandSize]byte
	if err := EncodeCANCommand(buf[:], CANCommand{Mode: 99}); err == nil {
		t.Error("unknown mode encoded without error")
	}

	buf[0] = 99
	if _, err := DecodeCANCommand(buf[:]); err == nil {
		t.Error("unknown mode decoded without error")
	}
}

func TestCANSetPositionRoundTrip(t *testing.T) {
	var buf [CANSetPositionSize]byte
	if err := EncodeCANSetPosition(buf[:], 2.5); err != nil {
		t.Fatalf("EncodeCANSetPosition: %v", err)
	}

	got, err := DecodeCANSetPosition(buf[:])
	if err != nil {
		t.Fatalf("DecodeCANSetPosition: %v", err)
	}
	if got != 2.5 {
		t.Errorf("position = %v, want 2.5", got)
	}
}
