// Package monitor decodes the drive's debug stream on the host: a
// continuous sequence of fixed 12-byte frames emitted once per control
// tick. The stream has no framing beyond the sync byte, so the decoder
// resynchronizes by scanning whenever a frame fails to parse.
package monitor

import (
	"bufio"
	"io"
	"time"

	"servofw/protocol"
)

// Sample is one decoded debug frame with its host-side arrival time.
type Sample struct {
	At time.Time `json:"at"`

	Theta        float32 `json:"theta"`
	IDCommand    float32 `json:"idCommand"`
	DMeasured    float32 `json:"dMeasured"`
	PidDP        float32 `json:"pidDP"`
	PidDIntegral float32 `json:"pidDIntegral"`
	DVCommand    float32 `json:"dVCommand"`
	Velocity     float32 `json:"velocity"`
}

// Decoder reads debug frames from a byte stream.
type Decoder struct {
	r       *bufio.Reader
	resyncs int
}

// NewDecoder wraps r; r is buffered internally.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 4096)}
}

// Resyncs reports how many bytes were skipped while hunting for sync.
func (d *Decoder) Resyncs() int {
	return d.resyncs
}

// Next returns the next decoded sample, scanning past garbage until a
// sync byte lines up. It returns the reader's error at end of stream.
func (d *Decoder) Next() (Sample, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return Sample{}, err
		}
		if b != protocol.DebugSync {
			d.resyncs++
			continue
		}

		var frame [protocol.DebugFrameSize]byte
		frame[0] = b
		if _, err := io.ReadFull(d.r, frame[1:]); err != nil {
			return Sample{}, err
		}

		fields, err := protocol.DecodeDebugFrame(frame[:])
		if err != nil {
			// Cannot happen after the sync check, but resync
			// rather than trust it.
			d.resyncs++
			continue
		}

		return Sample{
			At:           time.Now(),
			Theta:        fields.Theta,
			IDCommand:    fields.IDCommand,
			DMeasured:    fields.DMeasured,
			PidDP:        fields.PidDP,
			PidDIntegral: fields.PidDIntegral,
			DVCommand:    fields.DVCommand,
			Velocity:     fields.Velocity,
		}, nil
	}
}
