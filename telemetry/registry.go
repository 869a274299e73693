// Package telemetry provides the named-record registry consumed by
// external persistence and telemetry transports. Components register a
// snapshot function under a stable name; the registry encodes
// snapshots as CBOR and frames them for the wire.
package telemetry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"servofw/protocol"
)

// Registry maps record names to snapshot functions. Registration
// happens at startup; snapshots are taken from the foreground, never
// from interrupt context.
type Registry struct {
	mu      sync.RWMutex
	records map[string]func() any
	ids     map[string]uint8
	nextID  uint8
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]func() any),
		ids:     make(map[string]uint8),
	}
}

// Register adds a record under name. Registering the same name again
// replaces the snapshot function but keeps the record id stable.
func (r *Registry) Register(name string, snapshot func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[name]; !ok {
		r.ids[name] = r.nextID
		r.nextID++
	}
	r.records[name] = snapshot
}

// Names returns the registered record names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ID returns the wire record id assigned to name.
func (r *Registry) ID(name string) (uint8, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[name]
	return id, ok
}

// Snapshot takes the current value of a record and encodes it as CBOR.
func (r *Registry) Snapshot(name string) ([]byte, error) {
	r.mu.RLock()
	snapshot, ok := r.records[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown telemetry record %q", name)
	}

	data, err := cbor.Marshal(snapshot())
	if err != nil {
		return nil, fmt.Errorf("encoding telemetry record %q: %w", name, err)
	}
	return data, nil
}

// Packet takes a snapshot and frames it as a telemetry packet ready
// for transmission.
func (r *Registry) Packet(name string) ([]byte, error) {
	payload, err := r.Snapshot(name)
	if err != nil {
		return nil, err
	}

	id, ok := r.ID(name)
	if !ok {
		return nil, fmt.Errorf("unknown telemetry record %q", name)
	}
	return protocol.EncodeTelemetryPacket(id, payload)
}
