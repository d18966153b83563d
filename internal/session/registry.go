package session

import (
	"errors"
	"fmt"
)

// Module registry limits. Slave IDs live in a 5-bit field, so at most 31
// modules (1..31) can exist per channel.
const (
	MinModuleID = 1
	MaxModuleID = 31

	// initialModuleCount is how many modules a freshly reset registry
	// holds (IDs 1..10), matching the power rack's factory population.
	initialModuleCount = 10
)

// Registry operation failures, surfaced to the operator as rejected
// operations rather than propagated exceptions.
var (
	// ErrRegistryFull reports an Add against a full registry or an ID
	// that is already registered.
	ErrRegistryFull = errors.New("module registry full")

	// ErrNotFound reports a Remove for an ID that is not registered.
	ErrNotFound = errors.New("module not found")

	// ErrBadModuleID reports an ID outside the 5-bit range 1..31.
	ErrBadModuleID = errors.New("module id out of range")
)

// ModuleRegistry is the ordered set of slave module IDs configured on one
// channel. It feeds the current-summation display: only registered modules
// contribute to the system current total.
//
// The registry is not synchronized; the owning Session serializes access.
type ModuleRegistry struct {
	ids []uint8
}

// NewModuleRegistry returns a registry in its initial state, IDs 1..10.
func NewModuleRegistry() *ModuleRegistry {
	r := &ModuleRegistry{}
	r.Reset()
	return r
}

// Add registers a module ID. It fails with ErrBadModuleID outside 1..31,
// and with ErrRegistryFull when the registry already holds 31 entries or
// the ID is already present.
func (r *ModuleRegistry) Add(id uint8) error {
	if id < MinModuleID || id > MaxModuleID {
		return fmt.Errorf("%w: %d (want 1..31)", ErrBadModuleID, id)
	}
	if len(r.ids) >= MaxModuleID {
		return fmt.Errorf("%w: %d modules registered", ErrRegistryFull, len(r.ids))
	}
	if r.Contains(id) {
		return fmt.Errorf("%w: id %d already registered", ErrRegistryFull, id)
	}
	r.ids = append(r.ids, id)
	return nil
}

// Remove deregisters a module ID, failing with ErrNotFound when absent.
func (r *ModuleRegistry) Remove(id uint8) error {
	for i, v := range r.ids {
		if v == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// Reset restores the initial population {1..10} unconditionally.
func (r *ModuleRegistry) Reset() {
	r.ids = r.ids[:0]
	for id := uint8(MinModuleID); id <= initialModuleCount; id++ {
		r.ids = append(r.ids, id)
	}
}

// Contains reports whether id is registered.
func (r *ModuleRegistry) Contains(id uint8) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the registered IDs in registration order.
func (r *ModuleRegistry) IDs() []uint8 {
	out := make([]uint8, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered modules.
func (r *ModuleRegistry) Len() int {
	return len(r.ids)
}
