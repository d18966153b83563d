package session

import (
	"errors"
	"testing"
)

func TestRegistryInitialState(t *testing.T) {
	r := NewModuleRegistry()
	ids := r.IDs()
	if len(ids) != 10 {
		t.Fatalf("initial registry holds %d modules, want 10", len(ids))
	}
	for i, id := range ids {
		if id != uint8(i+1) {
			t.Errorf("ids[%d] = %d, want %d", i, id, i+1)
		}
	}
}

func TestRegistryFillToCapacity(t *testing.T) {
	r := NewModuleRegistry()

	// From the reset state {1..10}, adds 11..31 must all succeed.
	for id := uint8(11); id <= 31; id++ {
		if err := r.Add(id); err != nil {
			t.Fatalf("Add(%d) error = %v", id, err)
		}
	}
	if r.Len() != 31 {
		t.Fatalf("registry holds %d modules, want 31", r.Len())
	}

	// A 32nd module cannot exist: the ID field is 5 bits wide.
	if err := r.Add(31); !errors.Is(err, ErrRegistryFull) {
		t.Errorf("Add into full registry: error = %v, want ErrRegistryFull", err)
	}
}

func TestRegistryDuplicateAdd(t *testing.T) {
	r := NewModuleRegistry()
	if err := r.Add(5); !errors.Is(err, ErrRegistryFull) {
		t.Errorf("Add(5) duplicate: error = %v, want ErrRegistryFull", err)
	}
}

func TestRegistryBadID(t *testing.T) {
	r := NewModuleRegistry()
	for _, id := range []uint8{0, 32, 255} {
		if err := r.Add(id); !errors.Is(err, ErrBadModuleID) {
			t.Errorf("Add(%d): error = %v, want ErrBadModuleID", id, err)
		}
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewModuleRegistry()

	if err := r.Remove(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(99): error = %v, want ErrNotFound", err)
	}

	if err := r.Remove(5); err != nil {
		t.Fatalf("Remove(5) error = %v", err)
	}
	if r.Contains(5) {
		t.Error("registry still contains 5 after removal")
	}
	if r.Len() != 9 {
		t.Errorf("registry holds %d modules, want 9", r.Len())
	}

	// The freed ID can be re-added.
	if err := r.Add(5); err != nil {
		t.Errorf("re-Add(5) error = %v", err)
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewModuleRegistry()
	for id := uint8(11); id <= 31; id++ {
		if err := r.Add(id); err != nil {
			t.Fatalf("Add(%d) error = %v", id, err)
		}
	}

	r.Reset()
	if r.Len() != 10 {
		t.Fatalf("after reset registry holds %d modules, want 10", r.Len())
	}
	if r.Contains(11) {
		t.Error("module 11 survived reset")
	}
}

func TestRegistryIDsIsACopy(t *testing.T) {
	r := NewModuleRegistry()
	ids := r.IDs()
	ids[0] = 99
	if r.Contains(99) {
		t.Error("mutating the returned slice reached into the registry")
	}
}
