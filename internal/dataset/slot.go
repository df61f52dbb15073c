package dataset

import "sync/atomic"

// Slot holds the current dataset version. Store swaps in a whole new
// version; Load hands back whatever version is current, so a request that
// loads once keeps a consistent view even while an upload replaces it.
// The zero value is an empty slot.
type Slot struct {
	current atomic.Pointer[Dataset]
}

// Load returns the current dataset, or nil before the first upload.
func (s *Slot) Load() *Dataset {
	return s.current.Load()
}

// Store makes ds the current dataset.
func (s *Slot) Store(ds *Dataset) {
	s.current.Store(ds)
}
