package dataset

import (
	"sync"
	"sync/atomic"
)

// Source produces a fresh Dataset.
type Source interface {
	Load() (*Dataset, error)
}

// Holder publishes the current Dataset to concurrent readers. Reloads are
// serialized; readers keep the previous generation until the swap.
type Holder struct {
	src Source
	mu  sync.Mutex
	cur atomic.Pointer[Dataset]
}

// NewHolder creates an empty Holder. The first Get loads from src.
func NewHolder(src Source) *Holder {
	return &Holder{src: src}
}

// Get returns the current dataset, loading it on first use.
func (h *Holder) Get() (*Dataset, error) {
	if d := h.cur.Load(); d != nil {
		return d, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if d := h.cur.Load(); d != nil {
		return d, nil
	}
	return h.loadLocked()
}

// Reload replaces the current dataset. On error the previous generation stays.
func (h *Holder) Reload() (*Dataset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked()
}

// Set publishes d directly.
func (h *Holder) Set(d *Dataset) {
	h.mu.Lock()
	h.cur.Store(d)
	h.mu.Unlock()
}

func (h *Holder) loadLocked() (*Dataset, error) {
	d, err := h.src.Load()
	if err != nil {
		return nil, err
	}
	h.cur.Store(d)
	return d, nil
}
