// Package watcher detects registered elements leaving the live element tree.
//
// The observation mechanism belongs to the host (see element.Document); this
// package only turns "detached" notifications into a disposable, fire-once
// handle the form core can hold per field or radio option.
package watcher

import (
	"sync"

	"github.com/goliatone/go-formstate/pkg/element"
)

// Observer is the attachment observation capability a host supplies.
// Observe returns false when el cannot be observed; such elements are
// treated as never removed.
type Observer interface {
	Observe(el element.Element, onDetached func()) (element.Observation, bool)
}

// Handle tracks a single watched element. The removal callback fires at most
// once and never after Dispose.
type Handle struct {
	mu          sync.Mutex
	observation element.Observation
	fired       bool
	disposed    bool
}

// Watch starts observing el. A nil observer, a nil element or an element the
// observer cannot track yields an inactive handle.
func Watch(obs Observer, el element.Element, onRemoved func()) *Handle {
	h := &Handle{}
	if obs == nil || el == nil || onRemoved == nil {
		return h
	}

	observation, ok := obs.Observe(el, func() {
		if h.claim() {
			onRemoved()
		}
	})
	if !ok {
		return h
	}

	h.mu.Lock()
	done := h.fired || h.disposed
	if !done {
		h.observation = observation
	}
	h.mu.Unlock()
	if done {
		observation.Disconnect()
	}
	return h
}

func (h *Handle) claim() bool {
	h.mu.Lock()
	if h.fired || h.disposed {
		h.mu.Unlock()
		return false
	}
	h.fired = true
	observation := h.observation
	h.observation = nil
	h.mu.Unlock()

	if observation != nil {
		observation.Disconnect()
	}
	return true
}

// Active reports whether the handle is still observing.
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.observation != nil && !h.fired && !h.disposed
}

// Dispose stops observation. It is safe to call more than once and on a nil
// handle.
func (h *Handle) Dispose() {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	observation := h.observation
	h.observation = nil
	h.mu.Unlock()

	if observation != nil {
		observation.Disconnect()
	}
}
