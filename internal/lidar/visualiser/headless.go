package visualiser

import (
	"errors"
	"sync"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/pipeline"
)

// Headless is a Renderer with no output. It keeps the latest point set so
// other surfaces (the monitor, tests) can read what would have been drawn.
type Headless struct {
	mu         sync.Mutex
	current    *lidar.PointSet
	registered bool
	closed     bool
	updates    int
	renders    int
}

var _ pipeline.Renderer = (*Headless)(nil)

// NewHeadless returns an empty headless renderer.
func NewHeadless() *Headless { return &Headless{} }

// Register implements pipeline.Renderer.
func (h *Headless) Register(ps *lidar.PointSet) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.registered {
		return ErrAlreadyRegistered
	}
	h.registered = true
	h.current = ps
	return nil
}

// Update implements pipeline.Renderer.
func (h *Headless) Update(ps *lidar.PointSet) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.registered {
		return ErrNotRegistered
	}
	h.current = ps
	h.updates++
	return nil
}

// Render implements pipeline.Renderer.
func (h *Headless) Render() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return pipeline.ErrWindowClosed
	}
	h.renders++
	return nil
}

// Close implements pipeline.Renderer.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Current returns the most recently registered or updated point set.
func (h *Headless) Current() *lidar.PointSet {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Counts returns the number of updates and renders seen.
func (h *Headless) Counts() (updates, renders int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updates, h.renders
}

// Multi fans every call out to several renderers. Register, Update and
// Render stop at the first error; Close always closes every renderer and
// joins their errors.
type Multi []pipeline.Renderer

var _ pipeline.Renderer = Multi(nil)

// Register implements pipeline.Renderer.
func (m Multi) Register(ps *lidar.PointSet) error {
	for _, r := range m {
		if err := r.Register(ps); err != nil {
			return err
		}
	}
	return nil
}

// Update implements pipeline.Renderer.
func (m Multi) Update(ps *lidar.PointSet) error {
	for _, r := range m {
		if err := r.Update(ps); err != nil {
			return err
		}
	}
	return nil
}

// Render implements pipeline.Renderer.
func (m Multi) Render() error {
	for _, r := range m {
		if err := r.Render(); err != nil {
			return err
		}
	}
	return nil
}

// Close implements pipeline.Renderer.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
