// Package meshsync hands committed positions from the stepping goroutine to
// display consumers.
//
// The writer copies a step's positions into a spare buffer without holding
// any lock, then swaps it in under a short exclusive section. Readers copy
// the current buffer under a shared lock. A reader therefore sees either the
// previous or the new step in full and never a partially written or resized
// array, and the writer never waits on a slow consumer's copy beyond that
// swap.
package meshsync

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is one object's positions after a given step.
type Frame struct {
	Step   uint64
	Points []mgl64.Vec3
}

type slot struct {
	pool  *PointPool
	frame Frame
}

// Channel holds the latest frame of every published object.
type Channel struct {
	mu    sync.RWMutex
	slots map[string]*slot
}

func NewChannel() *Channel {
	return &Channel{slots: make(map[string]*slot)}
}

// Publish makes points the current frame of name.
func (c *Channel) Publish(name string, step uint64, points []mgl64.Vec3) {
	c.mu.RLock()
	s := c.slots[name]
	c.mu.RUnlock()

	var pool *PointPool
	if s != nil && s.pool.Size() == len(points) {
		pool = s.pool
	} else {
		pool = NewPointPool(len(points))
	}
	buf := pool.GetAndCopy(points)

	c.mu.Lock()
	old, ok := c.slots[name]
	c.slots[name] = &slot{pool: pool, frame: Frame{Step: step, Points: buf}}
	c.mu.Unlock()

	if ok && old.pool == pool {
		pool.Put(old.frame.Points)
	}
}

// Read returns a copy of the current frame of name.
func (c *Channel) Read(name string) (Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.slots[name]
	if !ok {
		return Frame{}, false
	}
	pts := make([]mgl64.Vec3, len(s.frame.Points))
	copy(pts, s.frame.Points)
	return Frame{Step: s.frame.Step, Points: pts}, true
}

// ReadInto copies the current frame of name into dst, reusing its storage.
func (c *Channel) ReadInto(name string, dst []mgl64.Vec3) ([]mgl64.Vec3, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.slots[name]
	if !ok {
		return dst[:0], 0, false
	}
	n := len(s.frame.Points)
	if cap(dst) < n {
		dst = make([]mgl64.Vec3, n)
	}
	dst = dst[:n]
	copy(dst, s.frame.Points)
	return dst, s.frame.Step, true
}

func (c *Channel) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.slots))
	for n := range c.slots {
		names = append(names, n)
	}
	return names
}

func (c *Channel) Remove(name string) {
	c.mu.Lock()
	delete(c.slots, name)
	c.mu.Unlock()
}

// Reset drops every frame.
func (c *Channel) Reset() {
	c.mu.Lock()
	c.slots = make(map[string]*slot)
	c.mu.Unlock()
}
