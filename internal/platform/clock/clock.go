// Package clock provides an injectable time source so time-dependent logic
// stays deterministic under test.
package clock

import "time"

// Clock abstracts the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// NewSystem creates a wall-clock implementation.
func NewSystem() System { return System{} }

// Now returns the current time in UTC.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }
