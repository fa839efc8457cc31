// Package viewer implements the artwork modal as an explicit state machine.
package viewer

import (
	"fmt"

	"github.com/starford/designa/internal/apperr"
)

// State is either Closed or Open. The set of implementations is closed.
type State interface {
	isState()
}

// Closed means no artwork is shown. ListOpen reports whether the
// "all artworks" overlay is visible.
type Closed struct {
	ListOpen bool
}

// Open shows one artwork. ReturnToList remembers that the artwork was
// picked from the overlay, so closing goes back to it.
type Open struct {
	ArtworkID    int
	SubImage     int
	ReturnToList bool
}

func (Closed) isState() {}
func (Open) isState()   {}

// Direction of a navigation step.
type Direction int

const (
	Next Direction = iota + 1
	Prev
)

// ParseDirection parses "next" or "prev".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "next":
		return Next, nil
	case "prev":
		return Prev, nil
	}
	return 0, fmt.Errorf("direction %q: %w", s, apperr.ErrInvalidInput)
}

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Prev:
		return "prev"
	}
	return "unknown"
}

// Policy decides what artwork navigation does at the edges of the list.
type Policy string

const (
	// PolicyStop makes navigation past either edge a no-op.
	PolicyStop Policy = "stop"
	// PolicyWrap moves from the last artwork to the first and back.
	PolicyWrap Policy = "wrap"
)

// ParsePolicy parses a configured policy. Empty means PolicyStop.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyStop:
		return PolicyStop, nil
	case PolicyWrap:
		return PolicyWrap, nil
	}
	return "", fmt.Errorf("navigation policy %q: %w", s, apperr.ErrInvalidInput)
}

// step returns the index reached from i in a list of n items, and whether
// the move happened.
func (p Policy) step(i, n int, d Direction) (int, bool) {
	if n == 0 || i < 0 || i >= n {
		return i, false
	}
	j := i + 1
	if d == Prev {
		j = i - 1
	}
	if j >= 0 && j < n {
		return j, true
	}
	if p != PolicyWrap || n == 1 {
		return i, false
	}
	return (j + n) % n, true
}

// cycle moves i within [0, n) with wraparound in both directions.
func cycle(i, n int, d Direction) int {
	if n <= 0 {
		return 0
	}
	if d == Prev {
		return (i - 1 + n) % n
	}
	return (i + 1) % n
}
