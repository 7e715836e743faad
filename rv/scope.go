package rv

import (
	"fmt"
	"sync/atomic"

	"github.com/mehrdaad/edward"
)

// Scope is a namespace for one batch of related draws. Sub-expressions
// copied under different scopes never alias each other: node names are
// derived from the scope name, sampling ops mix the scope's draw
// counter into their random streams, and the counter is local to the
// root scope so that two identical top-level calls replay the same
// draw positions.
type Scope struct {
	name string
	ctr  *uint64
}

// NewScope returns a fresh root scope. The name is uniquified so that
// repeated root scopes never share node names.
func NewScope(name string) *Scope {
	return &Scope{
		name: edward.NextName(name),
		ctr:  new(uint64),
	}
}

// Sub returns a child scope of the receiver. Children share the root's
// draw counter.
func (s *Scope) Sub(prefix string) *Scope {
	n := atomic.AddUint64(s.ctr, 1)

	return &Scope{
		name: fmt.Sprintf("%v/%v_%v", s.name, prefix, n),
		ctr:  s.ctr,
	}
}

// Name returns the fully qualified scope name
func (s *Scope) Name() string { return s.name }

// draw allocates the next draw position within the root scope
func (s *Scope) draw() uint64 {
	return atomic.AddUint64(s.ctr, 1)
}

// mixSeed derives the seed for a single draw from a distribution seed
// and the draw's position within its root scope. Splitmix-style
// scrambling keeps nearby positions decorrelated.
func mixSeed(seed, position uint64) uint64 {
	z := seed + position*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb

	return z ^ (z >> 31)
}
