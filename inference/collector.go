package inference

import (
	"sync"

	G "gorgonia.org/gorgonia"
)

// Collector receives named scalar metric nodes as the trainer builds
// its objective. Callers read the collected nodes back after graph
// construction and evaluate them alongside the losses.
type Collector interface {
	// Scalar records a scalar metric node under tag
	Scalar(tag string, n *G.Node)
}

// Metrics is an in-memory Collector keyed by tag. Later records under
// the same tag replace earlier ones.
type Metrics struct {
	mu    sync.Mutex
	nodes map[string]*G.Node
}

// NewMetrics returns an empty Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{nodes: make(map[string]*G.Node)}
}

// Scalar records a scalar metric node under tag
func (m *Metrics) Scalar(tag string, n *G.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes[tag] = n
}

// Get returns the node recorded under tag, or nil
func (m *Metrics) Get(tag string) *G.Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nodes[tag]
}

// Tags returns every recorded tag
func (m *Metrics) Tags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make([]string, 0, len(m.nodes))
	for tag := range m.nodes {
		tags = append(tags, tag)
	}

	return tags
}
