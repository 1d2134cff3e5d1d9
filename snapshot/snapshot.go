// Package snapshot exports a point-in-time view of a graph's node values
// for debugging and test fixtures. It is a deliberate, bounded deviation
// from Ripple's "no persistence" rule: a Snapshot is never fed back into
// graph.Push, it only supports inspection. Export is reachable from the
// CLI's --snapshot flag and the HTTP server's GET /snapshot endpoint.
package snapshot

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/ripple/graph"
)

// NodeSnap is one node's value at the moment of export. Value is kept as
// its string rendering rather than the full tagged union, since
// value.Value's fields are unexported and rezi encodes only exported
// struct fields.
type NodeSnap struct {
	Name     string
	Kind     int
	Rank     int
	HasValue bool
	ValueTag string
	Value    string
}

// Snapshot is every node in a graph, in rank order, at one moment.
type Snapshot struct {
	Nodes []NodeSnap
}

func buildSnapshot(g *graph.Graph) Snapshot {
	snap := Snapshot{Nodes: make([]NodeSnap, 0, len(g.Order))}
	for _, name := range g.Order {
		n := g.Nodes[name]
		snap.Nodes = append(snap.Nodes, NodeSnap{
			Name:     n.Name,
			Kind:     int(n.Kind),
			Rank:     n.Rank,
			HasValue: n.HasValue,
			ValueTag: n.Cached.Tag().String(),
			Value:    n.Cached.String(),
		})
	}
	return snap
}

// Export serializes every node's current value into REZI's binary format.
func Export(g *graph.Graph) ([]byte, error) {
	snap := buildSnapshot(g)
	return rezi.EncBinary(snap), nil
}

// Inspect decodes a snapshot previously produced by Export.
func Inspect(data []byte) (Snapshot, error) {
	var snap Snapshot
	n, err := rezi.DecBinary(data, &snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	if n != len(data) {
		return Snapshot{}, fmt.Errorf("snapshot: decode: consumed %d/%d bytes", n, len(data))
	}
	return snap, nil
}

// Find returns the NodeSnap for name, if present.
func (s Snapshot) Find(name string) (NodeSnap, bool) {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSnap{}, false
}
