package optimizer

import "fmt"

// FlowEdge is one directed residual edge. Rev is the arena index of its paired edge.
type FlowEdge struct {
	From     int
	To       int
	Capacity int64
	Cost     int64
	Rev      int
}

// FlowNetwork is a residual flow graph stored as an edge arena. Every forward edge added
// with AddEdge has a reverse edge with zero capacity and negated cost.
type FlowNetwork struct {
	edges []FlowEdge
	adj   [][]int
}

// NewFlowNetwork creates a network with nodes 0..nodes-1 and no edges
func NewFlowNetwork(nodes int) *FlowNetwork {
	if nodes < 0 {
		nodes = 0
	}
	return &FlowNetwork{adj: make([][]int, nodes)}
}

// NodeCount returns the number of nodes
func (g *FlowNetwork) NodeCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of arena entries, reverse edges included
func (g *FlowNetwork) EdgeCount() int {
	return len(g.edges)
}

// AddEdge adds from→to with the given capacity and cost and returns the forward edge index.
func (g *FlowNetwork) AddEdge(from, to int, capacity, cost int64) (int, error) {
	if from < 0 || from >= len(g.adj) || to < 0 || to >= len(g.adj) {
		return -1, fmt.Errorf("%w: %d→%d with %d nodes", ErrNodeOutOfRange, from, to, len(g.adj))
	}
	if capacity < 0 {
		return -1, fmt.Errorf("%w: %d→%d capacity %d", ErrNegativeCapacity, from, to, capacity)
	}

	fwd := len(g.edges)
	rev := fwd + 1
	g.edges = append(g.edges,
		FlowEdge{From: from, To: to, Capacity: capacity, Cost: cost, Rev: rev},
		FlowEdge{From: to, To: from, Capacity: 0, Cost: -cost, Rev: fwd},
	)
	g.adj[from] = append(g.adj[from], fwd)
	g.adj[to] = append(g.adj[to], rev)
	return fwd, nil
}

// Edge returns a copy of the arena entry at idx
func (g *FlowNetwork) Edge(idx int) FlowEdge {
	return g.edges[idx]
}

// ResidualCapacity returns the remaining capacity of the edge at idx
func (g *FlowNetwork) ResidualCapacity(idx int) int64 {
	return g.edges[idx].Capacity
}

// Flow returns the flow carried by the forward edge at idx, read from its reverse edge
func (g *FlowNetwork) Flow(idx int) int64 {
	return g.edges[g.edges[idx].Rev].Capacity
}
