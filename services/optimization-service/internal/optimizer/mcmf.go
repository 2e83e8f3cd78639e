package optimizer

import (
	"fmt"
	"math"
)

const unreached = math.MaxInt64

// FlowResult is the outcome of a min-cost max-flow run
type FlowResult struct {
	Flow          int64 `json:"flow"`
	Cost          int64 `json:"cost"`
	Augmentations int   `json:"augmentations"`
}

// MinCostMaxFlow pushes up to maxFlow units from source to sink at minimum total cost
// using successive shortest augmenting paths. Residual capacities are updated in place.
//
// Steps:
//  1. Validate source and sink.
//  2. While flow < maxFlow:
//     a. SPFA (FIFO-queue Bellman-Ford) from source over edges with positive residual
//     capacity. Reverse edges carry negative cost, so Dijkstra is not usable here.
//     b. If sink is unreached, stop. Returning flow < maxFlow is not an error.
//     c. Walk parents back from sink to find the bottleneck, capped at maxFlow - flow.
//     d. Push the bottleneck along the path and account flow and cost.
//
// Complexity: O(F · V · E) worst case, where F is the number of augmentations.
func (g *FlowNetwork) MinCostMaxFlow(source, sink int, maxFlow int64) (FlowResult, error) {
	var res FlowResult

	// 1) Validate
	n := len(g.adj)
	if source < 0 || source >= n {
		return res, fmt.Errorf("%w: source %d", ErrNodeOutOfRange, source)
	}
	if sink < 0 || sink >= n {
		return res, fmt.Errorf("%w: sink %d", ErrNodeOutOfRange, sink)
	}
	if source == sink {
		return res, ErrSourceIsSink
	}

	dist := make([]int64, n)
	parentEdge := make([]int, n)
	inQueue := make([]bool, n)
	enqueued := make([]int, n)

	for res.Flow < maxFlow {
		// 2a) Shortest path by cost
		if err := g.spfa(source, dist, parentEdge, inQueue, enqueued); err != nil {
			return res, err
		}

		// 2b) No augmenting path left
		if dist[sink] == unreached {
			break
		}

		// 2c) Bottleneck
		bottleneck := maxFlow - res.Flow
		for v := sink; v != source; {
			e := &g.edges[parentEdge[v]]
			if e.Capacity < bottleneck {
				bottleneck = e.Capacity
			}
			v = e.From
		}

		// 2d) Augment
		for v := sink; v != source; {
			idx := parentEdge[v]
			g.edges[idx].Capacity -= bottleneck
			g.edges[g.edges[idx].Rev].Capacity += bottleneck
			v = g.edges[idx].From
		}

		res.Flow += bottleneck
		res.Cost += bottleneck * dist[sink]
		res.Augmentations++
	}

	return res, nil
}

// spfa fills dist and parentEdge with shortest residual-path costs from source.
// Nodes are relaxed in FIFO order and adjacency lists are scanned in insertion order, so
// among equal-cost paths the one discovered first is kept.
func (g *FlowNetwork) spfa(source int, dist []int64, parentEdge []int, inQueue []bool, enqueued []int) error {
	n := len(g.adj)
	for i := range dist {
		dist[i] = unreached
		parentEdge[i] = -1
		inQueue[i] = false
		enqueued[i] = 0
	}

	dist[source] = 0
	queue := make([]int, 0, n)
	queue = append(queue, source)
	inQueue[source] = true
	enqueued[source] = 1

	for head := 0; head < len(queue); head++ {
		u := queue[head]
		inQueue[u] = false

		for _, idx := range g.adj[u] {
			e := &g.edges[idx]
			if e.Capacity <= 0 {
				continue
			}
			candidate := dist[u] + e.Cost
			if candidate >= dist[e.To] {
				continue
			}
			dist[e.To] = candidate
			parentEdge[e.To] = idx
			if inQueue[e.To] {
				continue
			}
			// A node entering the queue n times means a negative cycle keeps lowering it.
			enqueued[e.To]++
			if enqueued[e.To] > n {
				return ErrNegativeCycle
			}
			queue = append(queue, e.To)
			inQueue[e.To] = true
		}
	}

	return nil
}
