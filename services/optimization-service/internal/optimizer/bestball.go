package optimizer

import (
	"fmt"
	"math"
	"sort"
)

// PointScale converts fantasy points into integer edge costs. Two decimal places of
// precision survive path-cost accumulation without float drift.
const PointScale = 1_000_000

// Request size limits. With |points| <= MaxAbsPoints every edge cost stays within 1e15 and
// no residual path or total cost can leave the int64 range.
const (
	MaxPlayers       = 500
	MaxSlotInstances = 500
	MaxAbsPoints     = 1e9
)

// Player is one roster member eligible for a starting slot
type Player struct {
	ID       int64  `json:"id"`
	Position string `json:"position"`
}

// LineupRequest is the input to OptimizeLineup. Players absent from Points score 0 and
// slot types absent from SlotCounts are treated as count 0.
type LineupRequest struct {
	SlotCounts map[SlotType]int  `json:"slot_counts"`
	Players    []Player          `json:"players"`
	Points     map[int64]float64 `json:"points"`
}

// LineupAssignment is the optimal starter/bench split. Starters holds every starter slot
// type as a key, empty when nothing was assigned.
type LineupAssignment struct {
	Starters    map[SlotType][]int64 `json:"starters"`
	Bench       []int64              `json:"bench"`
	Filled      int                  `json:"filled"`
	Configured  int                  `json:"configured"`
	TotalPoints float64              `json:"total_points"`
}

// Complete reports whether every configured starter slot instance received a player
func (a *LineupAssignment) Complete() bool {
	return a.Filled == a.Configured
}

// SlotInstance is one unit of capacity carved out of a slot type's count
type SlotInstance struct {
	Slot  SlotType
	Index int
}

// matchEdge records a player→slot edge so its flow can be read after solving
type matchEdge struct {
	edge     int
	playerID int64
	slot     SlotType
}

// LineupNetwork is a built but unsolved assignment network plus the bookkeeping needed to
// map node and edge indices back to players and slots.
type LineupNetwork struct {
	Network   *FlowNetwork
	Source    int
	Sink      int
	Players   []Player
	Instances []SlotInstance

	matches []matchEdge
}

// Validate checks the preconditions the network construction relies on: unique player ids,
// non-negative slot counts from the catalog, bounded request size, and finite point values
// no larger than MaxAbsPoints.
func (r LineupRequest) Validate() error {
	if len(r.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d players, limit %d", ErrLineupTooLarge, len(r.Players), MaxPlayers)
	}

	total := 0
	for slot, count := range r.SlotCounts {
		if !slot.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownSlotType, int(slot))
		}
		if count < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeSlotCount, slot, count)
		}
		// Each count is bounded before summing so the total cannot overflow.
		if count > MaxSlotInstances {
			return fmt.Errorf("%w: %s=%d, limit %d", ErrLineupTooLarge, slot, count, MaxSlotInstances)
		}
		if IsStarterSlot(slot) {
			total += count
		}
	}
	if total > MaxSlotInstances {
		return fmt.Errorf("%w: %d starter slots, limit %d", ErrLineupTooLarge, total, MaxSlotInstances)
	}

	seen := make(map[int64]struct{}, len(r.Players))
	for _, p := range r.Players {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	for id, pts := range r.Points {
		if math.IsNaN(pts) || math.IsInf(pts, 0) || math.Abs(pts) > MaxAbsPoints {
			return fmt.Errorf("%w: player %d has %v", ErrInvalidPoints, id, pts)
		}
	}
	return nil
}

// ExpandSlotInstances turns slot counts into slot instances in canonical starter order.
// Reserve slot counts are ignored.
func ExpandSlotInstances(counts map[SlotType]int) []SlotInstance {
	var instances []SlotInstance
	for _, slot := range starterOrder {
		for i := 0; i < counts[slot]; i++ {
			instances = append(instances, SlotInstance{Slot: slot, Index: i})
		}
	}
	return instances
}

// BuildLineupNetwork validates the request and wires the assignment network:
// source → player (cap 1, cost 0), player → eligible slot instance (cap 1,
// cost -points·PointScale), slot instance → sink (cap 1, cost 0).
// It returns a nil network when no starter slot is configured.
func BuildLineupNetwork(req LineupRequest) (*LineupNetwork, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	players := sortedPlayers(req.Players)
	instances := ExpandSlotInstances(req.SlotCounts)
	if len(instances) == 0 {
		return nil, nil
	}

	// Node layout: 0 = source, 1..P = players, P+1..P+S = slot instances, P+S+1 = sink.
	p, s := len(players), len(instances)
	source, sink := 0, p+s+1
	g := NewFlowNetwork(p + s + 2)

	ln := &LineupNetwork{
		Network:   g,
		Source:    source,
		Sink:      sink,
		Players:   players,
		Instances: instances,
	}

	for i := range players {
		if _, err := g.AddEdge(source, 1+i, 1, 0); err != nil {
			return nil, err
		}
	}
	for j := range instances {
		if _, err := g.AddEdge(1+p+j, sink, 1, 0); err != nil {
			return nil, err
		}
	}
	for i, player := range players {
		cost := int64(math.Round(-req.Points[player.ID] * PointScale))
		for j, inst := range instances {
			if !CanFill(player.Position, inst.Slot) {
				continue
			}
			idx, err := g.AddEdge(1+i, 1+p+j, 1, cost)
			if err != nil {
				return nil, err
			}
			ln.matches = append(ln.matches, matchEdge{edge: idx, playerID: player.ID, slot: inst.Slot})
		}
	}

	return ln, nil
}

// Solve runs min-cost max-flow with one unit per slot instance
func (ln *LineupNetwork) Solve() (FlowResult, error) {
	return ln.Network.MinCostMaxFlow(ln.Source, ln.Sink, int64(len(ln.Instances)))
}

// Extract reads saturated player→slot edges from the solved network
func (ln *LineupNetwork) Extract(points map[int64]float64) *LineupAssignment {
	out := newAssignment(len(ln.Instances))

	matched := make(map[int64]bool, len(ln.Instances))
	for _, m := range ln.matches {
		if ln.Network.ResidualCapacity(m.edge) != 0 {
			continue
		}
		out.Starters[m.slot] = append(out.Starters[m.slot], m.playerID)
		matched[m.playerID] = true
		out.Filled++
		out.TotalPoints += points[m.playerID]
	}
	for slot := range out.Starters {
		sortIDs(out.Starters[slot])
	}

	// ln.Players is already id-sorted
	for _, p := range ln.Players {
		if !matched[p.ID] {
			out.Bench = append(out.Bench, p.ID)
		}
	}
	return out
}

// OptimizeLineup returns the points-maximizing starter assignment. Unfillable slots are not
// an error: they show up as short or empty starter lists and Filled < Configured.
func OptimizeLineup(req LineupRequest) (*LineupAssignment, error) {
	ln, err := BuildLineupNetwork(req)
	if err != nil {
		return nil, err
	}

	if ln == nil {
		out := newAssignment(0)
		for _, p := range sortedPlayers(req.Players) {
			out.Bench = append(out.Bench, p.ID)
		}
		return out, nil
	}

	if _, err := ln.Solve(); err != nil {
		return nil, fmt.Errorf("solve lineup network: %w", err)
	}
	return ln.Extract(req.Points), nil
}

func newAssignment(configured int) *LineupAssignment {
	starters := make(map[SlotType][]int64, len(starterOrder))
	for _, slot := range starterOrder {
		starters[slot] = []int64{}
	}
	return &LineupAssignment{
		Starters:   starters,
		Bench:      []int64{},
		Configured: configured,
	}
}

func sortedPlayers(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
