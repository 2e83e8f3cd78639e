package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MinCostFlowSuite exercises the SPFA min-cost max-flow solver on hand-built networks.
type MinCostFlowSuite struct {
	suite.Suite
}

func (s *MinCostFlowSuite) mustAdd(g *FlowNetwork, from, to int, capacity, cost int64) int {
	idx, err := g.AddEdge(from, to, capacity, cost)
	require.NoError(s.T(), err)
	return idx
}

// TestSingleEdge verifies flow is limited by the edge capacity.
func (s *MinCostFlowSuite) TestSingleEdge() {
	g := NewFlowNetwork(2)
	idx := s.mustAdd(g, 0, 1, 7, 3)

	res, err := g.MinCostMaxFlow(0, 1, 100)
	require.NoError(s.T(), err)
	s.Equal(int64(7), res.Flow)
	s.Equal(int64(21), res.Cost)
	s.Equal(1, res.Augmentations)
	s.Equal(int64(0), g.ResidualCapacity(idx), "forward edge should be saturated")
	s.Equal(int64(7), g.Flow(idx), "reverse edge should carry the flow")
}

// TestMaxFlowCapsBottleneck checks that maxFlow limits a wide path.
func (s *MinCostFlowSuite) TestMaxFlowCapsBottleneck() {
	g := NewFlowNetwork(3)
	s.mustAdd(g, 0, 1, 10, 1)
	s.mustAdd(g, 1, 2, 10, 1)

	res, err := g.MinCostMaxFlow(0, 2, 4)
	require.NoError(s.T(), err)
	s.Equal(int64(4), res.Flow)
	s.Equal(int64(8), res.Cost)
}

// TestPrefersCheaperPath verifies the cheaper of two parallel routes is used first.
func (s *MinCostFlowSuite) TestPrefersCheaperPath() {
	// 0→1→3 costs 5, 0→2→3 costs 2; each carries one unit.
	g := NewFlowNetwork(4)
	s.mustAdd(g, 0, 1, 1, 4)
	s.mustAdd(g, 1, 3, 1, 1)
	cheap := s.mustAdd(g, 0, 2, 1, 1)
	s.mustAdd(g, 2, 3, 1, 1)

	res, err := g.MinCostMaxFlow(0, 3, 1)
	require.NoError(s.T(), err)
	s.Equal(int64(1), res.Flow)
	s.Equal(int64(2), res.Cost)
	s.Equal(int64(1), g.Flow(cheap))

	res, err = g.MinCostMaxFlow(0, 3, 1)
	require.NoError(s.T(), err)
	s.Equal(int64(1), res.Flow, "second call continues on the residual graph")
	s.Equal(int64(5), res.Cost)
}

// TestReroutesThroughReverseEdge covers an augmenting path that undoes earlier flow.
func (s *MinCostFlowSuite) TestReroutesThroughReverseEdge() {
	// source 0, left a=1 b=2, right x=3 y=4, sink 5
	g := NewFlowNetwork(6)
	s.mustAdd(g, 0, 1, 1, 0)
	s.mustAdd(g, 0, 2, 1, 0)
	ax := s.mustAdd(g, 1, 3, 1, -10)
	ay := s.mustAdd(g, 1, 4, 1, -9)
	bx := s.mustAdd(g, 2, 3, 1, -8)
	s.mustAdd(g, 3, 5, 1, 0)
	s.mustAdd(g, 4, 5, 1, 0)

	res, err := g.MinCostMaxFlow(0, 5, 2)
	require.NoError(s.T(), err)
	s.Equal(int64(2), res.Flow)
	s.Equal(int64(-17), res.Cost)
	s.Equal(2, res.Augmentations)
	s.Equal(int64(0), g.Flow(ax), "a→x is cancelled by the second augmentation")
	s.Equal(int64(1), g.Flow(ay))
	s.Equal(int64(1), g.Flow(bx))
}

// TestPartialFlowIsNotAnError verifies early termination when the sink becomes unreachable.
func (s *MinCostFlowSuite) TestPartialFlowIsNotAnError() {
	g := NewFlowNetwork(3)
	s.mustAdd(g, 0, 1, 2, -1)
	s.mustAdd(g, 1, 2, 1, -1)

	res, err := g.MinCostMaxFlow(0, 2, 5)
	require.NoError(s.T(), err)
	s.Equal(int64(1), res.Flow)
	s.Equal(int64(-2), res.Cost)
}

// TestDisconnectedSink yields zero flow.
func (s *MinCostFlowSuite) TestDisconnectedSink() {
	g := NewFlowNetwork(3)
	s.mustAdd(g, 0, 1, 1, 0)

	res, err := g.MinCostMaxFlow(0, 2, 1)
	require.NoError(s.T(), err)
	s.Equal(FlowResult{}, res)
}

// TestZeroMaxFlow performs no augmentation.
func (s *MinCostFlowSuite) TestZeroMaxFlow() {
	g := NewFlowNetwork(2)
	s.mustAdd(g, 0, 1, 1, -5)

	res, err := g.MinCostMaxFlow(0, 1, 0)
	require.NoError(s.T(), err)
	s.Equal(FlowResult{}, res)
}

// TestNegativeCycle is rejected instead of looping forever.
func (s *MinCostFlowSuite) TestNegativeCycle() {
	g := NewFlowNetwork(4)
	s.mustAdd(g, 0, 1, 1, 0)
	s.mustAdd(g, 1, 2, 1, -5)
	s.mustAdd(g, 2, 1, 1, 1)
	s.mustAdd(g, 2, 3, 1, 0)

	_, err := g.MinCostMaxFlow(0, 3, 1)
	s.ErrorIs(err, ErrNegativeCycle)
}

// TestInvalidArguments covers the argument errors.
func (s *MinCostFlowSuite) TestInvalidArguments() {
	g := NewFlowNetwork(2)

	_, err := g.AddEdge(0, 2, 1, 0)
	s.ErrorIs(err, ErrNodeOutOfRange)
	_, err = g.AddEdge(-1, 1, 1, 0)
	s.ErrorIs(err, ErrNodeOutOfRange)
	_, err = g.AddEdge(0, 1, -1, 0)
	s.ErrorIs(err, ErrNegativeCapacity)
	s.Equal(0, g.EdgeCount(), "rejected edges must not touch the arena")

	_, err = g.MinCostMaxFlow(5, 1, 1)
	s.ErrorIs(err, ErrNodeOutOfRange)
	_, err = g.MinCostMaxFlow(0, 9, 1)
	s.ErrorIs(err, ErrNodeOutOfRange)
	_, err = g.MinCostMaxFlow(1, 1, 1)
	s.ErrorIs(err, ErrSourceIsSink)
}

// TestReverseEdgeLayout checks the arena pairing convention.
func (s *MinCostFlowSuite) TestReverseEdgeLayout() {
	g := NewFlowNetwork(2)
	idx := s.mustAdd(g, 0, 1, 3, 4)

	fwd := g.Edge(idx)
	rev := g.Edge(fwd.Rev)
	s.Equal(2, g.EdgeCount())
	s.Equal(idx, rev.Rev)
	s.Equal(1, rev.From)
	s.Equal(0, rev.To)
	s.Equal(int64(0), rev.Capacity)
	s.Equal(int64(-4), rev.Cost)
}

func TestMinCostFlowSuite(t *testing.T) {
	suite.Run(t, new(MinCostFlowSuite))
}
