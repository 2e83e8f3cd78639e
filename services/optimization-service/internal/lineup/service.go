package lineup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stitts-dev/bestball/services/optimization-service/internal/optimizer"
	"github.com/stitts-dev/bestball/shared/pkg/logger"
	"github.com/stitts-dev/bestball/shared/pkg/utils"
	"github.com/stitts-dev/bestball/shared/types"
)

// ErrMalformedRoster marks a roster whose contents cannot be turned into a lineup request
var ErrMalformedRoster = errors.New("malformed roster")

type LeagueConfigProvider interface {
	GetLeague(ctx context.Context, leagueID int64) (*League, error)
}

type RosterProvider interface {
	GetRoster(ctx context.Context, leagueID, rosterID int64) (*Roster, error)
	ListRosters(ctx context.Context, leagueID int64) ([]Roster, error)
}

type PointsProvider interface {
	GetPoints(ctx context.Context, leagueID int64, week int, mode types.ScoringMode, playerIDs []int64) (map[int64]float64, error)
}

type LineupStore interface {
	UpsertLineup(ctx context.Context, lineup *BestBallLineup) error
	GetLineup(ctx context.Context, rosterID int64, week int, mode types.ScoringMode) (*BestBallLineup, error)
}

// Store is everything the service reads and writes; *Repository satisfies it
type Store interface {
	LeagueConfigProvider
	RosterProvider
	PointsProvider
	LineupStore
}

// AssignmentCache memoizes solved assignments by request digest
type AssignmentCache interface {
	Get(ctx context.Context, key string) (*optimizer.LineupAssignment, bool)
	Set(ctx context.Context, key string, assignment *optimizer.LineupAssignment)
}

// KeyFunc derives a cache key from a validated request
type KeyFunc func(req optimizer.LineupRequest) string

// RosterLineup is the optimized lineup of one roster for one week and scoring mode
type RosterLineup struct {
	LeagueID    int64                       `json:"league_id"`
	RosterID    int64                       `json:"roster_id"`
	Week        int                         `json:"week"`
	Mode        types.ScoringMode           `json:"mode"`
	Assignment  *optimizer.LineupAssignment `json:"assignment"`
	Reserves    []types.ReserveAssignment   `json:"reserves"`
	Version     int                         `json:"version"`
	OptimizedAt time.Time                   `json:"optimized_at"`
}

// SkippedRoster is a roster left out of a league run, with the reason
type SkippedRoster struct {
	RosterID int64  `json:"roster_id"`
	Reason   string `json:"reason"`
}

// LeagueResult collects the lineups produced by one league run
type LeagueResult struct {
	LeagueID int64             `json:"league_id"`
	Week     int               `json:"week"`
	Mode     types.ScoringMode `json:"mode"`
	Lineups  []RosterLineup    `json:"lineups"`
	Skipped  []SkippedRoster   `json:"skipped"`
}

type Service struct {
	store       Store
	cache       AssignmentCache
	cacheKey    KeyFunc
	concurrency int
	logger      *logrus.Logger
	now         func() time.Time
}

// NewService wires the lineup service. cache may be nil; concurrency bounds how many
// rosters of one league are optimized at once.
func NewService(store Store, cache AssignmentCache, cacheKey KeyFunc, concurrency int, logger *logrus.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		store:       store,
		cache:       cache,
		cacheKey:    cacheKey,
		concurrency: concurrency,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Optimize solves one ad-hoc lineup request, consulting the cache first
func (s *Service) Optimize(ctx context.Context, req optimizer.LineupRequest) (*optimizer.LineupAssignment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil && s.cacheKey != nil {
		key = s.cacheKey(req)
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	start := time.Now()
	assignment, err := optimizer.OptimizeLineup(req)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"players":      len(req.Players),
		"filled":       assignment.Filled,
		"configured":   assignment.Configured,
		"total_points": assignment.TotalPoints,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Debug("Lineup optimized")

	if key != "" {
		s.cache.Set(ctx, key, assignment)
	}
	return assignment, nil
}

// OptimizeRoster loads one roster with its league configuration and points, solves its
// lineup and persists the result.
func (s *Service) OptimizeRoster(ctx context.Context, leagueID, rosterID int64, week int, mode types.ScoringMode) (*RosterLineup, error) {
	slotCounts, err := s.loadSlotCounts(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	roster, err := s.store.GetRoster(ctx, leagueID, rosterID)
	if err != nil {
		return nil, err
	}

	return s.optimizeLoadedRoster(ctx, slotCounts, roster, week, mode)
}

// OptimizeLeague optimizes every roster in the league with bounded concurrency. Malformed
// rosters are logged and reported as skipped; any other failure aborts the run.
func (s *Service) OptimizeLeague(ctx context.Context, leagueID int64, week int, mode types.ScoringMode) (*LeagueResult, error) {
	slotCounts, err := s.loadSlotCounts(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	rosters, err := s.store.ListRosters(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logger.LeagueFields(leagueID, week, string(mode)))
	start := time.Now()

	result := &LeagueResult{
		LeagueID: leagueID,
		Week:     week,
		Mode:     mode,
		Lineups:  []RosterLineup{},
		Skipped:  []SkippedRoster{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range rosters {
		roster := &rosters[i]
		g.Go(func() error {
			lineup, err := s.optimizeLoadedRoster(gctx, slotCounts, roster, week, mode)
			mu.Lock()
			defer mu.Unlock()

			if errors.Is(err, ErrMalformedRoster) || optimizer.IsInputError(err) {
				log.WithError(err).WithField("roster_id", roster.ID).Warn("Skipping malformed roster")
				result.Skipped = append(result.Skipped, SkippedRoster{RosterID: roster.ID, Reason: err.Error()})
				return nil
			}
			if err != nil {
				return fmt.Errorf("roster %d: %w", roster.ID, err)
			}
			result.Lineups = append(result.Lineups, *lineup)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Lineups, func(i, j int) bool { return result.Lineups[i].RosterID < result.Lineups[j].RosterID })
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].RosterID < result.Skipped[j].RosterID })

	log.WithFields(logrus.Fields{
		"rosters":     len(rosters),
		"optimized":   len(result.Lineups),
		"skipped":     len(result.Skipped),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("League lineups optimized")

	return result, nil
}

// GetLineup returns the stored lineup for a roster
func (s *Service) GetLineup(ctx context.Context, leagueID, rosterID int64, week int, mode types.ScoringMode) (*RosterLineup, error) {
	if _, err := s.store.GetRoster(ctx, leagueID, rosterID); err != nil {
		return nil, err
	}
	stored, err := s.store.GetLineup(ctx, rosterID, week, mode)
	if err != nil {
		return nil, err
	}
	return fromModel(stored)
}

func (s *Service) loadSlotCounts(ctx context.Context, leagueID int64) (map[optimizer.SlotType]int, error) {
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	slotCounts, err := optimizer.ParseSlotCounts(league.SlotCounts)
	if err == nil {
		err = optimizer.LineupRequest{SlotCounts: slotCounts}.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("league %d slot configuration: %w", leagueID, err)
	}
	return slotCounts, nil
}

func (s *Service) optimizeLoadedRoster(ctx context.Context, slotCounts map[optimizer.SlotType]int, roster *Roster, week int, mode types.ScoringMode) (*RosterLineup, error) {
	req, reserves, err := buildRequest(slotCounts, roster)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.Players))
	for _, p := range req.Players {
		ids = append(ids, p.ID)
	}
	req.Points, err = s.store.GetPoints(ctx, roster.LeagueID, week, mode, ids)
	if err != nil {
		return nil, err
	}

	assignment, err := s.Optimize(ctx, req)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logger.RosterFields(roster.LeagueID, roster.ID, week, string(mode)))
	if !assignment.Complete() {
		log.WithFields(logrus.Fields{
			"filled":     assignment.Filled,
			"configured": assignment.Configured,
		}).Warn("Lineup partially filled")
	}

	out := &RosterLineup{
		LeagueID:    roster.LeagueID,
		RosterID:    roster.ID,
		Week:        week,
		Mode:        mode,
		Assignment:  assignment,
		Reserves:    reserves,
		OptimizedAt: s.now(),
	}

	model, err := toModel(out)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertLineup(ctx, model); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}
		return nil, utils.WrapAppError(utils.ErrCodePersistence, "failed to store lineup", err)
	}
	out.Version = model.Version

	log.WithFields(logrus.Fields{
		"total_points": assignment.TotalPoints,
		"version":      out.Version,
	}).Debug("Roster lineup stored")

	return out, nil
}

// buildRequest splits roster members into optimizable players and reserved players that
// keep their current IR/taxi slot.
func buildRequest(slotCounts map[optimizer.SlotType]int, roster *Roster) (optimizer.LineupRequest, []types.ReserveAssignment, error) {
	req := optimizer.LineupRequest{SlotCounts: slotCounts}
	reserves := []types.ReserveAssignment{}

	for _, rp := range roster.Players {
		if strings.TrimSpace(rp.Position) == "" {
			return req, nil, fmt.Errorf("%w: player %d has no position", ErrMalformedRoster, rp.PlayerID)
		}

		switch {
		case rp.Status == "" || rp.Status == types.RosterStatusActive:
			req.Players = append(req.Players, optimizer.Player{ID: rp.PlayerID, Position: rp.Position})
		case rp.Status.IsReserved():
			slot, err := reserveSlot(rp)
			if err != nil {
				return req, nil, err
			}
			reserves = append(reserves, types.ReserveAssignment{PlayerID: rp.PlayerID, Slot: slot.String()})
		default:
			return req, nil, fmt.Errorf("%w: player %d has status %q", ErrMalformedRoster, rp.PlayerID, rp.Status)
		}
	}

	sort.Slice(reserves, func(i, j int) bool { return reserves[i].PlayerID < reserves[j].PlayerID })
	return req, reserves, nil
}

func reserveSlot(rp RosterPlayer) (optimizer.SlotType, error) {
	name := rp.ReserveSlot
	if name == "" {
		name = string(rp.Status)
	}
	slot, err := optimizer.ParseSlotType(name)
	if err != nil || !optimizer.IsReserveSlot(slot) || slot == optimizer.SlotBench {
		return 0, fmt.Errorf("%w: player %d has reserve slot %q", ErrMalformedRoster, rp.PlayerID, name)
	}
	return slot, nil
}

func toModel(l *RosterLineup) (*BestBallLineup, error) {
	starters, err := json.Marshal(l.Assignment.Starters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode starters: %w", err)
	}
	reserves, err := json.Marshal(l.Reserves)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reserves: %w", err)
	}
	return &BestBallLineup{
		LeagueID:       l.LeagueID,
		RosterID:       l.RosterID,
		Week:           l.Week,
		Mode:           l.Mode,
		Starters:       starters,
		BenchPlayerIDs: l.Assignment.Bench,
		Reserves:       reserves,
		Filled:         l.Assignment.Filled,
		Configured:     l.Assignment.Configured,
		TotalPoints:    l.Assignment.TotalPoints,
		OptimizedAt:    l.OptimizedAt,
	}, nil
}

func fromModel(m *BestBallLineup) (*RosterLineup, error) {
	assignment := &optimizer.LineupAssignment{
		Bench:       []int64(m.BenchPlayerIDs),
		Filled:      m.Filled,
		Configured:  m.Configured,
		TotalPoints: m.TotalPoints,
	}
	if assignment.Bench == nil {
		assignment.Bench = []int64{}
	}
	if err := json.Unmarshal(m.Starters, &assignment.Starters); err != nil {
		return nil, fmt.Errorf("failed to decode starters for roster %d: %w", m.RosterID, err)
	}

	reserves := []types.ReserveAssignment{}
	if len(m.Reserves) > 0 {
		if err := json.Unmarshal(m.Reserves, &reserves); err != nil {
			return nil, fmt.Errorf("failed to decode reserves for roster %d: %w", m.RosterID, err)
		}
	}

	return &RosterLineup{
		LeagueID:    m.LeagueID,
		RosterID:    m.RosterID,
		Week:        m.Week,
		Mode:        m.Mode,
		Assignment:  assignment,
		Reserves:    reserves,
		Version:     m.Version,
		OptimizedAt: m.OptimizedAt,
	}, nil
}
