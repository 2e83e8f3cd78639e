package lineup

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/bestball/shared/pkg/utils"
	"github.com/stitts-dev/bestball/shared/types"
)

// Repository is the gorm-backed store for leagues, rosters, scores and optimized lineups
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates every table the service owns
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate bestball schema: %w", err)
	}
	return nil
}

func (r *Repository) GetLeague(ctx context.Context, leagueID int64) (*League, error) {
	var league League
	if err := r.db.WithContext(ctx).First(&league, leagueID).Error; err != nil {
		return nil, notFound(err, "league %d", leagueID)
	}
	return &league, nil
}

func (r *Repository) GetRoster(ctx context.Context, leagueID, rosterID int64) (*Roster, error) {
	var roster Roster
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("player_id ASC")
		}).
		Where("league_id = ? AND id = ?", leagueID, rosterID).
		First(&roster).Error
	if err != nil {
		return nil, notFound(err, "roster %d in league %d", rosterID, leagueID)
	}
	return &roster, nil
}

func (r *Repository) ListRosters(ctx context.Context, leagueID int64) ([]Roster, error) {
	var rosters []Roster
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("player_id ASC")
		}).
		Where("league_id = ?", leagueID).
		Order("id ASC").
		Find(&rosters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters for league %d: %w", leagueID, err)
	}
	return rosters, nil
}

// GetPoints returns the scored points for the given players. Players without a score row
// are absent from the map.
func (r *Repository) GetPoints(ctx context.Context, leagueID int64, week int, mode types.ScoringMode, playerIDs []int64) (map[int64]float64, error) {
	points := make(map[int64]float64, len(playerIDs))
	if len(playerIDs) == 0 {
		return points, nil
	}

	var scores []PlayerScore
	err := r.db.WithContext(ctx).
		Where("league_id = ? AND week = ? AND mode = ? AND player_id IN ?", leagueID, week, mode, playerIDs).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s points for league %d week %d: %w", mode, leagueID, week, err)
	}

	for _, score := range scores {
		points[score.PlayerID] = score.Points
	}
	return points, nil
}

func (r *Repository) GetLineup(ctx context.Context, rosterID int64, week int, mode types.ScoringMode) (*BestBallLineup, error) {
	var lineup BestBallLineup
	err := r.db.WithContext(ctx).
		Where("roster_id = ? AND week = ? AND mode = ?", rosterID, week, mode).
		First(&lineup).Error
	if err != nil {
		return nil, notFound(err, "lineup for roster %d week %d mode %s", rosterID, week, mode)
	}
	return &lineup, nil
}

// UpsertLineup writes the lineup inside one transaction that holds a row lock on the
// owning roster, so concurrent optimizations of the same roster serialize. An existing
// row for (roster, week, mode) is overwritten and its version bumped.
func (r *Repository) UpsertLineup(ctx context.Context, lineup *BestBallLineup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roster Roster
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND league_id = ?", lineup.RosterID, lineup.LeagueID).
			First(&roster).Error
		if err != nil {
			return notFound(err, "roster %d in league %d", lineup.RosterID, lineup.LeagueID)
		}

		lineup.Version = 1
		updates := clause.AssignmentColumns([]string{
			"league_id", "starters", "bench_player_ids", "reserves",
			"filled", "configured", "total_points", "optimized_at", "updated_at",
		})
		updates = append(updates, clause.Assignment{
			Column: clause.Column{Name: "version"},
			Value:  gorm.Expr("bestball_lineups.version + 1"),
		})

		err = tx.Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "roster_id"}, {Name: "week"}, {Name: "mode"}},
				DoUpdates: updates,
			},
			clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "version"}}},
		).Create(lineup).Error
		if err != nil {
			return fmt.Errorf("failed to upsert lineup for roster %d: %w", lineup.RosterID, err)
		}
		return nil
	})
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), utils.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", fmt.Sprintf(format, args...), err)
}
