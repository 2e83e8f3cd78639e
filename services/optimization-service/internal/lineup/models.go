package lineup

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/stitts-dev/bestball/shared/types"
)

// League holds the lineup slot configuration shared by all of its rosters
type League struct {
	ID         int64                  `gorm:"primaryKey" json:"id"`
	Name       string                 `gorm:"not null" json:"name"`
	SlotCounts types.SlotRequirements `gorm:"type:jsonb;not null" json:"slot_counts"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func (League) TableName() string {
	return "leagues"
}

type Roster struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	LeagueID  int64          `gorm:"not null;index" json:"league_id"`
	OwnerName string         `json:"owner_name"`
	Players   []RosterPlayer `gorm:"foreignKey:RosterID" json:"players,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Roster) TableName() string {
	return "rosters"
}

// RosterPlayer is one player on a roster. ReserveSlot is set for ir and taxi members and
// names the reserve slot (IR, TAXI) they occupy.
type RosterPlayer struct {
	ID          int64              `gorm:"primaryKey" json:"id"`
	RosterID    int64              `gorm:"not null;uniqueIndex:idx_roster_player" json:"roster_id"`
	PlayerID    int64              `gorm:"not null;uniqueIndex:idx_roster_player" json:"player_id"`
	Position    string             `gorm:"type:varchar(10);not null" json:"position"`
	Status      types.RosterStatus `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	ReserveSlot string             `gorm:"type:varchar(10)" json:"reserve_slot,omitempty"`
}

func (RosterPlayer) TableName() string {
	return "roster_players"
}

// PlayerScore is the scoring engine's output for one player, week and mode
type PlayerScore struct {
	ID       int64             `gorm:"primaryKey" json:"id"`
	LeagueID int64             `gorm:"not null;uniqueIndex:idx_player_score" json:"league_id"`
	PlayerID int64             `gorm:"not null;uniqueIndex:idx_player_score" json:"player_id"`
	Week     int               `gorm:"not null;uniqueIndex:idx_player_score" json:"week"`
	Mode     types.ScoringMode `gorm:"type:varchar(12);not null;uniqueIndex:idx_player_score" json:"mode"`
	Points   float64           `gorm:"not null;default:0" json:"points"`
}

func (PlayerScore) TableName() string {
	return "player_scores"
}

// BestBallLineup is the persisted optimal lineup for one roster, week and mode. Version
// increases by one every time the row is re-optimized.
type BestBallLineup struct {
	ID             int64             `gorm:"primaryKey" json:"id"`
	LeagueID       int64             `gorm:"not null;index" json:"league_id"`
	RosterID       int64             `gorm:"not null;uniqueIndex:idx_lineup_roster_week_mode" json:"roster_id"`
	Week           int               `gorm:"not null;uniqueIndex:idx_lineup_roster_week_mode" json:"week"`
	Mode           types.ScoringMode `gorm:"type:varchar(12);not null;uniqueIndex:idx_lineup_roster_week_mode" json:"mode"`
	Starters       datatypes.JSON    `gorm:"type:jsonb;not null" json:"starters"`
	BenchPlayerIDs pq.Int64Array     `gorm:"type:bigint[]" json:"bench_player_ids"`
	Reserves       datatypes.JSON    `gorm:"type:jsonb" json:"reserves"`
	Filled         int               `gorm:"not null" json:"filled"`
	Configured     int               `gorm:"not null" json:"configured"`
	TotalPoints    float64           `gorm:"not null" json:"total_points"`
	Version        int               `gorm:"not null;default:1" json:"version"`
	OptimizedAt    time.Time         `gorm:"not null" json:"optimized_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (BestBallLineup) TableName() string {
	return "bestball_lineups"
}

// AllModels lists every table the service owns, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&League{},
		&Roster{},
		&RosterPlayer{},
		&PlayerScore{},
		&BestBallLineup{},
	}
}
