package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stitts-dev/bestball/services/optimization-service/internal/lineup"
	"github.com/stitts-dev/bestball/shared/pkg/config"
	"github.com/stitts-dev/bestball/shared/pkg/database"
	"github.com/stitts-dev/bestball/shared/pkg/logger"
	"github.com/stitts-dev/bestball/shared/types"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	migrateLog := logger.WithService("bestball-migrate")

	db, err := database.NewOptimizationServiceConnection(cfg.DatabaseURL, cfg.IsDevelopment(), cfg.LeagueOptimizeConcurrency)
	if err != nil {
		migrateLog.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	switch command := os.Args[1]; command {
	case "up":
		if err := lineup.NewRepository(db.DB).Migrate(ctx); err != nil {
			migrateLog.Fatalf("Failed to run migrations: %v", err)
		}
		migrateLog.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db.DB); err != nil {
			migrateLog.Fatalf("Failed to drop tables: %v", err)
		}
		migrateLog.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db.DB); err != nil {
			migrateLog.Fatalf("Failed to seed data: %v", err)
		}
		migrateLog.Info("Data seeded successfully")

	default:
		migrateLog.Fatalf("Unknown command: %s", command)
	}
}

func dropTables(db *gorm.DB) error {
	models := lineup.AllModels()
	// Reverse order so dependents go first
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	return nil
}

// seedData creates a two-team superflex league with week 1 projections
func seedData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		league := &lineup.League{
			Name: "Demo Superflex Dynasty",
			SlotCounts: types.SlotRequirements{
				"QB": 1, "RB": 2, "WR": 2, "TE": 1, "FLEX": 1, "SUPER_FLEX": 1,
				"BN": 10, "IR": 2, "TAXI": 3,
			},
		}
		if err := tx.Create(league).Error; err != nil {
			return fmt.Errorf("failed to create league: %w", err)
		}

		rosters := []lineup.Roster{
			{
				LeagueID:  league.ID,
				OwnerName: "Team Alpha",
				Players: []lineup.RosterPlayer{
					{PlayerID: 101, Position: "QB", Status: types.RosterStatusActive},
					{PlayerID: 102, Position: "QB", Status: types.RosterStatusActive},
					{PlayerID: 103, Position: "RB", Status: types.RosterStatusActive},
					{PlayerID: 104, Position: "RB", Status: types.RosterStatusActive},
					{PlayerID: 105, Position: "RB", Status: types.RosterStatusActive},
					{PlayerID: 106, Position: "WR", Status: types.RosterStatusActive},
					{PlayerID: 107, Position: "WR", Status: types.RosterStatusActive},
					{PlayerID: 108, Position: "WR", Status: types.RosterStatusActive},
					{PlayerID: 109, Position: "TE", Status: types.RosterStatusActive},
					{PlayerID: 110, Position: "WR", Status: types.RosterStatusIR, ReserveSlot: "IR"},
					{PlayerID: 111, Position: "RB", Status: types.RosterStatusTaxi, ReserveSlot: "TAXI"},
				},
			},
			{
				LeagueID:  league.ID,
				OwnerName: "Team Bravo",
				Players: []lineup.RosterPlayer{
					{PlayerID: 201, Position: "QB", Status: types.RosterStatusActive},
					{PlayerID: 202, Position: "RB", Status: types.RosterStatusActive},
					{PlayerID: 203, Position: "RB", Status: types.RosterStatusActive},
					{PlayerID: 204, Position: "WR", Status: types.RosterStatusActive},
					{PlayerID: 205, Position: "WR", Status: types.RosterStatusActive},
					{PlayerID: 206, Position: "TE", Status: types.RosterStatusActive},
					{PlayerID: 207, Position: "TE", Status: types.RosterStatusActive},
				},
			},
		}
		if err := tx.Create(&rosters).Error; err != nil {
			return fmt.Errorf("failed to create rosters: %w", err)
		}

		projections := map[int64]float64{
			101: 24.1, 102: 19.8, 103: 16.5, 104: 12.2, 105: 8.9, 106: 17.4, 107: 13.0,
			108: 9.6, 109: 10.1, 110: 15.0, 111: 4.2,
			201: 22.7, 202: 14.9, 203: 11.3, 204: 18.8, 205: 9.1, 206: 8.4, 207: 7.7,
		}
		scores := make([]lineup.PlayerScore, 0, len(projections))
		for playerID, points := range projections {
			scores = append(scores, lineup.PlayerScore{
				LeagueID: league.ID,
				PlayerID: playerID,
				Week:     1,
				Mode:     types.ScoringModeProjected,
				Points:   points,
			})
		}
		if err := tx.Create(&scores).Error; err != nil {
			return fmt.Errorf("failed to create player scores: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"league_id": league.ID,
			"rosters":   len(rosters),
			"scores":    len(scores),
		}).Info("Seeded demo league")
		return nil
	})
}
