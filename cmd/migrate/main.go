package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/config"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// Auto migrate all models
	if err := db.AutoMigrate(
		&models.Tournament{},
		&models.GolferScore{},
		&models.Entry{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_golfer_scores_tournament ON golfer_scores(tournament_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_tournament ON entries(tournament_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_score ON entries(tournament_id, calculated_score)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"entries",
		"golfer_scores",
		"tournaments",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	tournament := &models.Tournament{
		PGAID:     "033",
		Name:      "Masters Tournament",
		Year:      time.Now().Year(),
		StartDate: time.Now().AddDate(0, 0, 3),
		EndDate:   time.Now().AddDate(0, 0, 7),
		IsActive:  true,
		Status:    models.TournamentNotStarted,
	}
	if err := db.Create(tournament).Error; err != nil {
		return fmt.Errorf("failed to seed tournament: %w", err)
	}

	golfers := []models.GolferScore{
		{PlayerID: "46046", TournamentID: &tournament.ID, FirstName: "Scottie", LastName: "Scheffler", Position: "-", Total: "E"},
		{PlayerID: "33448", TournamentID: &tournament.ID, FirstName: "Rory", LastName: "McIlroy", Position: "-", Total: "E"},
		{PlayerID: "52955", TournamentID: &tournament.ID, FirstName: "Ludvig", LastName: "Aberg", Position: "-", Total: "E"},
	}
	if err := db.Create(&golfers).Error; err != nil {
		return fmt.Errorf("failed to seed golfers: %w", err)
	}

	logrus.Infof("Seeded tournament %s with %d golfers", tournament.Name, len(golfers))
	return nil
}
