package main

import (
	"context"
	"time"

	tablerepository "reservio/internal/tables/repository"
	"reservio/pkg/config"
	"reservio/pkg/model"
)

const JobName = "table-seed"

// seedTables is the default floor layout for a fresh environment. Seeding is
// idempotent: tables carry a unique name index, existing names are skipped.
var seedTables = []model.Table{
	{Name: "Window 1", Seats: 2},
	{Name: "Window 2", Seats: 2},
	{Name: "Center 1", Seats: 4},
	{Name: "Center 2", Seats: 4},
	{Name: "Center 3", Seats: 4},
	{Name: "Corner", Seats: 6},
	{Name: "Banquet", Seats: 10},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Seeding table catalog", "tables", len(seedTables))

	repo := tablerepository.NewTableRepository(cfg)
	seeded, skipped := 0, 0
	for _, table := range seedTables {
		t := table
		if err := repo.Create(ctx, &t); err != nil {
			cfg.Log.Warn("Skipping table", "name", t.Name, "reason", err)
			skipped++
			continue
		}
		seeded++
	}

	cfg.Log.Info("Seed completed", "seeded", seeded, "skipped", skipped)
}
