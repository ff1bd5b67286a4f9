package main

import (
	"context"
	"fmt"

	"helplink/internal/db"
	"helplink/internal/seed"
	"helplink/internal/store/postgres"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("set DATABASE_URL")
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logrus.Info("Seeding regions...")
		if err := seed.SeedRegions(ctx, postgres.NewRegionRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed regions: %w", err)
		}

		logrus.Info("Seeding users...")
		if err := seed.SeedUsers(ctx, postgres.NewUserRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
