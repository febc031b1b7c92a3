package main

import (
	"context"
	"fmt"

	"donationhub/internal/db"
	"donationhub/internal/seed"
	"donationhub/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo accounts and NGOs",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Print the seeded records",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		users, err := seed.SeedUsers(ctx, store.NewUserRepository(pool))
		if err != nil {
			return err
		}

		ngos, err := seed.SeedNGOs(ctx, store.NewNGORepository(pool))
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"users": len(users),
			"ngos":  len(ngos),
		}).Info("seed data upserted")

		if c.Bool("verbose") {
			pp.Println(users)
			pp.Println(ngos)
		}

		return nil
	},
}
