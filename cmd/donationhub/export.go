package main

import (
	"context"
	"fmt"

	"donationhub/internal/db"
	"donationhub/internal/storage"
	"donationhub/internal/store"
	"donationhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Upload a JSON lines snapshot of donations to S3",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "status",
			Usage: "Only export donations with this status (PENDING, APPROVED, REJECTED)",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var filter types.DonationFilter
		if raw := c.String("status"); raw != "" {
			status, ok := types.ParseDonationStatus(raw)
			if !ok {
				return fmt.Errorf("unknown donation status %q", raw)
			}
			filter.Status = &status
		}

		ctx := context.Background()

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		exporter := storage.NewDonationExporter(
			s3.NewFromConfig(awsConfig),
			store.NewDonationRepository(pool),
			cfg.S3BucketName,
			cfg.S3ExportPrefix,
		)

		key, count, err := exporter.Export(ctx, filter)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"bucket": cfg.S3BucketName,
			"key":    key,
			"count":  count,
		}).Info("donations exported")

		return nil
	},
}
