package main

import (
	"context"
	"fmt"
	"os"

	"barangay/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Create the default hotlines and council positions",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "YAML file with hotlines and positions to use instead of the built-in list",
		},
	},
	Action: func(cCtx *cli.Context) error {
		ctx := context.Background()

		defaults := seed.DefaultDirectory
		if path := cCtx.String("file"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			defaults, err = seed.LoadDefaults(f)
			if err != nil {
				return err
			}
		}

		p, err := newPortal(ctx, cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		p.logger.Info("Seeding directory...")

		result, err := seed.SeedDirectory(ctx, p.store, p.records, defaults, p.logger)
		if err != nil {
			return fmt.Errorf("failed to seed directory: %w", err)
		}

		p.logger.WithField("skipped", result.Skipped).Infof("Directory seeded: %d created", result.Created)

		return nil
	},
}
