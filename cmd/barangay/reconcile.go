package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var reconcileCommand = &cli.Command{
	Name:      "reconcile",
	Usage:     "Set complaint upvote counters to the number of recorded votes",
	ArgsUsage: "[complaint id...]",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Check every complaint instead of the given ids",
		},
	}, loginFlags...),
	Action: func(cCtx *cli.Context) error {
		ctx := context.Background()

		p, err := newPortal(ctx, cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		account, err := p.login(cCtx)
		if err != nil {
			return err
		}

		ids := cCtx.Args().Slice()
		if cCtx.Bool("all") {
			ids = nil
			for _, c := range p.store.Complaints() {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) == 0 {
			fmt.Println("Nothing to reconcile")
			return nil
		}

		adjustments, err := p.complaints.Reconcile(ctx, account, ids...)
		for _, a := range adjustments {
			fmt.Printf("  %s: %s -> %s\n", a.ComplaintID, a.From, a.To)
		}
		fmt.Printf("\nReconcile complete: %d of %d complaints adjusted\n", len(adjustments), len(ids))

		return err
	},
}
