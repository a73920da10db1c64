package main

import (
	"context"

	"barangay/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var dumpCommand = &cli.Command{
	Name:  "dump",
	Usage: "Pretty print the records fetched from the gateway",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "sheet",
			Aliases: []string{"s"},
			Usage:   "Only print records of this sheet type",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	},
	Action: func(cCtx *cli.Context) error {
		p, err := newPortal(context.Background(), cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		sheet := types.SheetType(cCtx.String("sheet"))

		printer := pp.New()
		printer.SetColoringEnabled(!cCtx.Bool("no-color"))

		for _, record := range p.store.Records() {
			if sheet != "" && record.Sheet() != sheet {
				continue
			}
			printer.Println(record)
		}

		return nil
	},
}
