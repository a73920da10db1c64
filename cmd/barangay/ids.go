package main

import (
	"fmt"

	"barangay/internal/utils"
	"barangay/pkg/types"

	"github.com/urfave/cli/v2"
)

var idsCommand = &cli.Command{
	Name:  "ids",
	Usage: "Generate record identifiers",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.StringFlag{
			Name:    "sheet",
			Aliases: []string{"s"},
			Usage:   "Sheet type to generate ids for; plain NanoIDs when empty",
		},
	},
	Action: func(c *cli.Context) error {
		sheet := types.SheetType(c.String("sheet"))
		if sheet != "" && !sheet.Valid() {
			return fmt.Errorf("%w: %q", types.ErrUnknownSheet, sheet)
		}

		count := c.Int("count")
		for range count {
			if sheet == "" {
				fmt.Println(utils.NanoID())
				continue
			}
			fmt.Println(utils.RecordID(sheet.IDPrefix()))
		}
		return nil
	},
}
