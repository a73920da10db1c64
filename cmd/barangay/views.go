package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var textFormatter = &logrus.TextFormatter{FullTimestamp: true}

var complaintsCommand = &cli.Command{
	Name:  "complaints",
	Usage: "List complaints, most upvoted first",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "category",
			Aliases: []string{"c"},
			Usage:   "Only show this category (all for every category)",
			Value:   "all",
		},
	},
	Action: func(cCtx *cli.Context) error {
		p, err := newPortal(context.Background(), cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUPVOTES\tSTATUS\tCATEGORY\tTITLE\tRESIDENT")
		for _, c := range p.store.ComplaintsByCategory(cCtx.String("category")) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Upvotes, c.Status.Label(), c.Category, c.Title, c.ResidentName)
		}
		return w.Flush()
	},
}

var announcementsCommand = &cli.Command{
	Name:  "announcements",
	Usage: "List announcements, newest first",
	Action: func(cCtx *cli.Context) error {
		p, err := newPortal(context.Background(), cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		for _, a := range p.store.Announcements() {
			fmt.Printf("[%s] %s (%s)\n", a.Priority, a.Title, a.Date)
			fmt.Printf("  %s\n\n", a.Content)
		}
		return nil
	},
}

var directoryCommand = &cli.Command{
	Name:  "directory",
	Usage: "List officials, hotlines and households",
	Action: func(cCtx *cli.Context) error {
		p, err := newPortal(context.Background(), cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Fprintln(w, "OFFICIAL\tPOSITION\tCONTACT")
		for _, o := range p.store.Officials() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.Name, o.Position, o.Contact)
		}

		fmt.Fprintln(w, "\nHOTLINE\tPHONE\tHOURS")
		for _, h := range p.store.Hotlines() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", h.ServiceName, h.PhoneNumber, h.AvailableHours)
		}

		fmt.Fprintln(w, "\nHOUSEHOLD HEAD\tADDRESS\tPHONE")
		for _, h := range p.store.Households() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", h.HeadOfHousehold, h.Address, h.Phone)
		}

		return w.Flush()
	},
}

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "Summarise complaints by status and category",
	Action: func(cCtx *cli.Context) error {
		p, err := newPortal(context.Background(), cCtx, textFormatter)
		if err != nil {
			return err
		}
		defer p.Close()

		report := p.store.Report()

		fmt.Printf("Total complaints: %d\n\n", report.Total)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STATUS\tCOUNT")
		for _, status := range types.ComplaintStatuses {
			fmt.Fprintf(w, "%s\t%d\n", status.Label(), report.StatusCounts[status])
		}

		fmt.Fprintln(w, "\nCATEGORY\tCOUNT")
		for _, category := range types.ComplaintCategories {
			if n := report.CategoryCounts[category]; n > 0 {
				fmt.Fprintf(w, "%s\t%d\n", category, n)
			}
		}

		return w.Flush()
	},
}
