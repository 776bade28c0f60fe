package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/auctiondir/hibid"
	"github.com/auctiondir/hibid/scrape"
	"github.com/auctiondir/hibid/sqlite"
	"golang.org/x/time/rate"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Companies hibid.CompanyService
	Logger    *slog.Logger
}

// writeJSON renders a command result as indented JSON on stdout.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ListCmd lists companies from a directory page.
type ListCmd struct {
	Page int `short:"p" default:"1" help:"Directory page number (1-31)"`
}

func (c *ListCmd) Run(deps *Dependencies) error {
	result, err := deps.Companies.ListCompanies(deps.Ctx, c.Page)
	if err != nil {
		return fmt.Errorf("list failed: %s", hibid.ErrorMessage(err))
	}
	return writeJSON(deps.Stdout, result)
}

// DetailsCmd extracts contact details from a single profile URL.
type DetailsCmd struct {
	URL string `arg:"" required:"" help:"Company profile URL"`
}

func (c *DetailsCmd) Run(deps *Dependencies) error {
	result, err := deps.Companies.GetCompanyDetails(deps.Ctx, c.URL)
	if err != nil {
		return fmt.Errorf("details failed: %s", hibid.ErrorMessage(err))
	}
	return writeJSON(deps.Stdout, result)
}

// HarvestCmd fetches details for every company on a directory page,
// optionally persisting records to a SQLite database.
type HarvestCmd struct {
	Page        int     `short:"p" default:"1" help:"Directory page number (1-31)"`
	DB          string  `help:"SQLite database path for harvested records"`
	Concurrency int     `short:"c" default:"2" help:"Concurrent detail fetch limit"`
	RPS         float64 `default:"0.5" help:"Profile fetches per second"`
}

func (c *HarvestCmd) Run(deps *Dependencies) error {
	harvester := &scrape.Harvester{
		Companies:   deps.Companies,
		Limiter:     rate.NewLimiter(rate.Limit(c.RPS), 1),
		Concurrency: c.Concurrency,
		RetryDelays: scrape.DefaultRetryDelays(),
	}

	if c.DB != "" {
		db := sqlite.NewDB(c.DB)
		if err := db.Open(); err != nil {
			return err
		}
		defer db.Close()

		store := sqlite.NewCompanyStore(db)
		harvester.Store = store
		harvester.Runs = store
	}

	progress := func(event scrape.ProgressEvent) {
		switch event.Type {
		case scrape.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "harvesting %d companies\n", event.Total)
		case scrape.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] failed %s: %s\n",
				event.Completed, event.Total, event.URL, hibid.ErrorMessage(event.Err))
		case scrape.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s\n", event.Completed, event.Total, event.URL)
		}
	}

	result, err := harvester.Harvest(deps.Ctx, c.Page, progress)
	if err != nil {
		return fmt.Errorf("harvest failed: %s", hibid.ErrorMessage(err))
	}
	return writeJSON(deps.Stdout, result)
}
