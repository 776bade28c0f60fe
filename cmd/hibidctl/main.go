package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	hibidhttp "github.com/auctiondir/hibid/http"
	"github.com/auctiondir/hibid/scrape"
	hibidslog "github.com/auctiondir/hibid/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("hibidctl"),
		kong.Description("Extract auction company records from the HiBid directory"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Operation logs go to stderr so stdout stays clean JSON.
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	timeout := cli.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	// Wire dependencies
	validator := hibidhttp.NewValidator()
	fetcher := hibidhttp.NewFetcher(hibidhttp.WithTimeout(timeout))
	companies := hibidslog.NewLoggingCompanyService(scrape.NewService(validator, fetcher), logger)

	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Companies: companies,
		Logger:    logger,
	}

	return kctx.Run(deps)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool          `short:"v" help:"Log each operation to stderr"`
	Timeout time.Duration `short:"t" default:"15s" help:"Fetch timeout per page"`

	List    ListCmd    `cmd:"" help:"List companies from the directory page"`
	Details DetailsCmd `cmd:"" help:"Extract contact details from a company profile URL"`
	Harvest HarvestCmd `cmd:"" help:"Fetch details for every listed company"`
}
