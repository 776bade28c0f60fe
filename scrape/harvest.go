package scrape

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/auctiondir/hibid"
	"github.com/auctiondir/hibid/bloom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultHarvestRPS paces profile fetches well below one request per
// second, matching the upstream's tolerance for directory walks.
const DefaultHarvestRPS = 0.5

// Harvester walks a listing's profile URLs and collects detail records
// through the extraction pipeline, persisting them through a store.
// Failures on individual profiles are counted, never fatal; only
// cancellation aborts a run.
type Harvester struct {
	Companies   hibid.CompanyService
	Store       hibid.CompanyStore
	Runs        hibid.HarvestRunStore
	Limiter     *rate.Limiter
	Concurrency int
	RetryDelays []time.Duration
}

// Result holds the outcome of a harvest run.
type Result struct {
	Total   int
	Saved   int
	Failed  int
	Skipped int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a harvest.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Err       error
}

// ProgressFunc is a callback for reporting harvest progress.
type ProgressFunc func(event ProgressEvent)

// Harvest lists the directory page and fetches details for every listed
// company. Profile URLs already seen in this run are skipped via a
// probabilistic filter sized for the full directory.
func (h *Harvester) Harvest(ctx context.Context, page int, progress ProgressFunc) (*Result, error) {
	listing, err := h.Companies.ListCompanies(ctx, page)
	if err != nil {
		return nil, err
	}

	expected := uint(listing.TotalCount)
	if expected == 0 {
		expected = hibid.DefaultPageSize
	}
	seen := bloom.NewSeenFilter(expected, 0.001)

	skipped := 0
	var urls []string
	for _, c := range listing.Companies {
		if c.ProfileURL == "" || seen.Seen(c.ProfileURL) {
			skipped++
			continue
		}
		urls = append(urls, c.ProfileURL)
	}

	var run *hibid.HarvestRun
	if h.Runs != nil {
		run = &hibid.HarvestRun{StartedAt: time.Now().UTC(), Total: len(urls)}
		if err := h.Runs.CreateHarvestRun(ctx, run); err != nil {
			return nil, err
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(urls)})
	}

	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var saved, failed, completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, url := range urls {
		g.Go(func() error {
			if h.Limiter != nil {
				if err := h.Limiter.Wait(gctx); err != nil {
					return err
				}
			}

			result, err := DetailWithRetry(gctx, url, h.Companies.GetCompanyDetails, h.RetryDelays)
			done := int(completed.Add(1))
			if err != nil {
				failed.Add(1)
				if progress != nil {
					progress(ProgressEvent{Type: ProgressFailed, Completed: done, Total: len(urls), URL: url, Err: err})
				}
				return nil
			}

			if h.Store != nil {
				if err := h.Store.UpsertCompany(gctx, &result.Company); err != nil {
					failed.Add(1)
					if progress != nil {
						progress(ProgressEvent{Type: ProgressFailed, Completed: done, Total: len(urls), URL: url, Err: err})
					}
					return nil
				}
			}

			saved.Add(1)
			if progress != nil {
				progress(ProgressEvent{Type: ProgressCompleted, Completed: done, Total: len(urls), URL: url})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Total:   len(urls),
		Saved:   int(saved.Load()),
		Failed:  int(failed.Load()),
		Skipped: skipped,
	}

	if h.Runs != nil {
		run.FinishedAt = time.Now().UTC()
		run.Saved = res.Saved
		run.Failed = res.Failed
		run.Skipped = res.Skipped
		if err := h.Runs.FinishHarvestRun(ctx, run); err != nil {
			return nil, err
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: res.Total, Total: res.Total})
	}

	return res, nil
}
