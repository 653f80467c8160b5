// Package lookup drives a full license search: bootstrap, the initial search
// postback, then one grid postback per remaining result page.
package lookup

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/elicense/internal/engine"
	"github.com/law-makers/elicense/internal/engine/delta"
	"github.com/law-makers/elicense/internal/engine/results"
	"github.com/law-makers/elicense/internal/ratelimit"
	"github.com/law-makers/elicense/internal/reqctx"
	"github.com/law-makers/elicense/internal/ui"
	"github.com/law-makers/elicense/internal/utils/output"
	"github.com/law-makers/elicense/pkg/models"
)

// Debug artifacts written when a postback lands on the error page
const (
	DebugErrorRedirect     = "debug_error_redirect.txt"
	debugErrorRedirectPage = "debug_error_redirect_page_%d.txt"
)

// CookiesHint is attached to an error redirect on the initial search
const CookiesHint = "the site may require a verified session; re-run with --cookies cookies.txt"

// Options configures a Driver
type Options struct {
	// CookiesPath is an optional Netscape cookie file loaded before bootstrap
	CookiesPath string
	// OutputPath is the CSV destination
	OutputPath string
	// Progress receives a page progress bar; nil disables it
	Progress io.Writer
}

// Result summarizes a completed run
type Result struct {
	Pages      int
	Rows       int
	Removed    int
	OutputPath string
	// Empty is set when the first page had no rows and nothing else was fetched
	Empty bool
}

// Driver runs the postback sequence strictly one request at a time
type Driver struct {
	client engine.Client
	pacer  *ratelimit.Pacer
	sink   engine.DebugSink
	out    io.Writer
	opts   Options
}

// New creates a Driver. Status lines are written to out.
func New(client engine.Client, pacer *ratelimit.Pacer, sink engine.DebugSink, out io.Writer, opts Options) *Driver {
	if out == nil {
		out = io.Discard
	}
	return &Driver{
		client: client,
		pacer:  pacer,
		sink:   sink,
		out:    out,
		opts:   opts,
	}
}

// Run performs the lookup and writes the CSV. Any failure ends the run; nothing
// is retried.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	logger := log.With().Str("run_id", reqctx.RunID(ctx)).Logger()

	if d.opts.CookiesPath != "" {
		n, err := d.client.LoadCookies(d.opts.CookiesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load cookies: %w", err)
		}
		logger.Info().Str("file", d.opts.CookiesPath).Int("cookies", n).Msg("Loaded cookies")
	}

	logger.Debug().Dur("page_delay", d.pacer.Interval()).Msg("Page pacing configured")

	st, err := d.client.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	first, text, err := d.fetch(ctx, st, 1, engine.UpdatePanelTarget, engine.InitialSearchArgument)
	if err != nil {
		return nil, err
	}

	agg := &models.Aggregate{}
	agg.Add(first)

	if first.Empty() {
		fmt.Fprintln(d.out, ui.Warning("WARNING: Page 1 returned 0 rows."))
		fmt.Fprintf(d.out, "Check %s and %s\n", results.DebugEmptyDelta, results.DebugEmptyTable)
		if err := output.SaveRecordsCSV(agg, d.opts.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", d.opts.OutputPath, err)
		}
		logger.Warn().Str("output", d.opts.OutputPath).Msg("Search returned no rows")
		return &Result{Pages: 1, OutputPath: d.opts.OutputPath, Empty: true}, nil
	}

	maxPage := delta.MaxPage(text)
	fmt.Fprintf(d.out, "Detected %d pages\n", maxPage)
	fmt.Fprintf(d.out, "Fetched page 1/%d rows=%d\n", maxPage, first.Len())

	bar := d.progress(maxPage)
	bar.Add(1)

	for p := 2; p <= maxPage; p++ {
		if err := d.pacer.Pause(ctx); err != nil {
			return nil, err
		}

		rs, _, err := d.fetch(ctx, st, p, engine.GridTarget, engine.PageArgument(p))
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(d.out, "Fetched page %d/%d rows=%d\n", p, maxPage, rs.Len())

		if !agg.Add(rs) {
			logger.Warn().
				Int("page", p).
				Strs("header", rs.Header).
				Strs("expected", agg.Header).
				Msg("Page header differs from page 1")
		}
		bar.Add(1)
	}
	bar.Finish()

	removed := agg.Dedupe()
	if err := output.SaveRecordsCSV(agg, d.opts.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", d.opts.OutputPath, err)
	}

	logger.Info().
		Int("pages", agg.Pages).
		Int("rows", agg.Len()).
		Int("duplicates", removed).
		Str("output", d.opts.OutputPath).
		Msg("Lookup complete")

	return &Result{
		Pages:      agg.Pages,
		Rows:       agg.Len(),
		Removed:    removed,
		OutputPath: d.opts.OutputPath,
	}, nil
}

// fetch sends one postback, checks for the error redirect, threads the
// refreshed state into st and parses the page. It returns the raw delta as well.
func (d *Driver) fetch(ctx context.Context, st *engine.State, page int, target, argument string) (*models.RecordSet, string, error) {
	text, err := d.client.Postback(ctx, st, target, argument)
	if err != nil {
		return nil, "", fmt.Errorf("page %d: %w", page, err)
	}

	if delta.IsErrorRedirect(text) {
		return nil, "", d.errorRedirect(page, text)
	}

	if updated := st.Refresh(text); len(updated) > 0 {
		log.Debug().Int("page", page).Strs("fields", updated).Msg("State refreshed")
	}

	rs, err := results.Parse(text, d.sink)
	if err != nil {
		return nil, "", fmt.Errorf("page %d: %w", page, err)
	}
	rs.Page = page
	return rs, text, nil
}

func (d *Driver) errorRedirect(page int, text string) error {
	if page == 1 {
		path := d.sink.Save(DebugErrorRedirect, text)
		return engine.ProtocolError("redirected to ErrorPage.aspx").
			WithDetail(engine.DetailPage, page).
			WithDebugFile(path).
			WithHint(CookiesHint)
	}
	path := d.sink.Save(fmt.Sprintf(debugErrorRedirectPage, page), text)
	return engine.ProtocolError(fmt.Sprintf("redirected to ErrorPage on page %d", page)).
		WithDetail(engine.DetailPage, page).
		WithDebugFile(path)
}

func (d *Driver) progress(pages int) *progressbar.ProgressBar {
	w := d.opts.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(pages,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}
