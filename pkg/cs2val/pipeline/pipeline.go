package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/export"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/render"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/valuate"
)

// Fetcher retrieves the full set of owned assets for an account.
type Fetcher interface {
	Inventory(ctx context.Context, steamID64 string) ([]types.Asset, error)
}

// Runner wires fetch → aggregate → value → render, with an optional CSV
// artifact on the side.
type Runner struct {
	Fetcher  Fetcher
	Pricer   valuate.Pricer
	Renderer render.Renderer
	Writer   io.Writer
	Log      *logrus.Logger
}

type Options struct {
	IncludeUnmarketable bool
	CSVPath             string
	Render              render.Options
}

func (r *Runner) Execute(ctx context.Context, steamID64 string, opts Options) error {
	assets, err := r.Fetcher.Inventory(ctx, steamID64)
	if err != nil {
		return err
	}
	counts := valuate.CountByName(assets, opts.IncludeUnmarketable)

	if len(counts) == 0 {
		fmt.Fprintln(r.Writer, "No items to value.")
	}

	total, rows, err := valuate.Value(ctx, counts, r.Pricer)
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		if err := r.Renderer.Render(r.Writer, rows, total, opts.Render); err != nil {
			return err
		}
	}

	if opts.CSVPath != "" {
		if err := writeCSVFile(opts.CSVPath, rows, total); err != nil {
			// The on-screen report already succeeded; a failed artifact
			// write is reported but does not fail the run.
			r.log().WithError(err).Warn("could not write CSV")
		} else {
			fmt.Fprintf(r.Writer, "\nCSV written to %s\n", opts.CSVPath)
		}
	}
	return nil
}

func (r *Runner) log() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}

func writeCSVFile(path string, rows []types.Row, totalCents int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, rows, totalCents); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
