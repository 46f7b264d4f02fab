package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/render"
	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

type fakeFetcher struct {
	assets []types.Asset
	err    error
}

func (f fakeFetcher) Inventory(context.Context, string) ([]types.Asset, error) {
	return f.assets, f.err
}

type fakePricer struct {
	exact map[string]*types.Quote
}

func (f fakePricer) LowestExact(_ context.Context, name string) (*types.Quote, error) {
	return f.exact[name], nil
}

func (f fakePricer) LowestBroad(context.Context, string) (*types.Quote, error) {
	return nil, nil
}

func TestRunner_Execute(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "report.csv")
	var out strings.Builder

	r := &Runner{
		Fetcher: fakeFetcher{assets: []types.Asset{
			{Name: "Widget A", Marketable: true},
			{Name: "Widget A", Marketable: true},
			{Name: "Widget A", Marketable: true},
			{Name: "Trinket", Marketable: false},
		}},
		Pricer:   fakePricer{exact: map[string]*types.Quote{"Widget A": {PriceCents: 999, ListingID: "w1"}}},
		Renderer: render.NewTableRenderer(),
		Writer:   &out,
	}

	err := r.Execute(context.Background(), "76561198000000001", Options{CSVPath: csvPath})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !strings.Contains(out.String(), "Widget A") {
		t.Errorf("report missing item:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Trinket") {
		t.Errorf("unmarketable item leaked into report:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "CSV written to "+csvPath) {
		t.Errorf("missing CSV confirmation:\n%s", out.String())
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[1] != "Widget A,3,9.99,29.97,yes,exact,w1" {
		t.Errorf("csv row = %q", lines[1])
	}
	if lines[2] != "TOTAL,,,29.97,,," {
		t.Errorf("csv total = %q", lines[2])
	}
}

func TestRunner_EmptyInventory(t *testing.T) {
	var out strings.Builder
	r := &Runner{
		Fetcher:  fakeFetcher{},
		Pricer:   fakePricer{},
		Renderer: render.NewTableRenderer(),
		Writer:   &out,
	}
	if err := r.Execute(context.Background(), "76561198000000001", Options{}); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !strings.Contains(out.String(), "No items to value.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunner_FetchErrorPropagates(t *testing.T) {
	wantErr := &types.AccessError{Op: "inventory"}
	r := &Runner{
		Fetcher:  fakeFetcher{err: wantErr},
		Pricer:   fakePricer{},
		Renderer: render.NewTableRenderer(),
		Writer:   &strings.Builder{},
	}
	if err := r.Execute(context.Background(), "x", Options{}); err != wantErr {
		t.Fatalf("Execute() = %v, want fetch error", err)
	}
}
