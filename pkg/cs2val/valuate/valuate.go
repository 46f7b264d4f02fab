package valuate

import (
	"context"
	"sort"
	"strings"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

// CountByName reduces assets to distinct name → quantity. Unmarketable
// assets are skipped unless includeUnmarketable is set. Pure function.
func CountByName(assets []types.Asset, includeUnmarketable bool) types.ItemCount {
	counts := make(types.ItemCount)
	for _, a := range assets {
		if !includeUnmarketable && !a.Marketable {
			continue
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		counts[name]++
	}
	return counts
}

// Pricer yields the cheapest listing for an item name. A nil quote with a
// nil error means the service confirmed there is no listing.
type Pricer interface {
	LowestExact(ctx context.Context, name string) (*types.Quote, error)
	LowestBroad(ctx context.Context, name string) (*types.Quote, error)
}

// Value prices each distinct item, one at a time, and returns the grand
// total in cents plus one row per name. Names are visited in SortedNames
// order so the output is byte-for-byte reproducible for identical inputs.
// An item with no listing stays in the report unpriced; a pricer error
// aborts the whole run rather than producing a silently partial report.
func Value(ctx context.Context, counts types.ItemCount, pricer Pricer) (int64, []types.Row, error) {
	names := SortedNames(counts)

	var total int64
	rows := make([]types.Row, 0, len(names))
	for _, name := range names {
		qty := counts[name]

		quote, err := pricer.LowestExact(ctx, name)
		if err != nil {
			return 0, nil, err
		}
		mode := "exact"
		if quote == nil {
			broad, err := pricer.LowestBroad(ctx, name)
			if err != nil {
				return 0, nil, err
			}
			if broad != nil {
				quote, mode = broad, "broad"
			}
		}

		row := types.Row{Name: name, Qty: qty, Mode: mode}
		if quote != nil {
			unit := quote.PriceCents
			row.UnitCents = &unit
			row.SubtotalCents = unit * int64(qty)
			row.Priced = true
			row.ListingID = quote.ListingID
			row.URL = quote.URL
			total += row.SubtotalCents
		}
		rows = append(rows, row)
	}
	return total, rows, nil
}

// SortedNames orders names ascending case-insensitively, ties broken by raw
// byte order. The ordering is load-bearing: it fixes the report layout.
func SortedNames(counts types.ItemCount) []string {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names
}
