package types

// Asset is a single inventory entry after merging ownership data with its
// description. Rebuilt on every fetch; never persisted.
type Asset struct {
	Name       string
	Marketable bool
}

// ItemCount maps a market hash name to the number of copies owned.
// Iteration order carries no meaning; the valuation engine sorts.
type ItemCount map[string]int

// Quote is the cheapest listing found for a name. Immutable once obtained.
type Quote struct {
	PriceCents int64
	ListingID  string
	URL        string
}

// Row is one line of a valuation report.
// UnitCents is nil when no listing was found; SubtotalCents is then zero.
type Row struct {
	Name          string
	Qty           int
	UnitCents     *int64
	SubtotalCents int64
	Priced        bool
	Mode          string // "exact" or "broad"
	ListingID     string
	URL           string
}
