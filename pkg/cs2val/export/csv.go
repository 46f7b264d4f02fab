package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

// WriteCSV serializes valuation rows and the grand total as flat CSV.
// Prices stay integer cents until this final rendering step.
func WriteCSV(w io.Writer, rows []types.Row, totalCents int64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "qty", "unit_usd", "subtotal_usd", "priced", "mode", "listing_id"}); err != nil {
		return err
	}
	for _, r := range rows {
		var unit int64
		if r.UnitCents != nil {
			unit = *r.UnitCents
		}
		priced := "no"
		if r.Priced {
			priced = "yes"
		}
		rec := []string{
			r.Name,
			strconv.Itoa(r.Qty),
			USD(unit),
			USD(r.SubtotalCents),
			priced,
			r.Mode,
			r.ListingID,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"TOTAL", "", "", USD(totalCents), "", "", ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// USD renders integer cents as a plain decimal with exactly two fractional
// digits, e.g. 1500 -> "15.00".
func USD(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
