package render

import (
	"io"

	"github.com/Rhymond/go-money"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

// TableRenderer prints a column-aligned valuation table with a TOTAL
// footer. Column widths derive only from the rows, so the layout is a pure
// function of the input.
type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, rows []types.Row, totalCents int64, opts Options) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false

	hdr := table.Row{"ITEM", "QTY", "UNIT ($)", "SUBTOTAL ($)", "MODE"}
	if opts.ShowSource {
		hdr = append(hdr, "SOURCE")
	}
	tw.AppendHeader(hdr)

	cfgs := []table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
	}
	if opts.MaxColWidth > 0 {
		cfgs = append(cfgs, table.ColumnConfig{Number: 1, WidthMax: opts.MaxColWidth})
	}
	tw.SetColumnConfigs(cfgs)

	for _, row := range rows {
		unit := "n/a"
		if row.UnitCents != nil {
			unit = USD(*row.UnitCents)
		}
		out := table.Row{row.Name, row.Qty, unit, USD(row.SubtotalCents), row.Mode}
		if opts.ShowSource {
			out = append(out, source(row))
		}
		tw.AppendRow(out)
	}

	ftr := table.Row{"TOTAL", "", "", USD(totalCents), ""}
	if opts.ShowSource {
		ftr = append(ftr, "")
	}
	tw.AppendFooter(ftr)

	tw.Render()
	return nil
}

func source(row types.Row) string {
	if !row.Priced {
		return "none found"
	}
	return "id=" + row.ListingID
}

// USD renders integer cents as a dollar amount with thousands separators,
// e.g. 123456 -> "$1,234.56".
func USD(cents int64) string {
	return money.New(cents, money.USD).Display()
}
