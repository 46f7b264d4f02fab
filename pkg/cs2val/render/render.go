package render

import (
	"io"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

// Renderer renders valuation rows to an output writer.
type Renderer interface {
	Render(w io.Writer, rows []types.Row, totalCents int64, opts Options) error
}

type Options struct {
	Color       bool
	ShowSource  bool
	MaxColWidth int
}
