package orderbook

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"coinbase-orderbook-viewer/internal/domain"
)

const (
	lineWidth   = 60
	columnWidth = lineWidth / 2
)

// RenderTopLevels writes at most DisplayDepth rows of the book, bids on the
// left and asks on the right.
func (ob *OrderBook) RenderTopLevels(w io.Writer) error {
	return Render(w, ob.Depth(ob.displayDepth), ob.displayDepth)
}

func (ob *OrderBook) String() string {
	var buf bytes.Buffer
	_ = ob.RenderTopLevels(&buf)
	return buf.String()
}

// Render writes depth as two aligned columns, showing at most rows levels.
func Render(w io.Writer, depth domain.Depth, rows int) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%*s%-*s\n", columnWidth, "Bids -", columnWidth, "- Asks")
	b.WriteString(strings.Repeat("=", lineWidth))
	b.WriteString("\n")

	rows = min(rows, max(len(depth.Bids), len(depth.Asks)))
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%*s%-*s\n",
			columnWidth, levelAt(depth.Bids, i)+" -",
			columnWidth, "- "+levelAt(depth.Asks, i))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func levelAt(levels []domain.PriceLevel, i int) string {
	if i < 0 || i >= len(levels) {
		return ""
	}
	return levels[i].String()
}
