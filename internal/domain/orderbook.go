package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type PriceLevel struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

func (l PriceLevel) String() string {
	return formatLevel(l.Price, l.Volume)
}

// Depth is a bounded copy of both sides of a book, each side in the order
// the book keeps it.
type Depth struct {
	Product   string       `json:"product"`
	Sequence  int64        `json:"sequence"`
	UpdatedAt time.Time    `json:"updated_at"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

type DepthSummary struct {
	BestBid *PriceLevel      `json:"best_bid"`
	BestAsk *PriceLevel      `json:"best_ask"`
	Spread  *decimal.Decimal `json:"spread"`
}

// Summarize finds the best bid (highest) and best ask (lowest) whatever order
// the sides are kept in.
func (d Depth) Summarize() DepthSummary {
	summary := DepthSummary{}

	for i := range d.Bids {
		if summary.BestBid == nil || d.Bids[i].Price.GreaterThan(summary.BestBid.Price) {
			bid := d.Bids[i]
			summary.BestBid = &bid
		}
	}
	for i := range d.Asks {
		if summary.BestAsk == nil || d.Asks[i].Price.LessThan(summary.BestAsk.Price) {
			ask := d.Asks[i]
			summary.BestAsk = &ask
		}
	}

	if summary.BestBid != nil && summary.BestAsk != nil {
		spread := summary.BestAsk.Price.Sub(summary.BestBid.Price)
		summary.Spread = &spread
	}

	return summary
}

// AveragePriceForVolume walks one side best price first and returns the
// volume weighted price of filling volume against it. Buying walks the asks,
// selling walks the bids. With exactMatch, a side that cannot fill the whole
// volume is an error.
func (d Depth) AveragePriceForVolume(side SideEnum, volume decimal.Decimal, exactMatch bool) (price decimal.Decimal, totalVolume decimal.Decimal, err error) {
	var levels []PriceLevel
	if side == Buy {
		levels = slices.Clone(d.Asks)
		slices.SortStableFunc(levels, func(a, b PriceLevel) int {
			return a.Price.Cmp(b.Price)
		})
	} else {
		levels = slices.Clone(d.Bids)
		slices.SortStableFunc(levels, func(a, b PriceLevel) int {
			return b.Price.Cmp(a.Price)
		})
	}

	if len(levels) == 0 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("no levels available to %s against for %s", side, d.Product)
	}

	// Accumulate volume until we reach target
	accumulatedVolume := decimal.Zero
	weightedPrice := decimal.Zero

	for _, level := range levels {
		remaining := volume.Sub(accumulatedVolume)
		if !remaining.IsPositive() {
			break
		}

		volumeToAdd := decimal.Min(level.Volume, remaining)
		weightedPrice = weightedPrice.Add(level.Price.Mul(volumeToAdd))
		accumulatedVolume = accumulatedVolume.Add(volumeToAdd)
	}

	if exactMatch && accumulatedVolume.LessThan(volume) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("insufficient volume in order book for %s", d.Product)
	}

	if accumulatedVolume.IsPositive() {
		return weightedPrice.Div(accumulatedVolume), accumulatedVolume, nil
	}
	return decimal.Zero, decimal.Zero, fmt.Errorf("no volume available in order book for %s", d.Product)
}
