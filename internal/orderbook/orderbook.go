// Package orderbook maintains a two-sided book for a single instrument.
//
// Incoming orders are matched against every crossing order resting on the
// other side, in the order that side is kept, and any remainder rests on the
// order's own side. An OrderBook is not safe for concurrent use; one owner
// applies events to it and hands Depth copies to everybody else.
package orderbook

import (
	"coinbase-orderbook-viewer/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderBook struct {
	bids         *side
	asks         *side
	displayDepth int
	askOrder     domain.AskOrderEnum
	logger       *zap.Logger
}

type Option func(*OrderBook)

func WithAskOrder(order domain.AskOrderEnum) Option {
	return func(ob *OrderBook) {
		ob.askOrder = order
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(ob *OrderBook) {
		ob.logger = logger
	}
}

func New(displayDepth int, opts ...Option) *OrderBook {
	ob := &OrderBook{
		displayDepth: displayDepth,
		askOrder:     domain.AskAscending,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ob)
	}

	ob.bids = newSide(domain.CompareDescending)
	if ob.askOrder == domain.AskDescending {
		ob.asks = newSide(domain.CompareDescending)
	} else {
		ob.asks = newSide(domain.CompareAscending)
	}

	return ob
}

func (ob *OrderBook) DisplayDepth() int {
	return ob.displayDepth
}

func (ob *OrderBook) AskOrder() domain.AskOrderEnum {
	return ob.askOrder
}

// ProcessAsk matches a sell order against every bid priced above it, drops
// the bids it used up and rests whatever volume is left on the ask side.
func (ob *OrderBook) ProcessAsk(incoming *domain.Order) {
	ob.process(incoming, ob.bids, ob.asks, func(resting *domain.Order) bool {
		return resting.Price().GreaterThan(incoming.Price())
	})
}

// ProcessBid matches a buy order against every ask priced below it, drops
// the asks it used up and rests whatever volume is left on the bid side.
func (ob *OrderBook) ProcessBid(incoming *domain.Order) {
	ob.process(incoming, ob.asks, ob.bids, func(resting *domain.Order) bool {
		return resting.Price().LessThan(incoming.Price())
	})
}

func (ob *OrderBook) process(incoming *domain.Order, opposite *side, own *side, crosses func(resting *domain.Order) bool) {
	opposite.each(func(resting *domain.Order) bool {
		if incoming.Volume().IsZero() {
			return false
		}
		if crosses(resting) {
			matched := decimal.Min(incoming.Volume(), resting.Volume())
			incoming.DecreaseVolume(matched)
			resting.DecreaseVolume(matched)
			ob.logger.Debug("matched",
				zap.Stringer("incoming", incoming),
				zap.Stringer("resting", resting),
				zap.String("volume", matched.String()))
		}
		return true
	})

	if removed := opposite.removeEmpty(); removed > 0 {
		ob.logger.Debug("removed filled orders", zap.Int("count", removed))
	}

	if incoming.Volume().IsPositive() {
		own.insert(incoming)
	}
}

// Bids returns the resting bids, highest price first.
func (ob *OrderBook) Bids() []domain.PriceLevel {
	return ob.bids.top(ob.bids.len())
}

// Asks returns the resting asks in the book's ask order.
func (ob *OrderBook) Asks() []domain.PriceLevel {
	return ob.asks.top(ob.asks.len())
}

// Depth copies at most n orders from the top of each side.
func (ob *OrderBook) Depth(n int) domain.Depth {
	return domain.Depth{
		Bids: ob.bids.top(n),
		Asks: ob.asks.top(n),
	}
}
