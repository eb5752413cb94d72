package orderbook

import (
	"coinbase-orderbook-viewer/internal/domain"

	"github.com/google/btree"
)

const sideBTreeDegree = 32

type restingOrder struct {
	order *domain.Order
	seq   uint64
}

// side keeps orders sorted by price in one direction. Orders at the same
// price stay in arrival order, the same result a stable re-sort after every
// insert would give.
type side struct {
	levels  *btree.BTreeG[restingOrder]
	nextSeq uint64
}

func newSide(compare func(a, b *domain.Order) int) *side {
	less := func(a, b restingOrder) bool {
		if c := compare(a.order, b.order); c != 0 {
			return c < 0
		}
		return a.seq < b.seq
	}
	return &side{levels: btree.NewG(sideBTreeDegree, less)}
}

func (s *side) insert(order *domain.Order) {
	s.levels.ReplaceOrInsert(restingOrder{order: order, seq: s.nextSeq})
	s.nextSeq++
}

// each visits orders in maintained order until fn returns false. Volumes may
// be changed during the walk, prices may not.
func (s *side) each(fn func(order *domain.Order) bool) {
	s.levels.Ascend(func(item restingOrder) bool {
		return fn(item.order)
	})
}

func (s *side) removeEmpty() int {
	var empty []restingOrder
	s.levels.Ascend(func(item restingOrder) bool {
		if item.order.Volume().IsZero() {
			empty = append(empty, item)
		}
		return true
	})
	for _, item := range empty {
		s.levels.Delete(item)
	}
	return len(empty)
}

func (s *side) len() int {
	return s.levels.Len()
}

func (s *side) top(n int) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, max(0, min(n, s.len())))
	s.each(func(order *domain.Order) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, order.Level())
		return true
	})
	return out
}
