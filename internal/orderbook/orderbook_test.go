package orderbook

import (
	"math/rand"
	"testing"

	"coinbase-orderbook-viewer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(price string, volume string) *domain.Order {
	return domain.NewOrder(decimal.RequireFromString(price), decimal.RequireFromString(volume))
}

func levels(ls []domain.PriceLevel) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.String())
	}
	return out
}

func TestProcessBid_EmptyBook(t *testing.T) {
	ob := New(10)

	ob.ProcessBid(order("100", "5"))

	assert.Equal(t, []string{"5.0000@100.00"}, levels(ob.Bids()))
	assert.Empty(t, ob.Asks())
}

func TestProcessAsk_FullyConsumedIncoming(t *testing.T) {
	ob := New(10)
	ob.ProcessBid(order("100", "5"))

	ob.ProcessAsk(order("90", "3"))

	assert.Equal(t, []string{"2.0000@100.00"}, levels(ob.Bids()))
	assert.Empty(t, ob.Asks())
}

func TestProcessAsk_RemainderRests(t *testing.T) {
	ob := New(10)
	ob.ProcessBid(order("100", "5"))

	ob.ProcessAsk(order("90", "8"))

	assert.Empty(t, ob.Bids())
	assert.Equal(t, []string{"3.0000@90.00"}, levels(ob.Asks()))
}

func TestProcessAsk_NoCrossRestsInFull(t *testing.T) {
	ob := New(10)
	ob.ProcessBid(order("100", "5"))

	// equal prices do not cross
	ob.ProcessAsk(order("100", "1"))
	ob.ProcessAsk(order("120", "2"))

	assert.Equal(t, []string{"5.0000@100.00"}, levels(ob.Bids()))
	assert.Equal(t, []string{"1.0000@100.00", "2.0000@120.00"}, levels(ob.Asks()))
}

func TestProcessBid_WalksWholeSide(t *testing.T) {
	ob := New(10)
	ob.ProcessAsk(order("101", "1"))
	ob.ProcessAsk(order("102", "1"))
	ob.ProcessAsk(order("103", "1"))

	ob.ProcessBid(order("110", "2.5"))

	assert.Equal(t, []string{"0.5000@103.00"}, levels(ob.Asks()))
	assert.Empty(t, ob.Bids())
}

func TestProcessBid_FollowsMaintainedAskOrder(t *testing.T) {
	tests := []struct {
		name     string
		askOrder domain.AskOrderEnum
		before   []string
		incoming *domain.Order
		asks     []string
		bids     []string
	}{
		{
			name:     "descending asks, partial cross",
			askOrder: domain.AskDescending,
			before:   []string{"2.0000@95.00", "4.0000@90.00"},
			incoming: order("93", "5"),
			asks:     []string{"2.0000@95.00"},
			bids:     []string{"1.0000@93.00"},
		},
		{
			name:     "ascending asks, partial cross",
			askOrder: domain.AskAscending,
			before:   []string{"4.0000@90.00", "2.0000@95.00"},
			incoming: order("93", "5"),
			asks:     []string{"2.0000@95.00"},
			bids:     []string{"1.0000@93.00"},
		},
		{
			name:     "descending asks fill the highest crossing ask first",
			askOrder: domain.AskDescending,
			before:   []string{"2.0000@95.00", "4.0000@90.00"},
			incoming: order("100", "3"),
			asks:     []string{"3.0000@90.00"},
			bids:     []string{},
		},
		{
			name:     "ascending asks fill the lowest ask first",
			askOrder: domain.AskAscending,
			before:   []string{"4.0000@90.00", "2.0000@95.00"},
			incoming: order("100", "3"),
			asks:     []string{"1.0000@90.00", "2.0000@95.00"},
			bids:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ob := New(10, WithAskOrder(tt.askOrder))
			ob.ProcessAsk(order("95", "2"))
			ob.ProcessAsk(order("90", "4"))
			require.Equal(t, tt.before, levels(ob.Asks()))

			ob.ProcessBid(tt.incoming)

			assert.Equal(t, tt.asks, levels(ob.Asks()))
			assert.Equal(t, tt.bids, levels(ob.Bids()))
		})
	}
}

func TestProcess_EqualPricesKeepArrivalOrder(t *testing.T) {
	ob := New(10)
	ob.ProcessBid(order("100", "1"))
	ob.ProcessBid(order("100", "2"))
	ob.ProcessBid(order("101", "3"))

	assert.Equal(t, []string{"3.0000@101.00", "1.0000@100.00", "2.0000@100.00"}, levels(ob.Bids()))

	// the earlier of the two 100 bids is consumed first
	ob.ProcessAsk(order("99", "4"))
	assert.Equal(t, []string{"2.0000@100.00"}, levels(ob.Bids()))
}

func TestProcess_ZeroVolumeIsNoop(t *testing.T) {
	ob := New(10)
	ob.ProcessBid(order("100", "5"))
	ob.ProcessAsk(order("110", "1"))

	ob.ProcessBid(order("120", "0"))
	ob.ProcessAsk(order("90", "0"))

	assert.Equal(t, []string{"5.0000@100.00"}, levels(ob.Bids()))
	assert.Equal(t, []string{"1.0000@110.00"}, levels(ob.Asks()))
}

func TestDepth_Bounded(t *testing.T) {
	ob := New(2)
	ob.ProcessBid(order("100", "5"))
	ob.ProcessBid(order("95", "2"))
	ob.ProcessBid(order("90", "1"))

	depth := ob.Depth(2)
	assert.Equal(t, []string{"5.0000@100.00", "2.0000@95.00"}, levels(depth.Bids))
	assert.Empty(t, depth.Asks)
	assert.Len(t, ob.Bids(), 3)
}

func sum(ls []domain.PriceLevel) decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Volume)
	}
	return total
}

func assertInvariants(t *testing.T, ob *OrderBook) {
	t.Helper()

	bids := ob.Bids()
	for i, bid := range bids {
		if !bid.Volume.IsPositive() {
			require.Failf(t, "non-positive bid volume", "%s", bid)
		}
		if i > 0 && bid.Price.GreaterThan(bids[i-1].Price) {
			require.Failf(t, "bids out of order", "%v", levels(bids))
		}
	}

	asks := ob.Asks()
	for i, ask := range asks {
		if !ask.Volume.IsPositive() {
			require.Failf(t, "non-positive ask volume", "%s", ask)
		}
		if i == 0 {
			continue
		}
		outOfOrder := ask.Price.LessThan(asks[i-1].Price)
		if ob.AskOrder() == domain.AskDescending {
			outOfOrder = ask.Price.GreaterThan(asks[i-1].Price)
		}
		if outOfOrder {
			require.Failf(t, "asks out of order", "%v", levels(asks))
		}
	}
}

func TestProcess_RandomSequencesKeepInvariants(t *testing.T) {
	for _, askOrder := range []domain.AskOrderEnum{domain.AskAscending, domain.AskDescending} {
		t.Run(askOrder.String(), func(t *testing.T) {
			rnd := rand.New(rand.NewSource(42))
			ob := New(10, WithAskOrder(askOrder))

			for i := 0; i < 2000; i++ {
				price := decimal.NewFromInt(int64(90 + rnd.Intn(21)))
				volume := decimal.New(int64(rnd.Intn(1000)), -2)
				incoming := domain.NewOrder(price, volume)
				isBid := rnd.Intn(2) == 0

				var oppositeBefore, ownBefore []domain.PriceLevel
				if isBid {
					oppositeBefore, ownBefore = ob.Asks(), ob.Bids()
					ob.ProcessBid(incoming)
				} else {
					oppositeBefore, ownBefore = ob.Bids(), ob.Asks()
					ob.ProcessAsk(incoming)
				}

				var oppositeAfter, ownAfter []domain.PriceLevel
				if isBid {
					oppositeAfter, ownAfter = ob.Asks(), ob.Bids()
				} else {
					oppositeAfter, ownAfter = ob.Bids(), ob.Asks()
				}

				consumed := volume.Sub(incoming.Volume())
				removed := sum(oppositeBefore).Sub(sum(oppositeAfter))
				require.True(t, consumed.Equal(removed), "step %d: incoming lost %s, resting lost %s", i, consumed, removed)
				require.False(t, incoming.Volume().IsNegative())

				if incoming.Volume().IsZero() {
					require.Len(t, ownAfter, len(ownBefore), "step %d: exhausted order rested", i)
				} else {
					require.Len(t, ownAfter, len(ownBefore)+1)
				}

				assertInvariants(t, ob)
			}
		})
	}
}
