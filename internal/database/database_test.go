package database

import (
	"context"
	"testing"
	"time"

	"coinbase-orderbook-viewer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(price string, volume string) domain.PriceLevel {
	return domain.PriceLevel{Price: decimal.RequireFromString(price), Volume: decimal.RequireFromString(volume)}
}

func newService(t *testing.T) Service {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestService_PublishAndRecent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, domain.Depth{
		Product:   "BTC-USD",
		Sequence:  1,
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Bids:      []domain.PriceLevel{level("100", "5"), level("99", "1")},
	}))
	require.NoError(t, s.Publish(ctx, domain.Depth{
		Product:  "BTC-USD",
		Sequence: 2,
		Bids:     []domain.PriceLevel{level("100", "5")},
		Asks:     []domain.PriceLevel{level("103", "1"), level("101.5", "2")},
	}))

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	latest := records[0]
	assert.Equal(t, int64(2), latest.Sequence)
	require.NotNil(t, latest.AskPrice)
	assert.Equal(t, "101.5", *latest.AskPrice)
	assert.Equal(t, "2", *latest.AskVolume)
	require.NotNil(t, latest.Spread)
	assert.Equal(t, "1.5", *latest.Spread)
	assert.Equal(t, 1, latest.BidCount)
	assert.Equal(t, 2, latest.AskCount)

	first := records[1]
	assert.Equal(t, int64(1), first.Sequence)
	assert.Nil(t, first.AskPrice)
	assert.Nil(t, first.Spread)
	require.NotNil(t, first.BidPrice)
	assert.Equal(t, "100", *first.BidPrice)
	assert.True(t, first.RecordedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	limited, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestService_Health(t *testing.T) {
	s := newService(t)

	health := s.Health(context.Background())
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "0", health["rows"])

	require.NoError(t, s.Close())
	assert.Equal(t, "down", s.Health(context.Background())["status"])
}
