package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type FeedEventKindEnum int

const (
	Snapshot FeedEventKindEnum = iota
	Update
	Error
)

func (e FeedEventKindEnum) String() string {
	return []string{"Snapshot", "Update", "Error"}[e]
}

// Change is one entry of an incremental update.
type Change struct {
	Side  SideEnum
	Level PriceLevel
}

// FeedEvent is a normalized message from an upstream feed. Which fields are
// set depends on Kind: Asks and Bids for Snapshot, Changes for Update and
// Reason for Error.
type FeedEvent struct {
	Kind    FeedEventKindEnum
	Product string
	Asks    []PriceLevel
	Bids    []PriceLevel
	Changes []Change
	Reason  string
}

// FeedResult is what a feed subscription yields. A non-nil Err ends the
// subscription.
type FeedResult struct {
	Event *FeedEvent
	Err   error
}

// FeedError is an error reported by the upstream feed itself. It is fatal to
// the session and never retried.
type FeedError struct {
	Reason string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed reported an error: %s", e.Reason)
}

func ParseLevel(price string, volume string) (PriceLevel, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return PriceLevel{}, fmt.Errorf("expected price to be a number; got %q", price)
	}
	v, err := decimal.NewFromString(volume)
	if err != nil {
		return PriceLevel{}, fmt.Errorf("expected size to be a number; got %q", volume)
	}
	return PriceLevel{Price: p, Volume: v}, nil
}
