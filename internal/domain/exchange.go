package domain

import "context"

type Exchanger interface {
	GetName() string
	SubscribeOrderBook(ctx context.Context, product string) <-chan FeedResult
}

// DepthSink receives a copy of the top of the book after every applied event.
type DepthSink interface {
	Publish(ctx context.Context, depth Depth) error
}
