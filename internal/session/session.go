// Package session drives one order book from one feed subscription.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"coinbase-orderbook-viewer/internal/domain"
	"coinbase-orderbook-viewer/internal/orderbook"
	"coinbase-orderbook-viewer/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var Logger = logger.Get()
var StateLogger = logger.GetStateLogger()

var ErrFeedClosed = errors.New("feed closed unexpectedly")

type Alerter interface {
	Alert(product string, reason error) error
}

type Session struct {
	Id       string
	Product  string
	exchange domain.Exchanger
	book     *orderbook.OrderBook
	out      io.Writer
	sinks    []domain.DepthSink
	alerter  Alerter
	sequence int64
}

type Option func(*Session)

func WithSink(sink domain.DepthSink) Option {
	return func(s *Session) {
		s.sinks = append(s.sinks, sink)
	}
}

func WithAlerter(alerter Alerter) Option {
	return func(s *Session) {
		s.alerter = alerter
	}
}

func New(exchange domain.Exchanger, book *orderbook.OrderBook, product string, out io.Writer, opts ...Option) *Session {
	s := &Session{
		Id:       uuid.NewString(),
		Product:  product,
		exchange: exchange,
		book:     book,
		out:      out,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run applies feed events to the book one at a time until ctx is cancelled,
// which is a clean stop, or the feed fails. An error event from the feed ends
// the session with a *domain.FeedError.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	Logger.Info("Start session "+s.Id+" for "+s.Product+" on "+s.exchange.GetName(), zap.String("session", s.Id))

	for result := range s.exchange.SubscribeOrderBook(ctx, s.Product) {
		if result.Err != nil {
			return s.terminate(fmt.Errorf("feed for %s failed: %w", s.Product, result.Err))
		}
		if err := s.Apply(ctx, result.Event); err != nil {
			return s.terminate(err)
		}
	}

	if ctx.Err() != nil {
		Logger.Info("Stop session "+s.Id, zap.Int64("events", s.sequence))
		return nil
	}
	return s.terminate(ErrFeedClosed)
}

// Apply feeds one event through the book, renders it and publishes the new
// top of book to every sink.
func (s *Session) Apply(ctx context.Context, event *domain.FeedEvent) error {
	switch event.Kind {
	case domain.Snapshot:
		for _, ask := range event.Asks {
			s.book.ProcessAsk(domain.NewOrder(ask.Price, ask.Volume))
		}
		for _, bid := range event.Bids {
			s.book.ProcessBid(domain.NewOrder(bid.Price, bid.Volume))
		}
	case domain.Update:
		for _, change := range event.Changes {
			order := domain.NewOrder(change.Level.Price, change.Level.Volume)
			if change.Side == domain.Buy {
				s.book.ProcessBid(order)
			} else {
				s.book.ProcessAsk(order)
			}
		}
	case domain.Error:
		return &domain.FeedError{Reason: event.Reason}
	default:
		return fmt.Errorf("unknown feed event kind: %d", event.Kind)
	}

	s.sequence++

	if err := s.book.RenderTopLevels(s.out); err != nil {
		return fmt.Errorf("failed to render order book: %w", err)
	}

	depth := s.book.Depth(s.book.DisplayDepth())
	depth.Product = s.Product
	depth.Sequence = s.sequence
	depth.UpdatedAt = time.Now().UTC()

	StateLogger.Info("Applied "+event.Kind.String()+" for "+s.Product,
		zap.String("session", s.Id),
		zap.Int64("sequence", s.sequence),
		zap.Stringers("bids", depth.Bids),
		zap.Stringers("asks", depth.Asks))

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, depth); err != nil {
			Logger.Error("Failed to publish depth: "+err.Error(), zap.String("session", s.Id))
		}
	}

	return nil
}

func (s *Session) terminate(reason error) error {
	Logger.Error("Session "+s.Id+" terminated: "+reason.Error(), zap.Int64("events", s.sequence))
	if s.alerter != nil {
		if err := s.alerter.Alert(s.Product, reason); err != nil {
			Logger.Error("Failed to send alert: " + err.Error())
		}
	}
	return reason
}
