package coinbase

import (
	"context"
	"encoding/json"
	"fmt"

	"coinbase-orderbook-viewer/internal/domain"
	"coinbase-orderbook-viewer/internal/platform/logger"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/tidwall/gjson"
)

type CoinbaseExchange struct {
	websocketBaseUrl string
	channel          string
}

const coinbaseWebsocketBaseUrl = "wss://ws-feed.exchange.coinbase.com"
const coinbaseLevel2Channel = "level2_batch"

var Logger = logger.Get()

func CreateClient(websocketUrl string, channel string) *CoinbaseExchange {
	if websocketUrl == "" {
		websocketUrl = coinbaseWebsocketBaseUrl
	}
	if channel == "" {
		channel = coinbaseLevel2Channel
	}

	return &CoinbaseExchange{
		websocketBaseUrl: websocketUrl,
		channel:          channel,
	}
}

func (exchange *CoinbaseExchange) GetName() string {
	return domain.Coinbase.String()
}

// SubscribeOrderBook streams normalized snapshot, update and error events for
// product. A transport or parse failure is delivered as the last result. The
// channel is closed when the subscription ends, including on cancellation.
func (exchange *CoinbaseExchange) SubscribeOrderBook(ctx context.Context, product string) <-chan domain.FeedResult {
	resultCh := make(chan domain.FeedResult)

	send := func(result domain.FeedResult) bool {
		select {
		case resultCh <- result:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(resultCh)

		Logger.Info("Subscribing to Coinbase websocket for product: " + product)

		c, _, err := websocket.Dial(ctx, exchange.websocketBaseUrl, nil)
		if err != nil {
			send(domain.FeedResult{Err: fmt.Errorf("failed to dial coinbase websocket: %w", err)})
			return
		}
		defer c.CloseNow()
		c.SetReadLimit(-1) // snapshots are large

		if err := exchange.subscribe(ctx, c, product); err != nil {
			send(domain.FeedResult{Err: err})
			return
		}

		for {
			messageType, message, err := c.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					Logger.Info("Context done. Closing Coinbase websocket connection.")
					c.Close(websocket.StatusNormalClosure, "")
					return
				}
				send(domain.FeedResult{Err: fmt.Errorf("failed to read message from coinbase websocket: %w", err)})
				return
			}

			if messageType != websocket.MessageText {
				Logger.Warn(fmt.Sprintf("Received unknown message type from Coinbase websocket: %v", messageType))
				continue
			}

			event, err := parseMessage(message)
			if err != nil {
				send(domain.FeedResult{Err: err})
				return
			}
			if event == nil {
				continue
			}

			if !send(domain.FeedResult{Event: event}) {
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}()

	return resultCh
}

func (exchange *CoinbaseExchange) subscribe(ctx context.Context, c *websocket.Conn, product string) error {
	request := CoinbaseSubscribeRequest{
		Type:       "subscribe",
		ProductIds: []string{product},
		Channels: []any{
			exchange.channel,
			CoinbaseSubscribeChannel{Name: "ticker", ProductIds: []string{product}},
		},
	}

	Logger.Info("Sending subscribe message to Coinbase websocket.")
	if err := wsjson.Write(ctx, c, request); err != nil {
		return fmt.Errorf("failed to send subscribe message to coinbase websocket: %w", err)
	}
	return nil
}

// parseMessage returns nil for messages that carry nothing for the book.
func parseMessage(message []byte) (*domain.FeedEvent, error) {
	if !gjson.ValidBytes(message) {
		return nil, fmt.Errorf("received invalid json from coinbase: %q", message)
	}

	messageType := gjson.GetBytes(message, "type").String()
	switch messageType {
	case "snapshot":
		return parseSnapshot(message)
	case "l2update":
		return parseL2Update(message)
	case "error":
		return parseError(message)
	default:
		Logger.Debug("Ignoring Coinbase message of type: " + messageType)
		return nil, nil
	}
}

func parseSnapshot(message []byte) (*domain.FeedEvent, error) {
	var snapshot CoinbaseSnapshotMessage
	if err := json.Unmarshal(message, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coinbase snapshot: %w", err)
	}

	asks, err := toLevels(snapshot.Asks)
	if err != nil {
		return nil, err
	}
	bids, err := toLevels(snapshot.Bids)
	if err != nil {
		return nil, err
	}

	return &domain.FeedEvent{
		Kind:    domain.Snapshot,
		Product: snapshot.ProductId,
		Asks:    asks,
		Bids:    bids,
	}, nil
}

func parseL2Update(message []byte) (*domain.FeedEvent, error) {
	var update CoinbaseL2UpdateMessage
	if err := json.Unmarshal(message, &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coinbase l2update: %w", err)
	}

	changes := make([]domain.Change, 0, len(update.Changes))
	for _, change := range update.Changes {
		side, err := domain.ParseSide(change[0])
		if err != nil {
			return nil, err
		}
		level, err := domain.ParseLevel(change[1], change[2])
		if err != nil {
			return nil, err
		}
		changes = append(changes, domain.Change{Side: side, Level: level})
	}

	return &domain.FeedEvent{
		Kind:    domain.Update,
		Product: update.ProductId,
		Changes: changes,
	}, nil
}

func parseError(message []byte) (*domain.FeedEvent, error) {
	var errorMessage CoinbaseErrorMessage
	if err := json.Unmarshal(message, &errorMessage); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coinbase error: %w", err)
	}

	reason := errorMessage.Reason
	if reason == "" {
		reason = errorMessage.Message
	}

	return &domain.FeedEvent{Kind: domain.Error, Reason: reason}, nil
}

func toLevels(entries [][2]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(entries))
	for _, entry := range entries {
		level, err := domain.ParseLevel(entry[0], entry[1])
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}
