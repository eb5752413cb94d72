package server

import (
	"bytes"
	"encoding/json"

	"coinbase-orderbook-viewer/internal/domain"
	"coinbase-orderbook-viewer/internal/orderbook"
	"coinbase-orderbook-viewer/internal/platform/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var Logger = logger.Get()

const maxHistoryLimit = 1000

type bookResponse struct {
	Depth   domain.Depth        `json:"depth"`
	Summary domain.DepthSummary `json:"summary"`
}

type vwapResponse struct {
	Side   string          `json:"side"`
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Get("/health", s.healthHandler)
	s.App.Get("/book", s.bookHandler)
	s.App.Get("/book/text", s.bookTextHandler)
	s.App.Get("/book/vwap", s.vwapHandler)
	s.App.Get("/history", s.historyHandler)

	s.App.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.App.Get("/ws", websocket.New(s.streamHandler))
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok"}
	if _, ok := s.hub.Latest(); !ok {
		resp["status"] = "waiting for feed"
	}
	if s.db != nil {
		resp["database"] = s.db.Health(c.Context())
	}
	return c.JSON(resp)
}

func (s *FiberServer) latest() (domain.Depth, error) {
	depth, ok := s.hub.Latest()
	if !ok {
		return depth, fiber.NewError(fiber.StatusServiceUnavailable, "order book not ready")
	}
	return depth, nil
}

func (s *FiberServer) bookHandler(c *fiber.Ctx) error {
	depth, err := s.latest()
	if err != nil {
		return err
	}
	return c.JSON(bookResponse{Depth: depth, Summary: depth.Summarize()})
}

func (s *FiberServer) bookTextHandler(c *fiber.Ctx) error {
	depth, err := s.latest()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := orderbook.Render(&buf, depth, s.hub.Rows()); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (s *FiberServer) vwapHandler(c *fiber.Ctx) error {
	side, err := domain.ParseSide(c.Query("side"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	volume, err := decimal.NewFromString(c.Query("volume"))
	if err != nil || !volume.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "volume must be a positive number")
	}

	depth, err := s.latest()
	if err != nil {
		return err
	}

	price, filled, err := depth.AveragePriceForVolume(side, volume, c.QueryBool("exact", false))
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(vwapResponse{Side: side.String(), Price: price, Volume: filled})
}

func (s *FiberServer) historyHandler(c *fiber.Ctx) error {
	if s.db == nil {
		return fiber.NewError(fiber.StatusNotFound, "recorder is disabled")
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > maxHistoryLimit {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 1000")
	}

	records, err := s.db.Recent(c.Context(), limit)
	if err != nil {
		Logger.Error("Failed to read history: " + err.Error())
		return fiber.ErrInternalServerError
	}
	return c.JSON(records)
}

// streamHandler sends the latest depth and then every new one until the
// client goes away.
func (s *FiberServer) streamHandler(c *websocket.Conn) {
	updates, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(depth domain.Depth) bool {
		message, err := json.Marshal(bookResponse{Depth: depth, Summary: depth.Summarize()})
		if err != nil {
			Logger.Error("Failed to marshal depth: " + err.Error())
			return false
		}
		return c.WriteMessage(websocket.TextMessage, message) == nil
	}

	if depth, ok := s.hub.Latest(); ok && !write(depth) {
		return
	}

	for {
		select {
		case <-closed:
			return
		case depth, ok := <-updates:
			if !ok || !write(depth) {
				return
			}
		}
	}
}
