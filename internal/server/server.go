package server

import (
	"github.com/gofiber/fiber/v2"

	"coinbase-orderbook-viewer/internal/database"
)

type FiberServer struct {
	*fiber.App

	hub *Hub
	db  database.Service
}

// New builds the HTTP surface over hub. db may be nil when recording is off.
func New(hub *Hub, db database.Service) *FiberServer {
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader:          "coinbase-orderbook-viewer",
			AppName:               "coinbase-orderbook-viewer",
			DisableStartupMessage: true,
		}),

		hub: hub,
		db:  db,
	}

	return server
}
