package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coinbase-orderbook-viewer/internal/database"
	"coinbase-orderbook-viewer/internal/exchange/coinbase"
	"coinbase-orderbook-viewer/internal/orderbook"
	"coinbase-orderbook-viewer/internal/platform/config"
	"coinbase-orderbook-viewer/internal/platform/logger"
	"coinbase-orderbook-viewer/internal/server"
	"coinbase-orderbook-viewer/internal/session"

	_ "github.com/joho/godotenv/autoload"
)

var Logger = logger.Get()

func gracefulShutdown(fiberServer *server.FiberServer) {
	// The server has 5 seconds to finish the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fiberServer.ShutdownWithContext(ctx); err != nil {
		Logger.Error("Server forced to shutdown with error: " + err.Error())
	}

	Logger.Info("Server exiting")
}

// readProduct takes the product from the command line, then the config, and
// asks for it on stdin as a last resort.
func readProduct(cfg *config.Config) string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if cfg.Product != "" {
		return cfg.Product
	}

	fmt.Print("Please enter a Product ID: ")
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

func run() int {
	defer Logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		Logger.Error("Failed to load config: " + err.Error())
		return 1
	}

	product := readProduct(cfg)
	if product == "" {
		fmt.Printf("Syntax: %s product-id\n", os.Args[0])
		fmt.Println("\nExamples:")
		fmt.Printf("%s BTC-USD\n", os.Args[0])
		fmt.Printf("%s ETH-USD\n", os.Args[0])
		return 2
	}

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	book := orderbook.New(cfg.DisplayDepth,
		orderbook.WithAskOrder(cfg.AskOrderEnum()),
		orderbook.WithLogger(Logger))

	opts := []session.Option{
		session.WithAlerter(session.NewDiscordAlerter(cfg.Discord.WebhookUrl)),
	}

	var db database.Service
	if cfg.Recorder.Path != "" {
		db, err = database.New(cfg.Recorder.Path)
		if err != nil {
			Logger.Error("Failed to open recorder: " + err.Error())
			return 1
		}
		defer db.Close()
		opts = append(opts, session.WithSink(db))
	}

	if cfg.Server.Enabled {
		hub := server.NewHub(cfg.DisplayDepth)
		opts = append(opts, session.WithSink(hub))

		fiberServer := server.New(hub, db)
		fiberServer.RegisterFiberRoutes()

		go func() {
			err := fiberServer.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
			if err != nil {
				Logger.Error("http server error: " + err.Error())
			}
		}()
		defer gracefulShutdown(fiberServer)
	}

	exchange := coinbase.CreateClient(cfg.Feed.Url, cfg.Feed.Channel)
	fmt.Println("Fetching data for product: " + product)

	if err := session.New(exchange, book, product, os.Stdout, opts...).Run(ctx); err != nil {
		return 1
	}

	Logger.Info("Shutting down application.")
	return 0
}

func main() {
	os.Exit(run())
}
