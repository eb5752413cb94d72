package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"coinbase-orderbook-viewer/internal/domain"

	"github.com/imdario/mergo"
)

type Config struct {
	Product      string
	DisplayDepth int
	AskOrder     string

	Feed struct {
		Url     string
		Channel string
	}

	Server struct {
		Enabled bool
		Port    int
	}

	Recorder struct {
		Path string
	}

	Discord struct {
		WebhookUrl string
	}
}

const DefaultPath = "config.json"

var Default = func() Config {
	c := Config{
		DisplayDepth: 10,
		AskOrder:     domain.AskAscending.String(),
	}
	c.Feed.Url = "wss://ws-feed.exchange.coinbase.com"
	c.Feed.Channel = "level2_batch"
	c.Server.Port = 8080
	return c
}()

// Load reads the json config at path, fills anything left unset from Default
// and then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Config{}

	configBytes, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err == nil {
		if err := json.Unmarshal(configBytes, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := mergo.Merge(&config, Default); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return &config, config.Validate()
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PRODUCT_ID"); ok {
		c.Product = v
	}
	if v, ok := os.LookupEnv("COINBASE_WS_URL"); ok {
		c.Feed.Url = v
	}
	if v, ok := os.LookupEnv("RECORDER_PATH"); ok {
		c.Recorder.Path = v
	}
	if v, ok := os.LookupEnv("DISCORD_WEBHOOK_URL"); ok {
		c.Discord.WebhookUrl = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
		c.Server.Enabled = true
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DisplayDepth <= 0 {
		return fmt.Errorf("display depth must be positive, got %d", c.DisplayDepth)
	}
	if _, err := domain.ParseAskOrder(c.AskOrder); err != nil {
		return err
	}
	if c.Feed.Url == "" {
		return errors.New("feed url is required")
	}
	return nil
}

func (c *Config) AskOrderEnum() domain.AskOrderEnum {
	order, _ := domain.ParseAskOrder(c.AskOrder)
	return order
}
