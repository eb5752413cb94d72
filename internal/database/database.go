// Package database records the top of the book after every applied event.
// It is an inspection log only; books are never rebuilt from it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"coinbase-orderbook-viewer/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS top_of_book (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	product     TEXT    NOT NULL,
	sequence    INTEGER NOT NULL,
	bid_price   TEXT,
	bid_volume  TEXT,
	ask_price   TEXT,
	ask_volume  TEXT,
	spread      TEXT,
	bid_count   INTEGER NOT NULL,
	ask_count   INTEGER NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS top_of_book_product_idx ON top_of_book (product, sequence);
`

type TopOfBook struct {
	Product    string    `json:"product"`
	Sequence   int64     `json:"sequence"`
	BidPrice   *string   `json:"bid_price"`
	BidVolume  *string   `json:"bid_volume"`
	AskPrice   *string   `json:"ask_price"`
	AskVolume  *string   `json:"ask_volume"`
	Spread     *string   `json:"spread"`
	BidCount   int       `json:"bid_count"`
	AskCount   int       `json:"ask_count"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Service is a domain.DepthSink backed by sqlite.
type Service interface {
	Health(ctx context.Context) map[string]string
	Publish(ctx context.Context, depth domain.Depth) error
	Recent(ctx context.Context, limit int) ([]TopOfBook, error)
	Close() error
}

type service struct {
	db   *sql.DB
	path string
}

func New(path string) (Service, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows one writer; this also keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &service{db: db, path: path}, nil
}

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := map[string]string{}
	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	stats["status"] = "up"
	stats["path"] = s.path

	var rows int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM top_of_book`).Scan(&rows); err == nil {
		stats["rows"] = strconv.Itoa(rows)
	}
	return stats
}

func (s *service) Publish(ctx context.Context, depth domain.Depth) error {
	summary := depth.Summarize()

	var bidPrice, bidVolume, askPrice, askVolume, spread *string
	if summary.BestBid != nil {
		bidPrice, bidVolume = text(summary.BestBid.Price.String()), text(summary.BestBid.Volume.String())
	}
	if summary.BestAsk != nil {
		askPrice, askVolume = text(summary.BestAsk.Price.String()), text(summary.BestAsk.Volume.String())
	}
	if summary.Spread != nil {
		spread = text(summary.Spread.String())
	}

	recordedAt := depth.UpdatedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO top_of_book (product, sequence, bid_price, bid_volume, ask_price, ask_volume, spread, bid_count, ask_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		depth.Product, depth.Sequence, bidPrice, bidVolume, askPrice, askVolume, spread,
		len(depth.Bids), len(depth.Asks), recordedAt)
	if err != nil {
		return fmt.Errorf("record top of book: %w", err)
	}
	return nil
}

// Recent returns the latest limit records, newest first.
func (s *service) Recent(ctx context.Context, limit int) ([]TopOfBook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product, sequence, bid_price, bid_volume, ask_price, ask_volume, spread, bid_count, ask_count, recorded_at
		FROM top_of_book
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top of book: %w", err)
	}
	defer rows.Close()

	records := make([]TopOfBook, 0)
	for rows.Next() {
		var r TopOfBook
		if err := rows.Scan(&r.Product, &r.Sequence, &r.BidPrice, &r.BidVolume, &r.AskPrice, &r.AskVolume,
			&r.Spread, &r.BidCount, &r.AskCount, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan top of book: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *service) Close() error {
	return s.db.Close()
}

func text(s string) *string {
	return &s
}
