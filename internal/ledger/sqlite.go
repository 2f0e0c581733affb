package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
)

// SQLiteLedger persists trade records to a SQLite database.
type SQLiteLedger struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteLedger opens (or creates) the SQLite database and runs migrations.
func NewSQLiteLedger(dbPath string, log zerolog.Logger) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (stats queries
	// while the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	l := &SQLiteLedger{db: db, log: log.With().Str("component", "ledger").Logger()}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	l.log.Info().Str("path", dbPath).Msg("sqlite ledger opened")
	return l, nil
}

func (l *SQLiteLedger) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			asset      TEXT NOT NULL,
			price      REAL NOT NULL,
			amount_usd REAL NOT NULL,
			quantity   REAL NOT NULL,
			volatility REAL NOT NULL,
			tx_id      TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_asset_ts ON trades(asset, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(asset, status, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := l.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (l *SQLiteLedger) Append(ctx context.Context, rec *model.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `INSERT INTO trades
		(id, timestamp, asset, price, amount_usd, quantity, volatility, tx_id, status, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Timestamp.Unix(), rec.Asset, rec.Price, rec.AmountUSD,
		rec.Quantity, rec.Volatility, rec.TxID, string(rec.Status), rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) LastFilled(ctx context.Context, asset string) (*model.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.db.QueryRowContext(ctx, `SELECT id, timestamp, asset, price, amount_usd,
		quantity, volatility, tx_id, status, reason
		FROM trades WHERE asset = ? AND status = ?
		ORDER BY timestamp DESC LIMIT 1`, asset, string(model.StatusFilled))

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query last filled: %w", err)
	}
	return rec, nil
}

func (l *SQLiteLedger) History(ctx context.Context, asset string, limit int) ([]*model.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := `SELECT id, timestamp, asset, price, amount_usd, quantity, volatility,
		tx_id, status, reason FROM trades WHERE asset = ? ORDER BY timestamp DESC`
	args := []any{asset}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []*model.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) Stats(ctx context.Context, asset string) (*model.PortfolioStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(amount_usd), 0), COALESCE(SUM(quantity), 0),
		COALESCE(MIN(timestamp), 0), COALESCE(MAX(timestamp), 0)
		FROM trades WHERE asset = ? AND status = ?`,
		asset, string(model.StatusFilled))

	var count int
	var invested, holdings float64
	var firstTs, lastTs int64
	if err := row.Scan(&count, &invested, &holdings, &firstTs, &lastTs); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	stats := &model.PortfolioStats{
		Asset:         asset,
		TradeCount:    count,
		TotalInvested: invested,
		Holdings:      holdings,
	}
	if holdings > 0 {
		stats.AvgBuyPrice = invested / holdings
	}
	if count > 0 {
		stats.FirstTrade = time.Unix(firstTs, 0).UTC()
		stats.LastTrade = time.Unix(lastTs, 0).UTC()
	}
	return stats, nil
}

func (l *SQLiteLedger) Close() error {
	l.log.Info().Msg("closing sqlite ledger")
	return l.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*model.TradeRecord, error) {
	var rec model.TradeRecord
	var ts int64
	var status string
	if err := row.Scan(&rec.ID, &ts, &rec.Asset, &rec.Price, &rec.AmountUSD,
		&rec.Quantity, &rec.Volatility, &rec.TxID, &status, &rec.Reason); err != nil {
		return nil, err
	}
	rec.Timestamp = time.Unix(ts, 0).UTC()
	rec.Status = model.TradeStatus(status)
	return &rec, nil
}
