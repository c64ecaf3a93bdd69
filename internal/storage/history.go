package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reginold/asset-management/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// HistoryStore keeps the imported transaction history in SQLite. The
// review workflow reads it to rank unreviewed merchants by spending.
type HistoryStore struct {
	db     *sql.DB
	dbPath string
}

// NewHistoryStore opens (creating if needed) the transaction history
// database at dbPath.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &HistoryStore{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			hash TEXT PRIMARY KEY,
			date DATE NOT NULL,
			merchant TEXT NOT NULL,
			amount REAL NOT NULL,
			reference TEXT,
			source_file TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_merchant ON transactions(merchant)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// SaveTransactions inserts the records, silently skipping duplicates.
// Duplicates are detected by the date/amount/merchant hash, so re-importing
// the same file is safe.
func (s *HistoryStore) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (hash, date, merchant, amount, reference, source_file)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		t := &transactions[i]
		hash := t.Hash
		if hash == "" {
			hash = t.GenerateHash()
		}
		if _, err := stmt.ExecContext(ctx, hash, t.Date.Format("2006-01-02"), t.Merchant, t.Amount, t.Reference, t.SourceFile); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// MerchantStats aggregates transaction totals and counts per merchant.
func (s *HistoryStore) MerchantStats(ctx context.Context) (map[string]model.MerchantStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant, SUM(amount), COUNT(*)
		FROM transactions
		GROUP BY merchant`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := make(map[string]model.MerchantStats)
	for rows.Next() {
		var merchant string
		var total float64
		var count int
		if err := rows.Scan(&merchant, &total, &count); err != nil {
			return nil, fmt.Errorf("failed to scan merchant stats: %w", err)
		}
		stats[merchant] = model.MerchantStats{TotalAmount: total, Count: count}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate merchant stats: %w", err)
	}
	return stats, nil
}

// Count returns the total number of stored transactions.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
