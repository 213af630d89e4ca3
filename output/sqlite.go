package output

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"CloudSentry/core"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteWriter implements the Writer interface for SQLite export
type SQLiteWriter struct {
	mu         sync.Mutex
	db         *sql.DB
	insertStmt *sql.Stmt // Base prepared statement at db level
	txStmt     *sql.Stmt // Transaction-wrapped statement for bulk inserts
	tx         *sql.Tx
	batchSize  int
	count      int
}

// NewSQLiteWriter creates a new SQLite writer
func NewSQLiteWriter(outputPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Bulk-load PRAGMAs: trade durability for speed while exporting
	pragmas := []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_time TEXT NOT NULL,
		event_name TEXT NOT NULL,
		user_name TEXT NOT NULL,
		source_ip_address TEXT,
		event_source TEXT,
		user_agent TEXT
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit_events table: %w", err)
	}

	// Index creation is deferred to Close() for better bulk insert performance

	insertSQL := `
	INSERT INTO audit_events (
		event_time, event_name, user_name, source_ip_address, event_source, user_agent
	) VALUES (?, ?, ?, ?, ?, ?);
	`
	stmt, err := db.Prepare(insertSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		stmt.Close()
		db.Close()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &SQLiteWriter{
		db:         db,
		insertStmt: stmt,
		txStmt:     tx.Stmt(stmt),
		tx:         tx,
		batchSize:  10000,
	}, nil
}

// Write writes the records to the SQLite database
func (w *SQLiteWriter) Write(records core.Events) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range records {
		_, err := w.txStmt.Exec(
			rec.EventTime.Format(time.RFC3339),
			rec.EventName,
			rec.UserName,
			rec.SourceIPAddress,
			rec.EventSource,
			rec.UserAgent,
		)
		if err != nil {
			return fmt.Errorf("%w: insert record: %v", ErrWritingFailed, err)
		}

		w.count++

		// Commit and start a new transaction every batchSize records
		if w.count >= w.batchSize {
			if err := w.commitAndStartNewTransaction(); err != nil {
				return err
			}
		}
	}

	return nil
}

// commitAndStartNewTransaction commits the current transaction and starts a new one
func (w *SQLiteWriter) commitAndStartNewTransaction() error {
	if w.txStmt != nil {
		w.txStmt.Close()
	}

	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.tx = tx
	w.txStmt = tx.Stmt(w.insertStmt)
	w.count = 0

	return nil
}

// Close closes the SQLite writer
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.txStmt != nil {
		w.txStmt.Close()
	}
	if w.insertStmt != nil {
		w.insertStmt.Close()
	}

	if w.tx != nil {
		if err := w.tx.Commit(); err != nil {
			w.db.Close()
			return fmt.Errorf("failed to commit final transaction: %w", err)
		}
	}

	if w.db != nil {
		// Index after all inserts are complete, much faster than indexing during insert
		createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_audit_events_event_time ON audit_events (event_time);
		`
		if _, err := w.db.Exec(createIndexSQL); err != nil {
			w.db.Close()
			return fmt.Errorf("failed to create event_time index: %w", err)
		}

		if err := w.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
