package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"mailflow/internal/types"
)

// SQLiteStore persists items and responses to a SQLite database. Entities
// staged via Add are written inside a single database transaction on Commit.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	staged []interface{}
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the required tables.
func (s *SQLiteStore) initialize() error {
	itemsTable := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		sender TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		received_at DATETIME NOT NULL,
		sentiment TEXT,
		urgency TEXT,
		extracted_info TEXT,
		status TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
	`

	responsesTable := `
	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		generated_content TEXT NOT NULL,
		edited_content TEXT,
		status TEXT NOT NULL,
		sent_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_responses_item ON responses(item_id);
	`

	for _, table := range []string{itemsTable, responsesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add stages an item or response for the next Commit.
func (s *SQLiteStore) Add(entity interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch entity.(type) {
	case *types.Item, *types.Response:
		s.staged = append(s.staged, entity)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
	}
}

// Commit writes all staged entities in one database transaction.
func (s *SQLiteStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.staged) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, entity := range s.staged {
		switch e := entity.(type) {
		case *types.Item:
			err = s.upsertItem(tx, e)
		case *types.Response:
			err = s.upsertResponse(tx, e)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write entity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.staged = nil
	return nil
}

// Rollback discards staged entities. Nothing has touched the database yet,
// so this only clears the staging list.
func (s *SQLiteStore) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
	return nil
}

func (s *SQLiteStore) upsertItem(tx *sql.Tx, item *types.Item) error {
	extractedJSON, err := json.Marshal(item.Extracted)
	if err != nil {
		return fmt.Errorf("failed to marshal extracted info: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO items (id, sender, subject, body, received_at, sentiment, urgency, extracted_info, status, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		 sentiment = excluded.sentiment,
		 urgency = excluded.urgency,
		 extracted_info = excluded.extracted_info,
		 status = excluded.status,
		 updated_at = CURRENT_TIMESTAMP`,
		item.ID, item.Sender, item.Subject, item.Body, item.ReceivedAt,
		string(item.Sentiment), string(item.Urgency), string(extractedJSON), string(item.Status),
	)
	return err
}

func (s *SQLiteStore) upsertResponse(tx *sql.Tx, resp *types.Response) error {
	var sentAt interface{}
	if resp.SentAt != nil {
		sentAt = *resp.SentAt
	}

	_, err := tx.Exec(
		`INSERT INTO responses (id, item_id, generated_content, edited_content, status, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 edited_content = excluded.edited_content,
		 status = excluded.status,
		 sent_at = excluded.sent_at`,
		resp.ID, resp.ItemID, resp.GeneratedContent, resp.EditedContent, string(resp.Status), sentAt,
	)
	return err
}

// Item reads a committed item by id.
func (s *SQLiteStore) Item(id string) (*types.Item, error) {
	row := s.db.QueryRow(
		`SELECT id, sender, subject, body, received_at, sentiment, urgency, extracted_info, status
		 FROM items WHERE id = ?`, id)

	var item types.Item
	var sentiment, urgency, extractedJSON, status string
	var receivedAt time.Time
	if err := row.Scan(&item.ID, &item.Sender, &item.Subject, &item.Body,
		&receivedAt, &sentiment, &urgency, &extractedJSON, &status); err != nil {
		return nil, err
	}

	item.ReceivedAt = receivedAt
	item.Sentiment = types.Sentiment(sentiment)
	item.Urgency = types.Urgency(urgency)
	item.Status = types.ItemStatus(status)
	if extractedJSON != "" && extractedJSON != "null" {
		if err := json.Unmarshal([]byte(extractedJSON), &item.Extracted); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extracted info: %w", err)
		}
	}
	return &item, nil
}

// ResponseForItem reads the committed response referencing the item.
func (s *SQLiteStore) ResponseForItem(itemID string) (*types.Response, error) {
	row := s.db.QueryRow(
		`SELECT id, item_id, generated_content, edited_content, status, sent_at
		 FROM responses WHERE item_id = ? ORDER BY created_at DESC LIMIT 1`, itemID)

	var resp types.Response
	var edited sql.NullString
	var status string
	var sentAt sql.NullTime
	if err := row.Scan(&resp.ID, &resp.ItemID, &resp.GeneratedContent, &edited, &status, &sentAt); err != nil {
		return nil, err
	}

	resp.EditedContent = edited.String
	resp.Status = types.ResponseStatus(status)
	if sentAt.Valid {
		t := sentAt.Time
		resp.SentAt = &t
	}
	return &resp, nil
}

// CountByStatus returns item counts grouped by status.
func (s *SQLiteStore) CountByStatus() (map[types.ItemStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM items GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[types.ItemStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[types.ItemStatus(status)] = count
	}
	return counts, rows.Err()
}
