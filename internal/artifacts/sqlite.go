package artifacts

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store on a local SQLite key/value table.
type SQLiteStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens (or creates) the artifacts database at path and runs pending
// migrations. Use ":memory:" for an in-memory store.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifacts database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping artifacts database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SavedQueries returns all saved queries; an absent key reads as empty.
func (s *SQLiteStore) SavedQueries() ([]SavedQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queries []SavedQuery
	if err := s.load(KeySavedQueries, &queries); err != nil {
		return nil, err
	}
	return queries, nil
}

// SaveQuery stores a new saved query, evicting the oldest entry when the
// collection is full.
func (s *SQLiteStore) SaveQuery(name, query string) (SavedQuery, error) {
	if strings.TrimSpace(name) == "" {
		return SavedQuery{}, ErrBlankName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var queries []SavedQuery
	if err := s.load(KeySavedQueries, &queries); err != nil {
		return SavedQuery{}, err
	}

	saved := SavedQuery{
		ID:    uuid.New().String(),
		Name:  name,
		Query: query,
	}

	queries = append([]SavedQuery{saved}, queries...)
	if len(queries) > MaxSavedQueries {
		queries = queries[:MaxSavedQueries]
	}

	if err := s.save(KeySavedQueries, queries); err != nil {
		return SavedQuery{}, err
	}
	return saved, nil
}

// DeleteSavedQuery removes a saved query by id; missing ids are ignored.
func (s *SQLiteStore) DeleteSavedQuery(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queries []SavedQuery
	if err := s.load(KeySavedQueries, &queries); err != nil {
		return err
	}

	kept := queries[:0]
	for _, q := range queries {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(queries) {
		return nil
	}

	return s.save(KeySavedQueries, kept)
}

// History returns run history, newest first.
func (s *SQLiteStore) History() ([]HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []HistoryItem
	if err := s.load(KeyQueryHistory, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AppendHistory records a run submission at the newest end.
func (s *SQLiteStore) AppendHistory(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []HistoryItem
	if err := s.load(KeyQueryHistory, &items); err != nil {
		return err
	}

	item := HistoryItem{
		ID:        uuid.New().String(),
		Query:     query,
		Timestamp: time.Now().UTC(),
	}

	items = append([]HistoryItem{item}, items...)
	if len(items) > MaxHistoryItems {
		items = items[:MaxHistoryItems]
	}

	return s.save(KeyQueryHistory, items)
}

// load reads and decodes the list stored under key. An absent key leaves the
// destination untouched (empty list semantics).
func (s *SQLiteStore) load(key string, dest any) error {
	if s.db == nil {
		return fmt.Errorf("artifacts store is closed")
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM artifacts WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// save serializes and upserts the list under key.
func (s *SQLiteStore) save(key string, value any) error {
	if s.db == nil {
		return fmt.Errorf("artifacts store is closed")
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO artifacts (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
