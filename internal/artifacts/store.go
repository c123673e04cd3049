// Package artifacts persists the workbench's saved queries and run history.
// Both collections are stored as serialized lists under fixed keys in a
// local key/value store; a reader tolerates absent keys as empty lists.
package artifacts

import (
	"errors"
	"time"
)

// Fixed storage keys.
const (
	KeySavedQueries = "savedQueries"
	KeyQueryHistory = "queryHistory"
)

// Collection bounds; eviction is FIFO on the oldest end.
const (
	MaxSavedQueries = 50
	MaxHistoryItems = 100
)

// ErrBlankName is returned when saving a query without a name.
var ErrBlankName = errors.New("saved query name must not be blank")

// SavedQuery is a named query kept for reuse. There is no update-in-place;
// editing is load-into-editor plus manual re-save.
type SavedQuery struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

// HistoryItem records one explicit run submission, newest first.
type HistoryItem struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists saved queries and run history.
type Store interface {
	// SavedQueries returns all saved queries; an absent key reads as empty.
	SavedQueries() ([]SavedQuery, error)

	// SaveQuery stores a new saved query. Blank names are rejected with
	// ErrBlankName. The collection is capped at MaxSavedQueries.
	SaveQuery(name, query string) (SavedQuery, error)

	// DeleteSavedQuery removes a saved query by id. Deleting a missing id
	// is a no-op, not an error.
	DeleteSavedQuery(id string) error

	// History returns run history, newest first.
	History() ([]HistoryItem, error)

	// AppendHistory records a run submission; capped at MaxHistoryItems.
	AppendHistory(query string) error

	// Close releases the underlying storage.
	Close() error
}
