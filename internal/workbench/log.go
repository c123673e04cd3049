package workbench

import (
	"sync"
	"time"
)

// MaxLogEntries bounds the execution log; the oldest entry is evicted first.
const MaxLogEntries = 50

// LogEntry records one completed execution.
type LogEntry struct {
	Message    string
	Status     Status
	Timestamp  time.Time
	DurationMs int64
}

// queryLog is a bounded, newest-first log of past executions.
type queryLog struct {
	mu      sync.Mutex
	entries []LogEntry
}

// append adds an entry at the newest end, evicting the oldest when full.
func (l *queryLog) append(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]LogEntry{e}, l.entries...)
	if len(l.entries) > MaxLogEntries {
		l.entries = l.entries[:MaxLogEntries]
	}
}

// list returns a copy of the entries, newest first.
func (l *queryLog) list() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
