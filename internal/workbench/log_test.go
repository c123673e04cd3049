package workbench

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogNewestFirst(t *testing.T) {
	l := &queryLog{}

	l.append(LogEntry{Message: "first", Status: StatusSuccess, Timestamp: time.Now()})
	l.append(LogEntry{Message: "second", Status: StatusError, Timestamp: time.Now()})

	entries := l.list()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)
	assert.Equal(t, "first", entries[1].Message)
}

func TestQueryLogEvictsOldest(t *testing.T) {
	l := &queryLog{}

	for i := 0; i < MaxLogEntries+10; i++ {
		l.append(LogEntry{Message: fmt.Sprintf("entry-%d", i)})
	}

	entries := l.list()
	require.Len(t, entries, MaxLogEntries)

	// Newest survives, the ten oldest were evicted.
	assert.Equal(t, fmt.Sprintf("entry-%d", MaxLogEntries+9), entries[0].Message)
	assert.Equal(t, "entry-10", entries[len(entries)-1].Message)
}

func TestQueryLogListIsACopy(t *testing.T) {
	l := &queryLog{}
	l.append(LogEntry{Message: "original"})

	entries := l.list()
	entries[0].Message = "mutated"

	assert.Equal(t, "original", l.list()[0].Message)
}
