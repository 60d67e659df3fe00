// Package sqllog records the SQL statements a test issues through
// database/sql, with the parameters bound to each.
package sqllog

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Recorder is an append-only log of the statements issued during one test.
// It's owned by that test: create it with NewRecorder, Clear it before the
// scenario runs, and Close it at teardown.
//
// database/sql may call into a driver from several goroutines, so the
// Recorder guards its buffer with a mutex.
type Recorder struct {
	id string

	mu         sync.Mutex
	statements []Statement
	closed     bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{id: uuid.NewString()}
}

// ID uniquely identifies this Recorder in log output.
func (r *Recorder) ID() string { return r.id }

// Record appends a statement. Statements recorded after Close are dropped.
func (r *Recorder) Record(s Statement) {
	r.mu.Lock()
	var closed, index = r.closed, len(r.statements)
	if !closed {
		r.statements = append(r.statements, s)
	}
	r.mu.Unlock()

	// Hook records only entries with an "sql" field.
	var entry = log.WithFields(log.Fields{"recorder": r.id, "statement": s.SQL})
	if closed {
		entry.Warn("dropping statement recorded after close")
	} else {
		entry.WithField("index", index).Debug("recorded statement")
	}
}

// Statements returns a copy of the recorded statements, in the order they
// were recorded.
func (r *Recorder) Statements() []Statement {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.statements)
}

// Len is the number of recorded statements.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.statements)
}

// Clear empties the log. Clearing an empty log is a no-op.
func (r *Recorder) Clear() {
	r.mu.Lock()
	var n = len(r.statements)
	r.statements = nil
	r.mu.Unlock()

	if n != 0 {
		log.WithFields(log.Fields{"recorder": r.id, "discarded": n}).Debug("cleared statement log")
	}
}

// Close discards the log and ends the Recorder's life. It's safe to call more
// than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.statements = nil
	return nil
}
