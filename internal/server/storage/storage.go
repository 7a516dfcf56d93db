// Package storage persists matches and moves to SQLite. Writes are queued to
// a single writer goroutine; once a write fails the store reports itself
// degraded and drops further writes instead of blocking play.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	writeQueueSize  = 1000
	shutdownTimeout = 2 * time.Second
)

// write is one queued transaction body, labelled for the logs
type write struct {
	what string
	fn   func(*sql.Tx) error
}

// Store owns the database handle and the writer goroutine
type Store struct {
	db      *sql.DB
	path    string
	writes  chan write
	healthy atomic.Bool

	stop      context.CancelFunc
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewStore opens the database and starts the writer. devMode switches the
// journal to WAL so the db subcommands can read while the server runs.
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if devMode {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// PRAGMAs are per connection
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:      db,
		path:    dataSourceName,
		writes:  make(chan write, writeQueueSize),
		stop:    cancel,
		stopped: make(chan struct{}),
	}
	s.healthy.Store(true)

	go s.run(ctx)
	return s, nil
}

// IsHealthy reports whether writes are still being applied
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

func (s *Store) run(ctx context.Context) {
	defer close(s.stopped)

	for {
		select {
		case w := <-s.writes:
			s.apply(w)
		case <-ctx.Done():
			s.flush(time.Now().Add(shutdownTimeout))
			return
		}
	}
}

// flush applies what is already queued, giving up at deadline
func (s *Store) flush(deadline time.Time) {
	for time.Now().Before(deadline) {
		select {
		case w := <-s.writes:
			s.apply(w)
		default:
			return
		}
	}
	if n := len(s.writes); n > 0 {
		log.Printf("Storage flush deadline reached, %d writes lost", n)
	}
}

// apply runs one write in its own transaction. Any failure degrades the
// store; later writes are skipped.
func (s *Store) apply(w write) {
	if !s.healthy.Load() {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.degrade(w.what, "begin", err)
		return
	}
	if err := w.fn(tx); err != nil {
		tx.Rollback()
		s.degrade(w.what, "exec", err)
		return
	}
	if err := tx.Commit(); err != nil {
		s.degrade(w.what, "commit", err)
	}
}

func (s *Store) degrade(what, stage string, err error) {
	if s.healthy.Swap(false) {
		log.Printf("Storage degraded: %s failed at %s: %v", what, stage, err)
	}
}

// enqueue hands a write to the writer goroutine. A degraded store or a full
// queue drops the write.
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) {
	if !s.healthy.Load() {
		return
	}
	select {
	case s.writes <- write{what: what, fn: fn}:
	default:
		log.Printf("Storage write queue full, dropping %s", what)
	}
}

// Close flushes pending writes and closes the database. Later calls return
// the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.stop()
		select {
		case <-s.stopped:
		case <-time.After(2 * shutdownTimeout):
			log.Printf("Storage writer did not stop, closing anyway")
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// InitDB creates the schema if it does not exist yet
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return tx.Commit()
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}
	return nil
}
