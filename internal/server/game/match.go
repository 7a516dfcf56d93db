// Package game keeps the snapshot stack of a running match
package game

import (
	"errors"
	"fmt"
	"time"

	"khalistra/internal/engine"
)

// ErrUndoUnavailable reports an undo count the snapshot stack cannot satisfy
var ErrUndoUnavailable = errors.New("undo unavailable")

// Match is the server-side aggregate of one match. Every committed snapshot
// is kept so moves can be undone; the last one is current.
type Match struct {
	snapshots []engine.Snapshot
	revision  int
	createdAt time.Time
	updatedAt time.Time
}

func New(initial engine.Snapshot, at time.Time) *Match {
	return &Match{
		snapshots: []engine.Snapshot{initial},
		createdAt: at,
		updatedAt: at,
	}
}

// Restore rebuilds a match from a persisted snapshot. Earlier snapshots are
// not persisted, so the restored match cannot be undone past it.
func Restore(current engine.Snapshot, revision int, createdAt, updatedAt time.Time) *Match {
	return &Match{
		snapshots: []engine.Snapshot{current},
		revision:  revision,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Current returns the latest snapshot
func (m *Match) Current() engine.Snapshot {
	return m.snapshots[len(m.snapshots)-1]
}

// Version increases with every change to the match, undo included
func (m *Match) Version() int {
	return m.revision
}

func (m *Match) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Match) UpdatedAt() time.Time {
	return m.updatedAt
}

// Push makes next the current snapshot
func (m *Match) Push(next engine.Snapshot, at time.Time) {
	m.snapshots = append(m.snapshots, next)
	m.revision++
	m.updatedAt = at
}

// UndoMoves drops the last count snapshots. A completed match stays
// completed.
func (m *Match) UndoMoves(count int, at time.Time) error {
	if m.Current().IsTerminal() {
		return fmt.Errorf("%w: match %s", engine.ErrMatchCompleted, m.Current().MatchID)
	}
	if count < 1 {
		return fmt.Errorf("%w: invalid count %d", ErrUndoUnavailable, count)
	}

	available := len(m.snapshots) - 1
	if available < count {
		return fmt.Errorf("%w: cannot undo %d moves, only %d available", ErrUndoUnavailable, count, available)
	}

	m.snapshots = m.snapshots[:len(m.snapshots)-count]
	m.revision++
	m.updatedAt = at
	return nil
}
