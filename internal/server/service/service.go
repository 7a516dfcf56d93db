// Package service owns the in-memory registry of matches. It commits engine
// snapshots, mirrors them to storage and fans changes out to long-poll
// waiters and websocket subscribers.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"khalistra/internal/engine"
	"khalistra/internal/server/game"
	"khalistra/internal/server/storage"

	"github.com/google/uuid"
)

const (
	MaxMatches         = 1000
	CompletedMatchTTL  = 1 * time.Hour
	CleanupJobInterval = 10 * time.Minute
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchExists    = errors.New("match already exists")
	ErrStaleSnapshot  = errors.New("snapshot is stale")
	ErrTooManyMatches = errors.New("match limit reached")
)

// Commit describes a snapshot that became current
type Commit struct {
	Snapshot engine.Snapshot
	Version  int
	Update   engine.UpdateEvent
	Finish   *engine.FinishEvent
}

// Service coordinates match state, storage and subscribers
type Service struct {
	matches map[string]*game.Match
	mu      sync.RWMutex
	store   *storage.Store
	waiter  *WaitRegistry
	hub     *Hub
}

// New creates a service with optional storage
func New(store *storage.Store) *Service {
	return &Service{
		matches: make(map[string]*game.Match),
		store:   store,
		waiter:  NewWaitRegistry(),
		hub:     NewHub(),
	}
}

// GenerateMatchID returns a fresh random match id
func (s *Service) GenerateMatchID() string {
	return uuid.NewString()
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// MatchCount returns the number of matches held in memory
func (s *Service) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// CreateMatch registers the initial snapshot of a new match
func (s *Service) CreateMatch(initial engine.Snapshot) (Commit, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	if _, ok := s.matches[initial.MatchID]; ok {
		s.mu.Unlock()
		return Commit{}, fmt.Errorf("%w: %s", ErrMatchExists, initial.MatchID)
	}
	if len(s.matches) >= MaxMatches {
		s.mu.Unlock()
		return Commit{}, ErrTooManyMatches
	}
	m := game.New(initial, now)
	s.matches[initial.MatchID] = m
	s.mu.Unlock()

	if s.store != nil {
		if record, err := matchRecord(m); err == nil {
			s.store.RecordNewMatch(record)
		} else {
			log.Printf("Match %s not persisted: %v", initial.MatchID, err)
		}
	}

	log.Printf("Match %s created: profile=%s players=%s,%s", initial.MatchID, initial.Profile, initial.Players[0], initial.Players[1])
	return newCommit(initial, m.Version(), now), nil
}

// GetMatch returns the current snapshot and version of a match
func (s *Service) GetMatch(matchID string) (engine.Snapshot, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return engine.Snapshot{}, 0, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return m.Current(), m.Version(), nil
}

// CommitSnapshot makes next the current snapshot of its match. baseVersion
// is the version the caller evaluated against; a concurrent change in the
// meantime yields ErrStaleSnapshot and nothing is stored.
func (s *Service) CommitSnapshot(baseVersion int, next engine.Snapshot) (Commit, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	m, ok := s.matches[next.MatchID]
	if !ok {
		s.mu.Unlock()
		return Commit{}, fmt.Errorf("%w: %s", ErrMatchNotFound, next.MatchID)
	}
	if m.Version() != baseVersion {
		s.mu.Unlock()
		return Commit{}, fmt.Errorf("%w: version %d, current %d", ErrStaleSnapshot, baseVersion, m.Version())
	}
	prev := m.Current()
	m.Push(next, now)
	version := m.Version()
	record, recErr := matchRecord(m)
	s.mu.Unlock()

	if s.store != nil {
		if len(next.History) > len(prev.History) {
			s.store.RecordMove(moveRow(next, next.History[len(next.History)-1], prev.ActivePlayer, now))
		}
		if recErr == nil {
			s.store.UpdateMatchState(record)
		}
	}

	commit := newCommit(next, version, now)
	s.publish(commit)
	return commit, nil
}

// UndoMoves reverts the last count commits of a match
func (s *Service) UndoMoves(matchID string, count int) (Commit, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	m, ok := s.matches[matchID]
	if !ok {
		s.mu.Unlock()
		return Commit{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if err := m.UndoMoves(count, now); err != nil {
		s.mu.Unlock()
		return Commit{}, err
	}
	current := m.Current()
	version := m.Version()
	record, recErr := matchRecord(m)
	s.mu.Unlock()

	if s.store != nil {
		s.store.DeleteUndoneMoves(matchID, current.Turn)
		if recErr == nil {
			s.store.UpdateMatchState(record)
		}
	}

	commit := newCommit(current, version, now)
	s.publish(commit)
	return commit, nil
}

// DeleteMatch removes a match and releases everyone watching it
func (s *Service) DeleteMatch(matchID string) error {
	s.mu.Lock()
	if _, ok := s.matches[matchID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	delete(s.matches, matchID)
	s.mu.Unlock()

	s.waiter.RemoveMatch(matchID)
	s.hub.CloseMatch(matchID)
	if s.store != nil {
		s.store.DeleteMatch(matchID)
	}
	return nil
}

// RegisterWait registers a client to wait for the match to move past
// version. The version is compared under the service lock, so a commit can
// never fall between the check and the registration; a version that is
// already behind yields a channel that is ready at once.
func (s *Service) RegisterWait(matchID string, version int, ctx context.Context) (<-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Version() != version {
		ready := make(chan struct{}, WaitChannelBuffer)
		ready <- struct{}{}
		return ready, nil
	}
	return s.waiter.RegisterWait(matchID, version, ctx), nil
}

// Subscribe attaches a subscriber to a match. The subscriber first receives
// the current game:update event, then every later change.
func (s *Service) Subscribe(matchID string, sub Subscriber) (func(), error) {
	// Registering under the read lock orders the initial event before the
	// broadcast of any commit that lands afterwards
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return s.hub.Subscribe(matchID, sub, engine.ProjectUpdate(m.Current(), time.Now()))
}

// Restore loads every unfinished match from storage into memory
func (s *Service) Restore() (int, error) {
	if s.store == nil {
		return 0, nil
	}
	records, err := s.store.LoadOpenMatches()
	if err != nil {
		return 0, fmt.Errorf("load matches: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, rec := range records {
		var snap engine.Snapshot
		if err := json.Unmarshal([]byte(rec.SnapshotJSON), &snap); err != nil {
			log.Printf("Skipping match %s: corrupt snapshot: %v", rec.MatchID, err)
			continue
		}
		if _, ok := s.matches[rec.MatchID]; ok {
			continue
		}
		s.matches[rec.MatchID] = game.Restore(snap, rec.Revision, rec.CreatedAtUTC, rec.UpdatedAtUTC)
		restored++
	}
	return restored, nil
}

func (s *Service) publish(commit Commit) {
	matchID := commit.Snapshot.MatchID
	s.waiter.NotifyMatch(matchID, commit.Version)
	s.hub.Broadcast(matchID, commit.Update)
	if commit.Finish != nil {
		log.Printf("Match %s finished: reason=%s winner=%q", matchID, commit.Finish.Payload.Reason, commit.Finish.Payload.WinnerID)
		s.hub.Broadcast(matchID, *commit.Finish)
	}
}

// Shutdown releases waiters and subscribers and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}
	s.hub.Shutdown()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches = make(map[string]*game.Match)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob periodically evicts completed matches from memory
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.evictCompleted(time.Now().Add(-CompletedMatchTTL)); evicted > 0 {
				log.Printf("cleanup: evicted %d completed matches", evicted)
			}
		}
	}
}

func (s *Service) evictCompleted(before time.Time) int {
	s.mu.Lock()
	var evicted []string
	for id, m := range s.matches {
		if m.Current().IsTerminal() && m.UpdatedAt().Before(before) {
			delete(s.matches, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		s.waiter.RemoveMatch(id)
		s.hub.CloseMatch(id)
	}
	return len(evicted)
}

func newCommit(snap engine.Snapshot, version int, at time.Time) Commit {
	commit := Commit{
		Snapshot: snap,
		Version:  version,
		Update:   engine.ProjectUpdate(snap, at),
	}
	if finish, ok := engine.ProjectFinish(snap, at); ok {
		commit.Finish = &finish
	}
	return commit
}

func matchRecord(m *game.Match) (storage.MatchRecord, error) {
	snap := m.Current()
	data, err := json.Marshal(snap)
	if err != nil {
		return storage.MatchRecord{}, fmt.Errorf("encode snapshot: %w", err)
	}

	record := storage.MatchRecord{
		MatchID:      snap.MatchID,
		Profile:      snap.Profile,
		FirstPlayer:  snap.Players[0],
		SecondPlayer: snap.Players[1],
		Status:       string(snap.Status),
		WinnerID:     snap.WinnerID,
		Revision:     m.Version(),
		SnapshotJSON: string(data),
		CreatedAtUTC: m.CreatedAt(),
		UpdatedAtUTC: m.UpdatedAt(),
	}
	if snap.Resolution != nil {
		record.Reason = string(snap.Resolution.Reason)
	}
	return record, nil
}

func moveRow(snap engine.Snapshot, rec engine.MoveRecord, player string, at time.Time) storage.MoveRow {
	return storage.MoveRow{
		MatchID:         snap.MatchID,
		Turn:            rec.Turn,
		PlayerID:        player,
		PieceID:         rec.PieceID,
		FromX:           rec.From.X,
		FromY:           rec.From.Y,
		ToX:             rec.To.X,
		ToY:             rec.To.Y,
		CapturedPieceID: rec.CapturedPieceID,
		Promotion:       string(rec.Promotion),
		VariantTag:      rec.VariantTag,
		MoveTimeUTC:     at,
	}
}
