package engine

import "time"

const (
	EventUpdate = "game:update"
	EventFinish = "game:finish"
)

// PieceView is the transport view of a piece
type PieceView struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"ownerId"`
	Kind     PieceKind `json:"type"`
	Position Position  `json:"position"`
}

type StateView struct {
	BoardSize    int         `json:"boardSize"`
	Turn         int         `json:"turn"`
	Status       Status      `json:"status"`
	WinnerID     string      `json:"winnerId,omitempty"`
	ActivePlayer string      `json:"activePlayer"`
	Pieces       []PieceView `json:"pieces"`
}

type UpdatePayload struct {
	MatchID string    `json:"matchId"`
	State   StateView `json:"state"`
}

type FinishPayload struct {
	MatchID  string `json:"matchId"`
	WinnerID string `json:"winnerId,omitempty"`
	Reason   Reason `json:"reason"`
}

// Event is an envelope for a named payload; Timestamp is unix milliseconds
type Event[P any] struct {
	Name      string `json:"name"`
	Payload   P      `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

type UpdateEvent = Event[UpdatePayload]
type FinishEvent = Event[FinishPayload]

// ProjectUpdate reduces a snapshot to the game:update event. The timestamp is
// the only input not derived from the snapshot.
func ProjectUpdate(s Snapshot, at time.Time) UpdateEvent {
	pieces := make([]PieceView, len(s.Pieces))
	for i, pc := range s.Pieces {
		pieces[i] = PieceView{
			ID:       pc.ID,
			OwnerID:  pc.OwnerID,
			Kind:     pc.Kind,
			Position: pc.Position,
		}
	}

	return UpdateEvent{
		Name: EventUpdate,
		Payload: UpdatePayload{
			MatchID: s.MatchID,
			State: StateView{
				BoardSize:    s.BoardSize,
				Turn:         s.Turn,
				Status:       s.Status,
				WinnerID:     s.WinnerID,
				ActivePlayer: s.ActivePlayer,
				Pieces:       pieces,
			},
		},
		Timestamp: at.UnixMilli(),
	}
}

// ProjectFinish returns the game:finish event of a completed snapshot
func ProjectFinish(s Snapshot, at time.Time) (FinishEvent, bool) {
	if !s.IsTerminal() || s.Resolution == nil {
		return FinishEvent{}, false
	}
	return FinishEvent{
		Name: EventFinish,
		Payload: FinishPayload{
			MatchID:  s.MatchID,
			WinnerID: s.Resolution.WinnerID,
			Reason:   s.Resolution.Reason,
		},
		Timestamp: at.UnixMilli(),
	}, true
}
