package engine

// Equal reports whether two positions name the same square
func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

func (p Position) add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// InBounds reports whether p lies on a square board of the given size
func InBounds(p Position, boardSize int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < boardSize && p.Y < boardSize
}

func FindPieceByID(pieces []Piece, id string) (Piece, bool) {
	for _, pc := range pieces {
		if pc.ID == id {
			return pc, true
		}
	}
	return Piece{}, false
}

func FindPieceAt(pieces []Piece, pos Position) (Piece, bool) {
	for _, pc := range pieces {
		if pc.Position.Equal(pos) {
			return pc, true
		}
	}
	return Piece{}, false
}

// Opponent returns the other entry of players. A current id that is not
// listed yields players[0].
func Opponent(players [2]string, current string) string {
	if players[0] == current {
		return players[1]
	}
	return players[0]
}

// ReplacePiece returns a new slice with the piece sharing updated's id swapped out
func ReplacePiece(pieces []Piece, updated Piece) []Piece {
	out := make([]Piece, len(pieces))
	for i, pc := range pieces {
		if pc.ID == updated.ID {
			out[i] = updated
		} else {
			out[i] = pc
		}
	}
	return out
}

// RemovePiece returns a new slice without the piece with the given id
func RemovePiece(pieces []Piece, id string) []Piece {
	out := make([]Piece, 0, len(pieces))
	for _, pc := range pieces {
		if pc.ID != id {
			out = append(out, pc)
		}
	}
	return out
}

func playerIndex(players [2]string, id string) int {
	if players[0] == id {
		return 0
	}
	if players[1] == id {
		return 1
	}
	return -1
}

func isPlayer(players [2]string, id string) bool {
	return playerIndex(players, id) >= 0
}
