package game

import (
	"fmt"
	"strings"

	"khalistra/internal/engine"
)

var pieceSymbols = map[engine.PieceKind]byte{
	engine.King:     'K',
	engine.Queen:    'Q',
	engine.Rook:     'R',
	engine.Bishop:   'B',
	engine.Knight:   'N',
	engine.Pawn:     'P',
	engine.Sentinel: 'S',
	engine.Oracle:   'O',
	engine.Dancer:   'D',
}

// Symbol returns the board letter of a piece: upper case for the first
// player, lower case for the second.
func Symbol(s engine.Snapshot, pc engine.Piece) byte {
	sym, ok := pieceSymbols[pc.Kind]
	if !ok {
		sym = '?'
	}
	if pc.OwnerID != s.Players[0] && sym >= 'A' && sym <= 'Z' {
		sym += 'a' - 'A'
	}
	return sym
}

// Grid returns the board as rows of symbols, row 0 being the highest rank.
// Empty squares are 0.
func Grid(s engine.Snapshot) [][]byte {
	rows := make([][]byte, s.BoardSize)
	for i := range rows {
		rows[i] = make([]byte, s.BoardSize)
	}
	for _, pc := range s.Pieces {
		if !engine.InBounds(pc.Position, s.BoardSize) {
			continue
		}
		rows[s.BoardSize-1-pc.Position.Y][pc.Position.X] = Symbol(s, pc)
	}
	return rows
}

// ToASCII creates an ASCII representation of the board
func ToASCII(s engine.Snapshot) string {
	var sb strings.Builder
	files := fileLabels(s.BoardSize)
	sb.WriteString("  " + files + "\n")

	for r, row := range Grid(s) {
		rank := s.BoardSize - r
		sb.WriteString(fmt.Sprintf("%d ", rank))
		for _, sym := range row {
			if sym == 0 {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", sym))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank))
	}
	sb.WriteString("  " + files)

	return sb.String()
}

func fileLabels(size int) string {
	labels := make([]string, size)
	for f := range labels {
		labels[f] = string(rune('a' + f))
	}
	return strings.Join(labels, " ")
}

// Square names a position in file-rank notation, a1 being (0,0)
func Square(p engine.Position) string {
	return fmt.Sprintf("%c%d", 'a'+p.X, p.Y+1)
}

// ParseSquare reads file-rank notation such as "e2"
func ParseSquare(square string, boardSize int) (engine.Position, error) {
	square = strings.ToLower(strings.TrimSpace(square))
	if len(square) < 2 || len(square) > 3 {
		return engine.Position{}, fmt.Errorf("invalid square %q", square)
	}
	var rank int
	if _, err := fmt.Sscanf(square[1:], "%d", &rank); err != nil {
		return engine.Position{}, fmt.Errorf("invalid square %q", square)
	}
	pos := engine.Position{X: int(square[0] - 'a'), Y: rank - 1}
	if !engine.InBounds(pos, boardSize) {
		return engine.Position{}, fmt.Errorf("square %q is off the %dx%d board", square, boardSize, boardSize)
	}
	return pos, nil
}
