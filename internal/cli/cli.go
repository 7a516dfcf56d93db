// Package cli is the terminal front end: it parses REPL commands and renders
// snapshots for a human at the keyboard.
package cli

import (
	"fmt"
	"io"
	"strings"

	"khalistra/internal/engine"
	"khalistra/internal/server/game"
)

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	first   string
	second  string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		first:   "\033[97m",
		second:  "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		first:   "\033[97m",
		second:  "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		first:   "\033[97m",
		second:  "\033[30m",
		reset:   "\033[0m",
	},
}

// View writes everything the REPL shows
type View struct {
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func NewView(output io.Writer) *View {
	return &View{
		output: output,
		theme:  ThemeOff,
	}
}

func (v *View) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	v.theme = theme
	return nil
}

func (v *View) ToggleVerbose() bool {
	v.verbose = !v.verbose
	return v.verbose
}

func (v *View) IsVerbose() bool {
	return v.verbose
}

func (v *View) ShowMessage(msg string) {
	fmt.Fprintln(v.output, msg)
}

func (v *View) ShowError(err error) {
	v.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// DisplayBoard draws the snapshot with the first player at the bottom
func (v *View) DisplayBoard(s engine.Snapshot) {
	theme := themes[v.theme]
	files := fileHeader(s.BoardSize)
	var sb strings.Builder

	sb.WriteString("\n  " + files + "\n")
	for r, row := range game.Grid(s) {
		rank := s.BoardSize - r
		sb.WriteString(fmt.Sprintf("%d ", rank))
		for f, sym := range row {
			if v.theme == ThemeOff {
				if sym == 0 {
					sb.WriteString(". ")
				} else {
					sb.WriteString(fmt.Sprintf("%c ", sym))
				}
				continue
			}

			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}
			if sym == 0 {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			color := theme.second
			if sym >= 'A' && sym <= 'Z' {
				color = theme.first
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, color, sym, theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank))
	}
	sb.WriteString("  " + files + "\n")

	v.ShowMessage(sb.String())
	v.ShowStatus(s)
}

func fileHeader(size int) string {
	files := make([]string, size)
	for f := range files {
		files[f] = string(rune('a' + f))
	}
	return strings.Join(files, " ")
}

// ShowStatus prints whose turn it is and any check or result
func (v *View) ShowStatus(s engine.Snapshot) {
	switch {
	case s.IsTerminal():
		v.ShowGameOver(s)
	case s.Status == engine.StatusCheck:
		v.ShowMessage(fmt.Sprintf("Turn %d: %s to move, in check", s.Turn, s.ActivePlayer))
	default:
		v.ShowMessage(fmt.Sprintf("Turn %d: %s to move", s.Turn, s.ActivePlayer))
	}
}

func (v *View) ShowGameOver(s engine.Snapshot) {
	reason := ""
	if s.Resolution != nil {
		reason = string(s.Resolution.Reason)
	}
	if s.WinnerID == "" {
		v.ShowMessage(fmt.Sprintf("\nGame Over: %s, no winner", reason))
	} else {
		v.ShowMessage(fmt.Sprintf("\nGame Over: %s wins by %s", s.WinnerID, reason))
	}
	v.ShowMessage("Start a new match with 'new'.")
}

// ShowMoves lists legal destinations in square notation
func (v *View) ShowMoves(from string, moves []engine.LegalMove) {
	if len(moves) == 0 {
		v.ShowMessage(fmt.Sprintf("%s has no legal moves", from))
		return
	}
	squares := make([]string, len(moves))
	for i, mv := range moves {
		sq := game.Square(mv.To)
		if mv.Capture {
			sq += "x"
		}
		if mv.Promotion != "" {
			sq += "=" + string(mv.Promotion)
		}
		squares[i] = sq
	}
	v.ShowMessage(fmt.Sprintf("%s: %s", from, strings.Join(squares, " ")))
}

func (v *View) ShowHistory(s engine.Snapshot) {
	if len(s.History) == 0 {
		v.ShowMessage("No moves yet")
		return
	}
	for _, rec := range s.History {
		line := fmt.Sprintf("%3d. %s %s-%s", rec.Turn, rec.PieceID, game.Square(rec.From), game.Square(rec.To))
		if rec.CapturedPieceID != "" {
			line += " x" + rec.CapturedPieceID
		}
		if rec.Promotion != "" {
			line += " =" + string(rec.Promotion)
		}
		switch {
		case rec.Checkmate:
			line += " #"
		case rec.Check:
			line += " +"
		case rec.Stalemate:
			line += " (stalemate)"
		}
		v.ShowMessage(line)
	}
}

func (v *View) ShowWelcome() {
	v.ShowMessage("Welcome to Khalistra!")
	v.ShowMessage("Commands: new, load, move, moves, undo, wait, resign, board, history, color, verbose, help/?, quit/exit")
	v.ShowMessage("Example: 'new ritual' then 'move c1 c3'.")
	v.ShowMessage("")
}
