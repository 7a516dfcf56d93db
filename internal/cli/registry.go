package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"khalistra/internal/engine"
	"khalistra/internal/server/core"

	"github.com/chzyer/readline"
)

// Command defines a REPL command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(args []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	view     *View
	commands map[string]*Command
}

func NewRegistry(session *Session, view *View) *Registry {
	r := &Registry{
		session:  session,
		view:     view,
		commands: make(map[string]*Command),
	}

	r.registerMatchCommands()
	r.registerDisplayCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line
func (r *Registry) Execute(line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}

	cmd, ok := r.commands[strings.ToLower(parts[0])]
	if !ok {
		r.view.ShowError(fmt.Errorf("unknown command %q, type 'help'", parts[0]))
		return
	}
	if err := cmd.Handler(parts[1:]); err != nil {
		r.view.ShowError(err)
	}
}

// Completer offers command names to readline
func (r *Registry) Completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range r.names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (r *Registry) names() []string {
	var names []string
	for key, cmd := range r.commands {
		if key == cmd.Name {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Registry) helpHandler(args []string) error {
	if len(args) > 0 {
		cmd, ok := r.commands[args[0]]
		if !ok {
			return fmt.Errorf("unknown command %q", args[0])
		}
		r.view.ShowMessage(fmt.Sprintf("%s - %s\nUsage: %s", cmd.Name, cmd.Description, cmd.Usage))
		return nil
	}

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range r.names() {
		cmd := r.commands[name]
		sb.WriteString(fmt.Sprintf("  %-28s - %s\n", cmd.Usage, cmd.Description))
	}
	sb.WriteString("  quit/exit                    - Exit the program\n")
	sb.WriteString("Squares use file letters and rank numbers, a1 is the first player's left corner.")
	r.view.ShowMessage(sb.String())
	return nil
}

func (r *Registry) registerMatchCommands() {
	s := r.session

	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new match",
		Usage:       "new [classic|ritual] [p1 p2]",
		Handler: func(args []string) error {
			req := core.CreateMatchRequest{Players: s.players[:]}
			if len(args) > 0 {
				req.Profile = args[0]
			}
			if len(args) == 3 {
				req.Players = []string{args[1], args[2]}
			} else if len(args) == 2 || len(args) > 3 {
				return errors.New("give both player names or none")
			}

			resp, err := s.backend.CreateMatch(req)
			if err != nil {
				return err
			}
			s.adopt(resp)
			r.view.ShowMessage(fmt.Sprintf("Match %s created (%s)", resp.MatchID, resp.Snapshot.Profile))
			r.view.DisplayBoard(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "load",
		Description: "Attach to an existing match",
		Usage:       "load <matchId>",
		Handler: func(args []string) error {
			if len(args) != 1 {
				return errors.New("usage: load <matchId>")
			}
			resp, err := s.backend.GetMatch(args[0])
			if err != nil {
				return err
			}
			s.adopt(resp)
			r.view.DisplayBoard(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Move the piece on a square",
		Usage:       "move <from> <to> [promote] [tag]",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			if len(args) < 2 || len(args) > 4 {
				return errors.New("usage: move <from> <to> [promote] [tag]")
			}
			piece, err := s.pieceAt(args[0])
			if err != nil {
				return err
			}
			to, err := parseTarget(s, args[1])
			if err != nil {
				return err
			}

			req := core.MoveRequest{PieceID: piece.ID, To: to}
			if len(args) > 2 {
				req.PromoteTo = strings.ToLower(args[2])
			}
			if len(args) > 3 {
				req.VariantTag = args[3]
			}

			resp, err := s.backend.MakeMove(s.matchID, req)
			if err != nil {
				return err
			}
			s.adopt(resp)
			if r.view.IsVerbose() {
				last := s.current.History[len(s.current.History)-1]
				r.view.ShowMessage(fmt.Sprintf("%s: %+v", last.PieceID, last))
			}
			r.view.DisplayBoard(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "moves",
		Description: "List legal moves of the piece on a square",
		Usage:       "moves <square>",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			if len(args) != 1 {
				return errors.New("usage: moves <square>")
			}
			piece, err := s.pieceAt(args[0])
			if err != nil {
				return err
			}
			resp, err := s.backend.LegalMoves(s.matchID, piece.ID, "")
			if err != nil {
				return err
			}
			r.view.ShowMoves(args[0]+" "+piece.ID, resp.Moves)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo last move(s), default 1",
		Usage:       "undo [count]",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			count := 1
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				count = n
			}
			resp, err := s.backend.UndoMoves(s.matchID, count)
			if err != nil {
				return err
			}
			s.adopt(resp)
			r.view.DisplayBoard(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "wait",
		ShortName:   "w",
		Description: "Wait for the opponent's move (server mode)",
		Usage:       "wait",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			waiter, ok := s.backend.(Waiter)
			if !ok {
				return errors.New("wait needs a server backend")
			}
			resp, err := waiter.WaitMatch(s.matchID, s.version)
			if err != nil {
				return err
			}
			if resp.Version == s.version {
				r.view.ShowMessage("No change yet")
				return nil
			}
			s.adopt(resp)
			r.view.DisplayBoard(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "resign",
		Description: "The player to move resigns",
		Usage:       "resign",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			resp, err := s.backend.Resign(s.matchID, core.ResignRequest{PlayerID: s.current.ActivePlayer})
			if err != nil {
				return err
			}
			s.adopt(resp)
			r.view.ShowGameOver(s.current)
			return nil
		},
	})
}

func (r *Registry) registerDisplayCommands() {
	s := r.session

	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the board",
		Usage:       "board",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			resp, err := s.backend.GetMatch(s.matchID)
			if err != nil {
				return err
			}
			s.adopt(resp)
			r.view.DisplayBoard(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "history",
		ShortName:   "h",
		Description: "Show the moves played so far",
		Usage:       "history",
		Handler: func(args []string) error {
			if err := s.requireMatch(); err != nil {
				return err
			}
			r.view.ShowHistory(s.current)
			return nil
		},
	})

	r.Register(&Command{
		Name:        "color",
		Description: "Set board color theme",
		Usage:       "color <off|brown|green|gray>",
		Handler: func(args []string) error {
			if len(args) != 1 {
				return errors.New("usage: color <off|brown|green|gray>")
			}
			return r.view.SetTheme(ColorTheme(args[0]))
		},
	})

	r.Register(&Command{
		Name:        "verbose",
		Description: "Toggle detailed move information",
		Usage:       "verbose",
		Handler: func(args []string) error {
			r.view.ShowMessage(fmt.Sprintf("Verbose: %v", r.view.ToggleVerbose()))
			return nil
		},
	})
}

// parseTarget accepts a square even when it lies off the board, so the engine
// reports the out-of-bounds move itself
func parseTarget(s *Session, square string) (engine.Position, error) {
	square = strings.ToLower(strings.TrimSpace(square))
	if len(square) < 2 || square[0] < 'a' || square[0] > 'z' {
		return engine.Position{}, fmt.Errorf("invalid square %q", square)
	}
	rank, err := strconv.Atoi(square[1:])
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid square %q", square)
	}
	return engine.Position{X: int(square[0] - 'a'), Y: rank - 1}, nil
}

// Run reads lines until quit, EOF or an interrupt on an empty line
func Run(rl *readline.Instance, r *Registry) error {
	for {
		rl.SetPrompt(r.session.Prompt())

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		r.Execute(line)
	}
}
