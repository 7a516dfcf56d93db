// Package main is the interactive command-line client. Without -server it
// plays against an in-process match service; with it, every command goes to
// a running match server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"khalistra/internal/cli"
	"khalistra/internal/client/api"
	"khalistra/internal/server/processor"
	"khalistra/internal/server/service"

	"github.com/chzyer/readline"
)

func main() {
	var (
		serverURL = flag.String("server", "", "Match server URL, e.g. http://localhost:8080 (local play if empty)")
		theme     = flag.String("theme", string(cli.ThemeBrown), "Board theme: off, brown, green, gray")
		first     = flag.String("first", "light", "First player id")
		second    = flag.String("second", "shadow", "Second player id")
		verbose   = flag.Bool("v", false, "Trace API requests (server mode)")
	)
	flag.Parse()

	view := cli.NewView(os.Stdout)
	if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
		log.Fatalf("Invalid theme: %v", err)
	}

	var backend cli.Backend
	if *serverURL != "" {
		client := api.New(*serverURL)
		client.SetVerbose(*verbose)
		client.Trace = os.Stderr
		if _, err := client.Health(); err != nil {
			log.Fatalf("Server %s unreachable: %v", *serverURL, err)
		}
		backend = client
	} else {
		svc := service.New(nil)
		proc, err := processor.New(svc, 1)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer svc.Shutdown(0)
		defer proc.Close()
		backend = cli.NewLocal(proc)
	}

	session := cli.NewSession(backend, view, [2]string{*first, *second})
	registry := cli.NewRegistry(session, view)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          session.Prompt(),
		HistoryFile:     ".khalistra_history",
		AutoComplete:    registry.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	view.ShowWelcome()
	if *serverURL != "" {
		view.ShowMessage("Server: " + *serverURL)
	}

	if err := cli.Run(rl, registry); err != nil {
		view.ShowError(err)
	}
	view.ShowMessage("Goodbye!")
}
