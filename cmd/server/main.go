package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/movabench/ukreval/api"
	"github.com/movabench/ukreval/internal/config"
	"github.com/movabench/ukreval/internal/leaderboard"
)

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr

	loadConfig          = config.Load
	leaderboardNewStore = leaderboard.NewStore
	newServer           = api.NewServer
	runServer           = (*api.Server).Run
)

func main() {
	osExit(runMain(os.Args[1:]))
}

func runMain(args []string) int {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(stderrWriter)

	var addr string
	var settingsPath string
	var dbPath string
	fs.StringVar(&addr, "addr", ":8080", "listen address")
	fs.StringVar(&settingsPath, "settings", config.DefaultSettingsPath, "path to settings file")
	fs.StringVar(&dbPath, "db", leaderboard.DefaultDBPath, "leaderboard database path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(context.Background(), settingsPath)
	if err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}

	lb, err := leaderboardNewStore(dbPath)
	if err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}
	defer func() { _ = lb.Close() }()

	srv, err := newServer(cfg.OutputPath, lb)
	if err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}
	if err := runServer(srv, addr); err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}

	return 0
}
