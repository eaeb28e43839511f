// Command ottoegg is an egg timer that does the physics.
//
// Usage:
//
//	ottoegg [--config ottoegg.yaml] [--verbose|--quiet] [command]
//
// Without a command the terminal UI starts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ottoegg",
		Usage:   "Egg cooking times from air pressure and thermodynamics",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "ottoegg.yaml",
				Usage:   "path to the YAML config file (missing file means defaults)",
				EnvVars: []string{"OTTOEGG_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable verbose/debug logging",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "disable all logging",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: `file to write logs to, "stderr" for the console (overrides log.file)`,
			},
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "language code or locale (en, de, fr, es, it, pt)",
				EnvVars: []string{"OTTOEGG_LANG"},
			},
		},

		Action: runTUI,
		Commands: []*cli.Command{
			calcCommand(),
			atmosphereCommand(),
			settingsCommand(),
			locateCommand(),
			timerCommand(),
			serveCommand(),
			{
				Name:   "tui",
				Usage:  "Start the terminal UI (default)",
				Action: runTUI,
			},
		},
	}
}
