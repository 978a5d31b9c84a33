package main

import (
	"context"
	"os"

	"github.com/martinsuchenak/merakilife/cmd/catalog"
	"github.com/martinsuchenak/merakilife/cmd/organizations"
	"github.com/martinsuchenak/merakilife/cmd/report"
	"github.com/martinsuchenak/merakilife/cmd/schedule"
	"github.com/martinsuchenak/merakilife/cmd/server"
	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "merakilife",
		Version:     version,
		Usage:       "Cisco Meraki hardware lifecycle report",
		Description: "Match Meraki organization inventory against the published end-of-life catalog and report which models in use are nearing or past end-of-support",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"MERAKILIFE_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"MERAKILIFE_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			log.Debug("Starting", "version", version, "commit", commit, "built", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			report.Command(version),
			organizations.Command(version),
			catalog.Command(version),
			schedule.Command(version),
			server.Command(version),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
