package schedule

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/martinsuchenak/merakilife/cmd/report"
	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/log"
	engine "github.com/martinsuchenak/merakilife/internal/report"
	"github.com/martinsuchenak/merakilife/internal/selector"
	"github.com/martinsuchenak/merakilife/internal/worker"
	"github.com/paularlott/cli"
)

const taskID = "lifecycle-report"

// reportJob resolves the selection against the organizations reachable at
// activation time, so newly added organizations are picked up by "all".
func reportJob(service *engine.Service, selection string, out report.Outputs) worker.TaskHandler {
	return func(ctx context.Context, taskID string) error {
		orgs, err := service.ListOrganizations(ctx)
		if err != nil {
			return err
		}

		selected, err := selector.Parse(selection, orgs)
		if err != nil {
			return err
		}

		summary, err := service.Run(ctx, selected)
		if err != nil {
			return err
		}

		paths, err := report.WriteArtifacts(summary, out)
		if err != nil {
			return err
		}

		log.Info("Scheduled report written",
			"run_id", summary.RunID,
			"files", paths,
			"ok", summary.Counts.OK,
			"empty", summary.Counts.Empty,
			"failed", summary.Counts.Failed)
		return nil
	}
}

func Command(version string) *cli.Command {
	return &cli.Command{
		Name:        "schedule",
		Usage:       "Generate the lifecycle report on a schedule",
		Description: "Run the report on a cron schedule until interrupted. Organizations default to all.",
		Flags: append(append(report.Flags(),
			&cli.StringFlag{
				Name:  "cron",
				Usage: "Cron schedule, five fields or a descriptor such as @daily (default: '0 6 * * 1', env MERAKILIFE_SCHEDULE)",
			},
			&cli.BoolFlag{
				Name:  "run-now",
				Usage: "Also run once immediately on start",
			},
		), config.GetFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := report.LoadConfig(cmd)
			if spec := cmd.GetString("cron"); spec != "" {
				cfg.Schedule = spec
			}

			out, err := report.OutputsFromCommand(cmd, cfg)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			selection := cmd.GetString("orgs")
			if selection == "" {
				selection = "all"
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			service := report.NewService(cfg, version)
			job := reportJob(service, selection, out)

			scheduler := worker.NewScheduler(ctx)
			if err := scheduler.RegisterTask(taskID, "Lifecycle report", cfg.Schedule, job); err != nil {
				return err
			}

			if cmd.GetBool("run-now") {
				if err := job(ctx, taskID); err != nil {
					log.Error("Initial report failed", "error", err)
				}
			}

			scheduler.Start()
			defer scheduler.Stop()

			next, err := scheduler.Next(taskID, time.Now())
			if err != nil {
				return err
			}
			log.Info("Report scheduled", "cron", cfg.Schedule, "next_run", next.Format(time.RFC3339), "organizations", selection)
			fmt.Printf("Next report at %s. Press Ctrl+C to stop.\n", next.Format(time.RFC1123))

			<-ctx.Done()
			log.Info("Shutting down scheduler...")
			return nil
		},
	}
}
