package organizations

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/martinsuchenak/merakilife/cmd/report"
	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/paularlott/cli"
)

func Command(version string) *cli.Command {
	return &cli.Command{
		Name:        "organizations",
		Usage:       "List accessible organizations",
		Description: "List the Meraki organizations the API key can access, numbered as in the report selection prompt",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.FromCommand(cmd)
			if err := report.EnsureAPIKey(cfg); err != nil {
				return err
			}

			orgs, err := report.NewService(cfg, version).ListOrganizations(ctx)
			if err != nil {
				return err
			}

			printOrganizations(os.Stdout, orgs)
			return nil
		},
	}
}

func printOrganizations(w io.Writer, orgs []model.Organization) {
	if len(orgs) == 0 {
		fmt.Fprintln(w, "No organizations found.")
		return
	}
	for i, o := range orgs {
		fmt.Fprintf(w, "%d - %s (ID: %s)\n", i+1, o.Name, o.ID)
	}
}
