package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/lifecycle"
	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/render"
	"github.com/paularlott/cli"
)

func Command(version string) *cli.Command {
	return &cli.Command{
		Name:        "catalog",
		Usage:       "Print the end-of-life catalog",
		Description: "Fetch the Meraki end-of-life catalog and print one announcement per model. Does not need an API key.",
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:  "model",
				Usage: "Only print the announcement for this model",
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.FromCommand(cmd)

			announcements, err := cfg.CatalogSource(version).Announcements(ctx)
			if err != nil {
				return err
			}
			catalog := lifecycle.NewCatalog(announcements)

			if name := cmd.GetString("model"); name != "" {
				a, ok := catalog.Lookup(name)
				if !ok {
					return fmt.Errorf("model %s: %w", name, model.ErrNotFound)
				}
				return printAnnouncements(os.Stdout, []model.Announcement{a})
			}

			return printAnnouncements(os.Stdout, catalog.Announcements())
		},
	}
}

func printAnnouncements(w io.Writer, announcements []model.Announcement) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tANNOUNCEMENT\tEND-OF-SALE\tEND-OF-SUPPORT\tUPGRADE PATH")
	for _, a := range announcements {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.Model,
			render.FormatDate(a.AnnouncementDate),
			render.FormatDate(a.EndOfSale),
			render.FormatDate(a.EndOfSupport),
			a.UpgradePathURL)
	}
	return tw.Flush()
}
