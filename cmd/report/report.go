package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/meraki"
	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/render"
	engine "github.com/martinsuchenak/merakilife/internal/report"
	"github.com/martinsuchenak/merakilife/internal/selector"
	"github.com/paularlott/cli"
	"golang.org/x/term"
)

// ErrNothingToDo is returned when every output format is disabled
var ErrNothingToDo = errors.New("both --no-pdf and --no-csv were specified without --sqlite; nothing to do")

// Outputs selects which artifacts a run writes and where
type Outputs struct {
	Dir      string
	Prefix   string
	LogoPath string
	PDF      bool
	CSV      bool
	SQLite   bool
}

// Formats lists the enabled renderer names in write order
func (o Outputs) Formats() []string {
	var formats []string
	if o.PDF {
		formats = append(formats, "pdf")
	}
	if o.CSV {
		formats = append(formats, "csv")
	}
	if o.SQLite {
		formats = append(formats, "sqlite")
	}
	return formats
}

// Path is the artifact path for a renderer extension
func (o Outputs) Path(ext string) string {
	return filepath.Join(o.Dir, o.Prefix+"."+ext)
}

// NewService wires the Dashboard client and catalog source into a report service
func NewService(cfg *config.Config, version string) *engine.Service {
	client := meraki.NewClient(cfg.MerakiConfig(version))
	return &engine.Service{
		Organizations: client,
		Runner: &engine.Runner{
			Inventory:   client,
			Catalog:     cfg.CatalogSource(version),
			Concurrency: cfg.Concurrency,
		},
	}
}

// EnsureAPIKey prompts for the API key on a terminal when none is configured,
// then validates the configuration.
func EnsureAPIKey(cfg *config.Config) error {
	fd := int(os.Stdin.Fd())
	if cfg.APIKey == "" && term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Meraki Dashboard API key: ")
		key, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading API key: %w", err)
		}
		cfg.APIKey = strings.TrimSpace(string(key))
	}
	return cfg.Validate()
}

// WriteArtifacts renders summary once per enabled format and returns the
// written paths. Each file is written to a temporary name and renamed into
// place so a failed render never leaves a truncated report behind.
func WriteArtifacts(summary *model.RunSummary, out Outputs) ([]string, error) {
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	for _, name := range out.Formats() {
		r, err := render.Get(name, render.Options{LogoPath: out.LogoPath})
		if err != nil {
			return paths, err
		}

		path := out.Path(r.Extension())
		log.Info("Generating report", "format", name, "path", path)
		if err := writeFile(path, func(w io.Writer) error { return r.Render(w, summary) }); err != nil {
			return paths, fmt.Errorf("writing %s report: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// PrintSummary writes the run outcome, one line per skipped organization
func PrintSummary(w io.Writer, summary *model.RunSummary, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(w, "Report written to: %s\n", p)
	}
	fmt.Fprintf(w, "Organizations: %d reported, %d with no end-of-life models, %d skipped\n",
		summary.Counts.OK, summary.Counts.Empty, summary.Counts.Failed)
	for _, r := range summary.Failed() {
		fmt.Fprintf(w, "  Skipped %s: %s\n", r.Organization.Label(), r.Error)
	}
}

// OutputsFromCommand reads the output flags, failing when every format is off
func OutputsFromCommand(cmd *cli.Command, cfg *config.Config) (Outputs, error) {
	out := Outputs{
		Dir:      cfg.OutputDir,
		Prefix:   cfg.OutputPrefix,
		LogoPath: cfg.LogoPath,
		PDF:      !cmd.GetBool("no-pdf"),
		CSV:      !cmd.GetBool("no-csv"),
		SQLite:   cmd.GetBool("sqlite"),
	}
	if len(out.Formats()) == 0 {
		return out, ErrNothingToDo
	}
	return out, nil
}

// selectOrganizations applies --orgs, prompts on a terminal, and otherwise
// selects everything.
func selectOrganizations(ctx context.Context, service *engine.Service, selection string) ([]model.Organization, error) {
	orgs, err := service.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	if selection != "" {
		return selector.Parse(selection, orgs)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return selector.Prompt(os.Stdin, os.Stdout, orgs)
	}
	if len(orgs) == 0 {
		return nil, selector.ErrNoOrganizations
	}
	return orgs, nil
}

// Flags returns the output flags shared by report and schedule
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "orgs",
			Usage: "Organizations to report on: 'all' or a comma list of numbers, IDs or names",
		},
		&cli.BoolFlag{
			Name:  "no-pdf",
			Usage: "Skip generating the PDF report",
		},
		&cli.BoolFlag{
			Name:  "no-csv",
			Usage: "Skip generating the CSV report",
		},
		&cli.BoolFlag{
			Name:  "sqlite",
			Usage: "Also write a SQLite snapshot of the run",
		},
		&cli.StringFlag{
			Name:  "output-prefix",
			Usage: "Base name for output files (default: 'Lifecycle Report', env MERAKILIFE_OUTPUT_PREFIX)",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for output files (default: current directory, env MERAKILIFE_OUTPUT_DIR)",
		},
		&cli.StringFlag{
			Name:  "logo",
			Usage: "Logo image for the PDF header (env MERAKILIFE_LOGO)",
		},
	}
}

// LoadConfig reads GetFlags plus the output flags
func LoadConfig(cmd *cli.Command) *config.Config {
	opts := config.Options(cmd)
	opts.OutputPrefix = cmd.GetString("output-prefix")
	opts.OutputDir = cmd.GetString("output-dir")
	opts.LogoPath = cmd.GetString("logo")
	return config.Load(opts)
}

func Command(version string) *cli.Command {
	return &cli.Command{
		Name:        "report",
		Usage:       "Generate the lifecycle report",
		Description: "Fetch inventory for the selected organizations, match it against the Meraki end-of-life catalog and write PDF, CSV and SQLite reports",
		Flags:       append(config.GetFlags(), Flags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig(cmd)

			out, err := OutputsFromCommand(cmd, cfg)
			if err != nil {
				return err
			}
			if err := EnsureAPIKey(cfg); err != nil {
				return err
			}

			service := NewService(cfg, version)

			orgs, err := selectOrganizations(ctx, service, cmd.GetString("orgs"))
			if err != nil {
				return err
			}
			log.Info("Organizations selected", "count", len(orgs))

			summary, err := service.Run(ctx, orgs)
			if err != nil {
				return err
			}

			paths, err := WriteArtifacts(summary, out)
			if err != nil {
				return err
			}

			PrintSummary(os.Stdout, summary, paths)
			return nil
		},
	}
}
