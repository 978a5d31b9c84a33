// Package report runs lifecycle reports across organizations: it fetches the
// catalog once, streams each organization's inventory through the lifecycle
// engine on a worker pool, and collects a run summary.
package report

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/merakilife/internal/lifecycle"
	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/worker"
)

//go:generate mockgen -source=runner.go -destination=mock_sources.go -package=report

// InventorySource streams one organization's devices
type InventorySource interface {
	Devices(ctx context.Context, orgID string) iter.Seq2[model.Device, error]
}

// CatalogSource supplies end-of-life announcements
type CatalogSource interface {
	Announcements(ctx context.Context) ([]model.Announcement, error)
}

// OrganizationSource lists the organizations a credential can reach
type OrganizationSource interface {
	Organizations(ctx context.Context) ([]model.Organization, error)
}

// DefaultConcurrency bounds parallel organization fetches
const DefaultConcurrency = 4

// Runner produces run summaries
type Runner struct {
	Inventory   InventorySource
	Catalog     CatalogSource
	Concurrency int

	build func(model.Organization, lifecycle.Tally, lifecycle.Catalog, time.Time) (model.OrganizationReport, error)
}

// Run reports on orgs. now is the single instant every organization is
// classified against.
//
// A catalog failure aborts the run. An inventory failure marks that
// organization failed and the rest continue. A *lifecycle.DataIntegrityError
// cancels outstanding work and aborts the run.
func (r *Runner) Run(ctx context.Context, orgs []model.Organization, now time.Time) (*model.RunSummary, error) {
	announcements, err := r.Catalog.Announcements(ctx)
	if err != nil {
		return nil, err
	}
	catalog := lifecycle.NewCatalog(announcements)
	log.Info("EoL catalog loaded", "models", catalog.Len())

	reports, err := r.reportAll(ctx, orgs, catalog, now)
	if err != nil {
		return nil, err
	}

	summary := &model.RunSummary{
		RunID:       uuid.New().String(),
		GeneratedAt: now,
		Reports:     reports,
	}
	summary.Tally()

	log.Info("Report run finished",
		"run_id", summary.RunID,
		"ok", summary.Counts.OK,
		"empty", summary.Counts.Empty,
		"failed", summary.Counts.Failed)
	return summary, nil
}

func (r *Runner) reportAll(ctx context.Context, orgs []model.Organization, catalog lifecycle.Catalog, now time.Time) ([]model.OrganizationReport, error) {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	concurrency = min(concurrency, max(len(orgs), 1))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := worker.NewWorkerPool(ctx, concurrency)
	pool.Start()

	reports := make([]model.OrganizationReport, len(orgs))
	results := make(chan error, len(orgs))

	go func() {
		for i, org := range orgs {
			job := worker.Job{
				ID: org.ID,
				Handler: func(ctx context.Context) error {
					report, err := r.reportOne(ctx, org, catalog, now)
					reports[i] = report
					return err
				},
				Result: results,
			}
			if err := pool.Submit(job); err != nil {
				results <- err
			}
		}
		pool.Stop()
	}()

	var runErr error
	for range orgs {
		err := <-results
		if err == nil || runErr != nil {
			continue
		}
		runErr = err
		var integrity *lifecycle.DataIntegrityError
		if errors.As(err, &integrity) {
			log.Error("Aborting report run", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		return nil, runErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// reportOne never returns a fetch failure: it is folded into a failed
// report. Only integrity errors and cancellation escape.
func (r *Runner) reportOne(ctx context.Context, org model.Organization, catalog lifecycle.Catalog, now time.Time) (model.OrganizationReport, error) {
	tally := make(lifecycle.Tally)
	for d, err := range r.Inventory.Devices(ctx, org.ID) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.OrganizationReport{}, ctxErr
			}
			log.Warn("Skipping organization, inventory unavailable", "org_id", org.ID, "org_name", org.Name, "error", err)
			return model.OrganizationReport{
				Organization: org,
				Status:       model.StatusFailed,
				Error:        asFetchError(org.ID, err).Error(),
			}, nil
		}
		tally.Add(d)
	}

	build := r.build
	if build == nil {
		build = lifecycle.BuildReport
	}

	report, err := build(org, tally, catalog, now)
	if err != nil {
		return model.OrganizationReport{}, fmt.Errorf("organization %s: %w", org.ID, err)
	}

	log.Debug("Organization processed", "org_id", org.ID, "active_units", tally.Total(), "entries", len(report.Entries))
	return report, nil
}

func asFetchError(orgID string, err error) *model.FetchError {
	var fe *model.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &model.FetchError{Source: "inventory", OrganizationID: orgID, Err: err}
}
