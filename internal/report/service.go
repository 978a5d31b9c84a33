package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/martinsuchenak/merakilife/internal/lifecycle"
	"github.com/martinsuchenak/merakilife/internal/model"
)

// ErrUnknownOrganization is returned for organization IDs the credential
// cannot reach.
var ErrUnknownOrganization = errors.New("unknown organization")

// Service answers ad-hoc requests from the HTTP API and MCP tools.
type Service struct {
	Organizations OrganizationSource
	Runner        *Runner
	Now           func() time.Time
}

// ListOrganizations lists reachable organizations
func (s *Service) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	return s.Organizations.Organizations(ctx)
}

// Report runs a report for the given organization IDs, or for every
// organization when ids is empty.
func (s *Service) Report(ctx context.Context, ids []string) (*model.RunSummary, error) {
	orgs, err := s.Organizations.Organizations(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := ResolveIDs(orgs, ids)
	if err != nil {
		return nil, err
	}

	return s.Run(ctx, selected)
}

// Run reports on an already resolved selection, classified against the
// current time.
func (s *Service) Run(ctx context.Context, orgs []model.Organization) (*model.RunSummary, error) {
	return s.Runner.Run(ctx, orgs, s.now())
}

// Catalog returns the normalized catalog, one announcement per model
func (s *Service) Catalog(ctx context.Context) ([]model.Announcement, error) {
	announcements, err := s.Runner.Catalog.Announcements(ctx)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewCatalog(announcements).Announcements(), nil
}

// Lookup returns the authoritative announcement for one model
func (s *Service) Lookup(ctx context.Context, modelName string) (model.Announcement, error) {
	announcements, err := s.Runner.Catalog.Announcements(ctx)
	if err != nil {
		return model.Announcement{}, err
	}

	a, ok := lifecycle.NewCatalog(announcements).Lookup(modelName)
	if !ok {
		return model.Announcement{}, fmt.Errorf("model %s: %w", strings.TrimSpace(modelName), model.ErrNotFound)
	}
	return a, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ResolveIDs picks orgs by ID in the order given, dropping repeats. Empty ids
// selects every organization.
func ResolveIDs(orgs []model.Organization, ids []string) ([]model.Organization, error) {
	if len(ids) == 0 {
		return orgs, nil
	}

	byID := make(map[string]model.Organization, len(orgs))
	for _, o := range orgs {
		byID[o.ID] = o
	}

	seen := make(map[string]struct{}, len(ids))
	selected := make([]model.Organization, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		org, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrganization, id)
		}
		seen[id] = struct{}{}
		selected = append(selected, org)
	}
	return selected, nil
}
