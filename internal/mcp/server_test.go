package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/report"
)

func TestNewServer_RegistersTools(t *testing.T) {
	s := NewServer(&report.Service{}, "", "test")

	names := make(map[string]bool)
	for _, tool := range s.mcpServer.ListTools() {
		names[tool.Name] = true
	}

	for _, want := range []string{"organization_list", "lifecycle_report", "eol_lookup"} {
		if !names[want] {
			t.Errorf("Expected tool %s to be registered", want)
		}
	}
	if len(names) != 3 {
		t.Errorf("Expected 3 tools, got %d", len(names))
	}
}

func TestHandleRequest_Auth(t *testing.T) {
	s := NewServer(&report.Service{}, "secret-token", "test")

	tests := []struct {
		name       string
		authHeader string
	}{
		{"Missing header", ""},
		{"Wrong scheme", "Basic secret-token"},
		{"Wrong token", "Bearer wrong-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{}`))
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			s.HandleRequest(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", w.Code)
			}
		})
	}
}

func TestFormatOrganizations(t *testing.T) {
	if got := formatOrganizations(nil); got != "No organizations found" {
		t.Errorf("Unexpected empty output %q", got)
	}

	got := formatOrganizations([]model.Organization{{ID: "1", Name: "Acme"}, {ID: "2", Name: "Globex"}})
	for _, want := range []string{"Found 2 organization(s)", "1 - Acme (ID: 1)", "2 - Globex (ID: 2)"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}

func TestFormatAnnouncement(t *testing.T) {
	got := formatAnnouncement(model.Announcement{
		Model:          "MX64",
		Product:        "MX64W",
		EndOfSupport:   time.Date(2027, time.July, 20, 0, 0, 0, 0, time.UTC),
		UpgradePathURL: "https://example.com/a; https://example.com/b",
	})

	for _, want := range []string{
		"Model: MX64",
		"Product: MX64W",
		"End of support: 2027-07-20",
		"Upgrade path: https://example.com/a",
		"Upgrade path: https://example.com/b",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	summary := &model.RunSummary{
		RunID: "run-1",
		Reports: []model.OrganizationReport{
			{
				Organization: model.Organization{ID: "1", Name: "Acme"},
				Status:       model.StatusOK,
				Entries: []model.Entry{{
					PendingEntry: model.PendingEntry{Model: "MR18", ActiveUnits: 5, EndOfSupport: time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)},
					Urgency:      model.UrgencyCritical,
				}},
			},
			{Organization: model.Organization{ID: "2", Name: "Globex"}, Status: model.StatusEmpty},
			{Organization: model.Organization{ID: "3", Name: "Initech"}, Status: model.StatusFailed, Error: "fetching inventory: unauthorized"},
		},
	}
	summary.Tally()

	got := formatSummary(summary)
	for _, want := range []string{
		"Run run-1: 1 ok, 1 empty, 1 failed",
		"## Acme - 1",
		"- MR18: 5 active, end of support 2022-03-01 [CRITICAL]",
		"No models in use with an end-of-life announcement",
		"Skipped: fetching inventory: unauthorized",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}
