package model

import "time"

// ReportStatus is the outcome of processing one organization.
type ReportStatus string

const (
	StatusOK     ReportStatus = "ok"
	StatusEmpty  ReportStatus = "empty"  // no qualifying entries; still a valid section
	StatusFailed ReportStatus = "failed" // inventory could not be fetched
)

// OrganizationReport is the per-organization result handed to renderers.
type OrganizationReport struct {
	Organization Organization `json:"organization"`
	Entries      []Entry      `json:"entries"`
	Status       ReportStatus `json:"status"`
	Error        string       `json:"error,omitempty"`
}

// RunCounts tallies report statuses for a run
type RunCounts struct {
	OK     int `json:"ok"`
	Empty  int `json:"empty"`
	Failed int `json:"failed"`
}

// RunSummary is the outcome of one report run. Reports are in the order the
// organizations were requested.
type RunSummary struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Reports     []OrganizationReport `json:"reports"`
	Counts      RunCounts            `json:"counts"`
}

// Tally recomputes Counts from Reports.
func (s *RunSummary) Tally() {
	s.Counts = RunCounts{}
	for _, r := range s.Reports {
		switch r.Status {
		case StatusOK:
			s.Counts.OK++
		case StatusEmpty:
			s.Counts.Empty++
		case StatusFailed:
			s.Counts.Failed++
		}
	}
}

// Failed returns the reports that could not be produced
func (s *RunSummary) Failed() []OrganizationReport {
	var failed []OrganizationReport
	for _, r := range s.Reports {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
