package lifecycle

import (
	"testing"
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	now := date(2024, time.January, 1)

	tests := []struct {
		name string
		eos  time.Time
		want model.Urgency
	}{
		{"Past end-of-support", date(2023, time.December, 31), model.UrgencyCritical},
		{"Within a year", date(2024, time.June, 1), model.UrgencyWarning},
		{"More than a year away", date(2025, time.June, 1), model.UrgencyNormal},
		{"Exactly now", date(2024, time.January, 1), model.UrgencyWarning},
		{"Last day of warning window", now.AddDate(0, 0, WarningWindowDays-1), model.UrgencyWarning},
		{"First day past warning window", now.AddDate(0, 0, WarningWindowDays), model.UrgencyNormal},
		{"Unknown date", time.Time{}, model.UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.eos, now); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.eos.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestClassify_ComparesUTCDates(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name string
		now  time.Time
		eos  time.Time
		want model.Urgency
	}{
		// 2024-01-02 in UTC, so support ended yesterday
		{"Local evening is next UTC day", time.Date(2024, time.January, 1, 23, 0, 0, 0, est), date(2024, time.January, 1), model.UrgencyCritical},
		{"Local morning is same UTC day", time.Date(2024, time.January, 1, 8, 0, 0, 0, est), date(2024, time.January, 1), model.UrgencyWarning},
		{"Non-UTC end-of-support", date(2024, time.January, 2), time.Date(2024, time.January, 1, 20, 0, 0, 0, est), model.UrgencyWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.eos, tt.now); got != tt.want {
				t.Errorf("Classify(%s, %s) = %s, want %s", tt.eos, tt.now, got, tt.want)
			}
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, time.January, 1, 18, 30, 0, 0, time.UTC)
	eos := date(2024, time.January, 1)

	if got := Classify(eos, now); got != model.UrgencyWarning {
		t.Errorf("Expected WARNING for end-of-support today, got %s", got)
	}
}
