package lifecycle

import (
	"time"

	"github.com/martinsuchenak/merakilife/internal/model"
)

// WarningWindowDays is how far ahead of end-of-support a model turns WARNING.
const WarningWindowDays = 365

// Classify tags an end-of-support date relative to now. Both are compared as
// UTC calendar dates, so a model whose support ends today is WARNING, not CRITICAL.
// An unknown (zero) end-of-support date is NORMAL.
func Classify(endOfSupport, now time.Time) model.Urgency {
	if endOfSupport.IsZero() {
		return model.UrgencyNormal
	}

	eos := civilDate(endOfSupport)
	today := civilDate(now)

	switch {
	case eos.Before(today):
		return model.UrgencyCritical
	case eos.Before(today.AddDate(0, 0, WarningWindowDays)):
		return model.UrgencyWarning
	default:
		return model.UrgencyNormal
	}
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
