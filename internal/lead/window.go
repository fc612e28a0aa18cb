package lead

import (
	"fmt"
	"strings"
	"time"
)

// Window selects the time interval a cleaned batch is filtered to,
// relative to a reference instant. Hours and Days are mutually exclusive;
// SinceMidnight ignores both and anchors the window at the local midnight
// before the reference's previous day.
type Window struct {
	Hours         int
	Days          int
	SinceMidnight bool
	Reference     time.Time // zero means now
}

// Validate rejects contradictory window configurations.
func (w Window) Validate() error {
	if w.Hours > 0 && w.Days > 0 {
		return fmt.Errorf("window: hours and days are mutually exclusive")
	}
	if !w.SinceMidnight && w.Hours <= 0 && w.Days <= 0 {
		return fmt.Errorf("window: one of hours, days or since-midnight is required")
	}
	return nil
}

// Bounds returns the inclusive interval [start, end] the window covers.
func (w Window) Bounds() (time.Time, time.Time) {
	ref := w.Reference
	if ref.IsZero() {
		ref = time.Now()
	}
	if w.SinceMidnight {
		prev := ref.AddDate(0, 0, -1)
		start := time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, ref.Location())
		return start, ref
	}
	if w.Days > 0 {
		return ref.AddDate(0, 0, -w.Days), ref
	}
	return ref.Add(-time.Duration(w.Hours) * time.Hour), ref
}

// Filter retains the leads whose PaidAt lies inside the window, bounds
// inclusive. Leads without a timestamp never pass.
func Filter(leads []*Lead, w Window) []*Lead {
	start, end := w.Bounds()
	out := make([]*Lead, 0, len(leads))
	for _, l := range leads {
		if !l.HasPaidAt {
			continue
		}
		if l.PaidAt.Before(start) || l.PaidAt.After(end) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Dedupe removes duplicate identifiers keeping the first occurrence in
// input order. Leads with an empty identifier are never deduplicated
// against each other.
func Dedupe(leads []*Lead) []*Lead {
	seen := make(map[string]bool, len(leads))
	out := make([]*Lead, 0, len(leads))
	for _, l := range leads {
		id := strings.TrimSpace(l.ID)
		if id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		out = append(out, l)
	}
	return out
}
