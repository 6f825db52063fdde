package grading

import "github.com/stemsi/assessment-backend/internal/model"

// Diagnostics collects skipped items alongside a successful computation.
type Diagnostics struct {
	items []model.Skip
}

// Skip records one absorbed inconsistency.
func (d *Diagnostics) Skip(kind model.SkipKind, ref, detail string) {
	d.items = append(d.items, model.Skip{Kind: kind, Ref: ref, Detail: detail})
}

// Items returns the recorded skips, nil when nothing was skipped.
func (d *Diagnostics) Items() []model.Skip {
	return d.items
}

// Len returns the number of recorded skips.
func (d *Diagnostics) Len() int {
	return len(d.items)
}
