package ledger

import (
	"context"
	"log"
	"strings"

	"github.com/ignite/lead-ledger/internal/lead"
)

// Default partition labels; the period token is appended to form the sheet
// name, e.g. "Active Leads 202592".
const (
	DefaultActiveLabel   = "Active Leads"
	DefaultDeferredLabel = "Deferred Leads"
)

// DefaultDeferredMarkers classify a lead as deferred when its status
// contains any of them, case-insensitively. Exports carry both Spanish and
// English stems.
var DefaultDeferredMarkers = []string{"pospone", "postpone"}

// Reconciler merges cleaned batches into the ledger and keeps the
// active/deferred partitions consistent.
type Reconciler struct {
	store           *Store
	activeLabel     string
	deferredLabel   string
	deferredMarkers []string
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLabels overrides the partition labels.
func WithLabels(active, deferred string) Option {
	return func(r *Reconciler) {
		if active != "" {
			r.activeLabel = active
		}
		if deferred != "" {
			r.deferredLabel = deferred
		}
	}
}

// WithDeferredMarkers overrides the deferred status marker set.
func WithDeferredMarkers(markers []string) Option {
	return func(r *Reconciler) {
		if len(markers) > 0 {
			r.deferredMarkers = markers
		}
	}
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store *Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:           store,
		activeLabel:     DefaultActiveLabel,
		deferredLabel:   DefaultDeferredLabel,
		deferredMarkers: DefaultDeferredMarkers,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ActiveSheet returns the active partition name for a period.
func (r *Reconciler) ActiveSheet(period string) string {
	return r.activeLabel + " " + period
}

// DeferredSheet returns the deferred partition name for a period.
func (r *Reconciler) DeferredSheet(period string) string {
	return r.deferredLabel + " " + period
}

// Result reports one reconciliation run.
type Result struct {
	Added         int // net new rows merged into the active partition
	Relocated     int // rows moved from active to deferred this run
	ActiveTotal   int
	DeferredTotal int
}

// Reconcile merges the batch into the period's active partition (unless
// relocateOnly), relocates deferred-status rows, and persists the whole
// workbook. Existing ledger rows win over incoming rows that share an
// identifier: a consolidated record is authoritative and a repeated CRM
// export must not overwrite manual edits. The relocation scan runs every
// time, merged data or not, so a record marked deferred between runs still
// moves.
func (r *Reconciler) Reconcile(ctx context.Context, batch []*lead.Lead, period string, relocateOnly bool) (Result, error) {
	led, err := r.store.Load(ctx)
	if err != nil {
		return Result{}, err
	}

	activeName := r.ActiveSheet(period)
	deferredName := r.DeferredSheet(period)
	activePart := led.Ensure(activeName, lead.ActiveColumns)
	deferredPart := led.Ensure(deferredName, lead.DeferredColumns)

	active := partitionLeads(activePart)
	deferred := partitionLeads(deferredPart)

	var res Result

	if !relocateOnly && len(batch) > 0 {
		// A lead lives in exactly one partition. Rows already consolidated
		// as deferred must not re-enter active, even when a later export
		// carries them with a clean status.
		deferredIDs := make(map[string]bool, len(deferred))
		for _, l := range deferred {
			if id := strings.TrimSpace(l.ID); id != "" {
				deferredIDs[id] = true
			}
		}
		incoming := make([]*lead.Lead, 0, len(batch))
		for _, l := range batch {
			if deferredIDs[strings.TrimSpace(l.ID)] {
				continue
			}
			incoming = append(incoming, l)
		}

		existing := len(active)
		active = lead.Dedupe(append(active, incoming...))
		res.Added = len(active) - existing
		if res.Added < 0 {
			res.Added = 0
		}
		log.Printf("[ledger] merged batch of %d into %q: %d existing, %d added, %d already deferred",
			len(batch), activeName, existing, res.Added, len(batch)-len(incoming))
	}

	kept := active[:0]
	var moved []*lead.Lead
	for _, l := range active {
		if r.isDeferred(l) {
			moved = append(moved, l)
		} else {
			kept = append(kept, l)
		}
	}
	active = kept
	if len(moved) > 0 {
		res.Relocated = len(moved)
		deferred = lead.Dedupe(append(deferred, moved...))
		log.Printf("[ledger] relocated %d rows from %q to %q", len(moved), activeName, deferredName)
	}

	writePartition(activePart, active)
	writePartition(deferredPart, deferred)
	res.ActiveTotal = len(activePart.Rows)
	res.DeferredTotal = len(deferredPart.Rows)

	if err := r.store.Save(ctx, led); err != nil {
		return Result{}, err
	}
	return res, nil
}

// isDeferred reports whether the lead's status contains a deferred marker.
func (r *Reconciler) isDeferred(l *lead.Lead) bool {
	status := strings.ToLower(l.StatusText())
	if status == "" {
		return false
	}
	for _, m := range r.deferredMarkers {
		if strings.Contains(status, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// partitionLeads rehydrates a partition's rows into leads.
func partitionLeads(p *Partition) []*lead.Lead {
	leads := make([]*lead.Lead, 0, len(p.Rows))
	for _, row := range p.Rows {
		leads = append(leads, lead.FromRow(p.Columns, row))
	}
	return leads
}

// writePartition serializes leads back into the partition, widening the
// schema with any passthrough columns the batch introduced so no source
// data is silently dropped.
func writePartition(p *Partition, leads []*lead.Lead) {
	p.Columns = append(p.Columns, lead.ExtraColumns(leads, p.Columns)...)
	p.Rows = p.Rows[:0]
	for _, l := range leads {
		p.Rows = append(p.Rows, l.Row(p.Columns))
	}
}
