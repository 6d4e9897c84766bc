// Package worker consumes record events and replays them into the
// external ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/mirror"
	"contas/internal/store"
)

// MirrorWorker appends one ledger row per record event. Identity comes
// from the message; description and amount are looked up in the record
// store when the event still points at a live record.
type MirrorWorker struct {
	records store.RecordStore
	ledger  mirror.LedgerWriter
}

func NewMirrorWorker(records store.RecordStore, ledger mirror.LedgerWriter) *MirrorWorker {
	return &MirrorWorker{records: records, ledger: ledger}
}

// HandleRecordEvent processes one record event. Returning an error
// requeues the delivery.
func (w *MirrorWorker) HandleRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error {
	entry := mirror.Entry{
		Entity:    msg.Entity,
		Action:    msg.Action,
		ID:        msg.ID,
		UserID:    msg.UserID,
		Month:     msg.Month,
		Year:      msg.Year,
		Timestamp: msg.Timestamp,
	}

	if msg.Action != amqp.ActionDeleted && msg.Month != 0 {
		w.enrich(ctx, &entry)
	}

	ref, err := w.ledger.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored record event",
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID,
		"ledger_ref", ref)

	return nil
}

// enrich fills description, amount and status from the record store.
// Lookup failures leave the identity-only entry; a thin ledger row
// beats a requeue loop against a record that may be gone.
func (w *MirrorWorker) enrich(ctx context.Context, entry *mirror.Entry) {
	f := store.Filter{UserID: entry.UserID, Month: entry.Month, Year: entry.Year}

	switch entry.Entity {
	case amqp.EntityTask:
		tasks, err := w.records.ListTasks(ctx, f)
		if err != nil {
			slog.WarnContext(ctx, "Ledger enrichment lookup failed", "error", err, "id", entry.ID)
			return
		}
		for _, t := range tasks {
			if t.ID == entry.ID {
				entry.Description = t.Title
				entry.Status = string(t.Status)
				if t.Price != nil {
					entry.Amount = core.FormatBRL(t.Price.Cents)
				}
				return
			}
		}
	case amqp.EntityIncome:
		incomes, err := w.records.ListIncomes(ctx, f)
		if err != nil {
			slog.WarnContext(ctx, "Ledger enrichment lookup failed", "error", err, "id", entry.ID)
			return
		}
		for _, i := range incomes {
			if i.ID == entry.ID {
				entry.Description = i.Description
				entry.Amount = core.FormatBRL(i.Amount.Cents)
				return
			}
		}
	}
}
