// Package ledger implements the créanciers record store: an in-memory
// collection of debt records plus a bounded action log, flushed to a
// string-keyed persistent store after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maelys-market/creanciers/internal/calculator"
	"github.com/maelys-market/creanciers/internal/models"
	"github.com/maelys-market/creanciers/internal/storage"
)

// Storage keys, kept identical to the legacy web application so a SQLite
// file seeded from a localStorage dump loads as-is.
const (
	keyRecords    = "maelys_creanciers"
	keyHistory    = "maelys_historique"
	keyLastUpdate = "maelys_last_update"
)

// historyLimit bounds the action log; oldest entries are dropped first.
const historyLimit = 100

// Confirm supplies the user's yes/no to a confirmation prompt. The ledger
// decides when an operation needs confirmation; the presentation
// collaborator decides how to ask. A nil Confirm counts as a decline.
type Confirm func(prompt string) bool

// Ledger owns the record collection and the action log. All mutations go
// through it; every successful mutation is flushed to the backing store.
type Ledger struct {
	mu      sync.Mutex
	kv      storage.KVStore
	records []models.DebtRecord
	history []models.ActionEntry

	now func() time.Time
}

// Open loads the ledger from kv. Corrupt persisted data is logged and
// replaced by an empty state rather than failing startup; legacy-shaped
// records are migrated and, when anything changed, flushed back.
func Open(ctx context.Context, kv storage.KVStore) (*Ledger, error) {
	l := &Ledger{kv: kv, now: time.Now}

	changed := false
	if raw, ok, err := kv.Get(ctx, keyRecords); err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	} else if ok {
		records, migrated, err := migrateRecords([]byte(raw), l.now())
		if err != nil {
			slog.Warn("Corrupt persisted records, starting empty", "error", err)
		} else {
			l.records = records
			changed = migrated
		}
	}

	if raw, ok, err := kv.Get(ctx, keyHistory); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	} else if ok {
		var history []models.ActionEntry
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			slog.Warn("Corrupt persisted history, starting empty", "error", err)
		} else {
			l.history = capHistory(history)
		}
	}

	if changed {
		if err := l.flush(ctx); err != nil {
			return nil, err
		}
		slog.Info("Migrated legacy records", "count", len(l.records))
	}

	return l, nil
}

// newRecordID builds a legacy-compatible identifier: a CRED- prefix, the
// creation time in unix milliseconds and a random suffix.
func newRecordID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("CRED-%d-%s", now.UnixMilli(), suffix)
}

// Add creates a new record. Amount must be strictly positive, paid
// non-negative, and name/contact/reason non-empty.
func (l *Ledger) Add(ctx context.Context, name string, amount, paid float64, contact, reason string) (models.DebtRecord, error) {
	name = strings.TrimSpace(name)
	contact = strings.TrimSpace(contact)
	reason = strings.TrimSpace(reason)
	if name == "" || contact == "" || reason == "" {
		return models.DebtRecord{}, fmt.Errorf("%w: nom, whatsapp and motif are required", ErrValidation)
	}
	if amount <= 0 {
		return models.DebtRecord{}, fmt.Errorf("%w: montant must be > 0", ErrValidation)
	}
	if paid < 0 {
		return models.DebtRecord{}, fmt.Errorf("%w: verse must be >= 0", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bal := calculator.ComputeBalance(amount, paid)
	record := models.DebtRecord{
		ID:         newRecordID(now),
		Name:       name,
		Amount:     amount,
		Paid:       paid,
		Remaining:  bal.Remaining,
		Contact:    contact,
		Reason:     reason,
		CreatedAt:  now,
		ModifiedAt: now,
		Statut:     bal.Status,
	}
	l.records = append(l.records, record)
	l.logAction(models.ActionAdd, map[string]any{"nom": record.Name, "montant": record.Amount})

	return record, l.flush(ctx)
}

// ApplyPayment adds a strictly positive payment to the record's cumulative
// paid total and re-derives its balance and status.
func (l *Ledger) ApplyPayment(ctx context.Context, id string, amount float64) (models.DebtRecord, error) {
	if amount <= 0 {
		return models.DebtRecord{}, fmt.Errorf("%w: payment must be > 0", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.find(id)
	if err != nil {
		return models.DebtRecord{}, err
	}

	r.Paid += amount
	l.rederive(r)
	l.logAction(models.ActionPayment, map[string]any{
		"nom":          r.Name,
		"montant":      amount,
		"nouveauReste": r.Remaining,
	})

	return *r, l.flush(ctx)
}

// Update edits a record's name, contact, reason and cumulative paid total.
// The total amount owed is fixed at creation and cannot be edited.
func (l *Ledger) Update(ctx context.Context, id, name, contact, reason string, paid float64) (models.DebtRecord, error) {
	name = strings.TrimSpace(name)
	contact = strings.TrimSpace(contact)
	reason = strings.TrimSpace(reason)
	if name == "" || contact == "" || reason == "" {
		return models.DebtRecord{}, fmt.Errorf("%w: nom, whatsapp and motif are required", ErrValidation)
	}
	if paid < 0 {
		return models.DebtRecord{}, fmt.Errorf("%w: verse must be >= 0", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.find(id)
	if err != nil {
		return models.DebtRecord{}, err
	}

	r.Name = name
	r.Contact = contact
	r.Reason = reason
	r.Paid = paid
	l.rederive(r)
	l.logAction(models.ActionEdit, map[string]any{"nom": r.Name})

	return *r, l.flush(ctx)
}

// Delete removes a record. Deleting always asks for confirmation; the
// prompt calls out an outstanding balance when there is one.
func (l *Ledger) Delete(ctx context.Context, id string, confirm Confirm) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r := l.records[idx]

	var prompt string
	if r.Remaining > 0 {
		prompt = fmt.Sprintf("%s doit encore %.0f FCFA. Supprimer quand même ?", r.Name, r.Remaining)
	} else {
		prompt = fmt.Sprintf("Supprimer %s de la liste ?", r.Name)
	}
	if confirm == nil || !confirm(prompt) {
		return ErrConfirmationDeclined
	}

	l.logAction(models.ActionDelete, map[string]any{"nom": r.Name})
	l.records = append(l.records[:idx], l.records[idx+1:]...)

	return l.flush(ctx)
}

// RecordReminderSent increments the record's reminder counter after a
// reminder was dispatched to the given normalized contact.
func (l *Ledger) RecordReminderSent(ctx context.Context, id, normalizedContact string) (models.DebtRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.find(id)
	if err != nil {
		return models.DebtRecord{}, err
	}

	r.RemindersSent++
	r.ModifiedAt = l.now()
	l.logAction(models.ActionReminderSent, map[string]any{"numero": normalizedContact})

	return *r, l.flush(ctx)
}

// ResetAll clears the records and the action log. Irreversible, so it
// always requires confirmation.
func (l *Ledger) ResetAll(ctx context.Context, confirm Confirm) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if confirm == nil || !confirm("Réinitialiser toutes les données ? Cette action est irréversible !") {
		return ErrConfirmationDeclined
	}

	l.records = nil
	l.history = nil
	return l.flush(ctx)
}

// ReplaceAll swaps in a whole new record set and history, as parsed from an
// import document. The current store is untouched until confirmed.
func (l *Ledger) ReplaceAll(ctx context.Context, records []models.DebtRecord, history []models.ActionEntry, confirm Confirm) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prompt := fmt.Sprintf("Importer %d créanciers ? Les données actuelles seront remplacées.", len(records))
	if confirm == nil || !confirm(prompt) {
		return ErrConfirmationDeclined
	}

	l.records = records
	l.history = capHistory(history)
	return l.flush(ctx)
}

// Records returns a copy of the current record set, in storage order.
func (l *Ledger) Records() []models.DebtRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.DebtRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Get returns the record with the given ID.
func (l *Ledger) Get(id string) (models.DebtRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.find(id)
	if err != nil {
		return models.DebtRecord{}, err
	}
	return *r, nil
}

// History returns up to n action log entries, most recent first.
func (l *Ledger) History(n int) []models.ActionEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.history) {
		n = len(l.history)
	}
	out := make([]models.ActionEntry, 0, n)
	for i := len(l.history) - 1; i >= len(l.history)-n; i-- {
		out = append(out, l.history[i])
	}
	return out
}

// find returns a pointer into l.records for in-place mutation.
// Callers must hold l.mu.
func (l *Ledger) find(id string) (*models.DebtRecord, error) {
	if idx := l.indexOf(id); idx >= 0 {
		return &l.records[idx], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.records {
		if l.records[i].ID == id {
			return i
		}
	}
	return -1
}

// rederive recomputes the record's balance and status from (Amount, Paid)
// and stamps the modification time. Callers must hold l.mu.
func (l *Ledger) rederive(r *models.DebtRecord) {
	bal := calculator.ComputeBalance(r.Amount, r.Paid)
	r.Remaining = bal.Remaining
	r.Statut = bal.Status
	r.ModifiedAt = l.now()
}

// logAction appends an entry to the bounded action log.
// Callers must hold l.mu.
func (l *Ledger) logAction(kind models.ActionKind, details map[string]any) {
	l.history = append(l.history, models.ActionEntry{
		Kind:      kind,
		Details:   details,
		Timestamp: l.now(),
		Actor:     models.Actor,
	})
	l.history = capHistory(l.history)
}

func capHistory(history []models.ActionEntry) []models.ActionEntry {
	if len(history) > historyLimit {
		return history[len(history)-historyLimit:]
	}
	return history
}

// flush serializes the records and history into the backing store.
// A failure is reported as ErrPersistence: the in-memory mutation stands,
// but the caller must surface the divergence to the user.
// Callers must hold l.mu.
func (l *Ledger) flush(ctx context.Context) error {
	records, err := json.Marshal(l.records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	history, err := json.Marshal(l.history)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := l.kv.Set(ctx, keyRecords, string(records)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := l.kv.Set(ctx, keyHistory, string(history)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := l.kv.Set(ctx, keyLastUpdate, l.now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
