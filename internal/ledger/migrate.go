package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maelys-market/creanciers/internal/calculator"
	"github.com/maelys-market/creanciers/internal/models"
)

// rawRecord mirrors DebtRecord with pointer fields so absent keys can be
// told apart from zero values. The first version of the web application
// stored only the remaining balance ("reste") with no cumulative paid
// total ("verse"); migration reconstructs verse from montant - reste.
type rawRecord struct {
	ID            *string        `json:"id"`
	Name          *string        `json:"nom"`
	Amount        *float64       `json:"montant"`
	Paid          *float64       `json:"verse"`
	Remaining     *float64       `json:"reste"`
	Contact       *string        `json:"whatsapp"`
	Reason        *string        `json:"motif"`
	CreatedAt     *time.Time     `json:"dateCreation"`
	ModifiedAt    *time.Time     `json:"dateModification"`
	Statut        *models.Status `json:"statut"`
	RemindersSent *int           `json:"notificationsEnvoyees"`
}

// migrateRecords decodes a persisted record array, upgrading any
// legacy-shaped entries to the current shape. The returned flag reports
// whether anything actually changed, so callers persist only when needed.
// Running the result through migrateRecords again changes nothing.
func migrateRecords(data []byte, now time.Time) ([]models.DebtRecord, bool, error) {
	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, false, fmt.Errorf("failed to decode records: %w", err)
	}

	changed := false
	records := make([]models.DebtRecord, 0, len(raws))
	for _, raw := range raws {
		r := models.DebtRecord{
			Name:    deref(raw.Name),
			Amount:  deref(raw.Amount),
			Contact: deref(raw.Contact),
			Reason:  deref(raw.Reason),
		}

		switch {
		case raw.Paid != nil:
			// Current shape.
			r.Paid = *raw.Paid
			r.CreatedAt = deref(raw.CreatedAt)
			r.ModifiedAt = deref(raw.ModifiedAt)
		case raw.Remaining != nil:
			// Legacy shape: reconstruct the paid total.
			r.Paid = r.Amount - *raw.Remaining
			r.CreatedAt = deref(raw.CreatedAt)
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
			r.ModifiedAt = now
			changed = true
		default:
			// Neither verse nor reste: treat as an unpaid debt.
			r.CreatedAt = deref(raw.CreatedAt)
			r.ModifiedAt = deref(raw.ModifiedAt)
		}

		if raw.ID != nil && *raw.ID != "" {
			r.ID = *raw.ID
		} else {
			r.ID = newRecordID(now)
			changed = true
		}
		if raw.RemindersSent != nil {
			r.RemindersSent = *raw.RemindersSent
		}

		// Derived fields are recomputed, not trusted from storage.
		bal := calculator.ComputeBalance(r.Amount, r.Paid)
		r.Remaining = bal.Remaining
		r.Statut = bal.Status

		records = append(records, r)
	}

	return records, changed, nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
