package models

import "time"

// Status is the lifecycle state of a debt record.
type Status string

const (
	// StatusInProgress means the debtor still owes part of the amount.
	StatusInProgress Status = "EN_COURS"

	// StatusSettled means the remaining balance reached zero.
	StatusSettled Status = "SOLDE"
)

// DebtRecord is one debtor's ledger entry.
type DebtRecord struct {
	// ID is the unique identifier, generated at creation and immutable.
	// Format: "CRED-<unix millis>-<random suffix>".
	ID string `json:"id"`

	// Name is the debtor's free-text name.
	Name string `json:"nom"`

	// Amount is the total amount owed. Fixed at creation; the payment and
	// edit flows never touch it.
	Amount float64 `json:"montant"`

	// Paid is the cumulative amount paid so far.
	Paid float64 `json:"verse"`

	// Remaining is the derived outstanding balance, max(Amount-Paid, 0).
	// Recomputed on every mutation, never trusted from storage.
	Remaining float64 `json:"reste"`

	// Contact is the WhatsApp handle used for reminders.
	Contact string `json:"whatsapp"`

	// Reason is the free-text origin of the debt.
	Reason string `json:"motif"`

	// CreatedAt is set once at creation.
	CreatedAt time.Time `json:"dateCreation"`

	// ModifiedAt is refreshed on every mutation.
	ModifiedAt time.Time `json:"dateModification"`

	// Statut is derived from Remaining: SOLDE iff Remaining == 0.
	Statut Status `json:"statut"`

	// RemindersSent counts dispatched reminders. Never decremented.
	RemindersSent int `json:"notificationsEnvoyees"`
}
