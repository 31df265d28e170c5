package models

import "time"

// ActionKind identifies the mutation an action log entry describes.
type ActionKind string

const (
	ActionAdd          ActionKind = "AJOUT"
	ActionPayment      ActionKind = "PAIEMENT"
	ActionEdit         ActionKind = "MODIFICATION"
	ActionDelete       ActionKind = "SUPPRESSION"
	ActionReminderSent ActionKind = "ENVOI_RAPPEL"
)

// Actor is the single-user identity recorded on every log entry.
const Actor = "Maëlys Market"

// ActionEntry is one line of the append-only action log. The log is purely
// informational: it is never replayed to reconstruct state.
type ActionEntry struct {
	Kind ActionKind `json:"type"`

	// Details carries a small kind-specific set of fields (name, amount,
	// resulting balance, normalized contact, ...).
	Details map[string]any `json:"details"`

	Timestamp time.Time `json:"date"`
	Actor     string    `json:"utilisateur"`
}
