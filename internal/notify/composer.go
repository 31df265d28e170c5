// Package notify builds WhatsApp payment reminders: the message text and
// the wa.me deep link the presentation collaborator opens to actually send
// it. Nothing here mutates state; recording the dispatch is the ledger's
// job once the link has been opened.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/maelys-market/creanciers/internal/calculator"
	"github.com/maelys-market/creanciers/internal/models"
)

// ErrZeroAmount rejects reminders for zero-amount records: the percentage
// line would otherwise print NaN in a message sent to a real person.
var ErrZeroAmount = fmt.Errorf("cannot compose reminder for zero amount")

// Composer renders reminder messages and dispatch targets.
type Composer struct {
	// CountryPrefix is prepended to contact numbers that do not already
	// carry it (digits only, e.g. "221" for Senegal).
	CountryPrefix string

	// Deposit is the mobile-money deposit number quoted in every message.
	Deposit string
}

// NewComposer returns a Composer with the shop's defaults.
func NewComposer() *Composer {
	return &Composer{CountryPrefix: "221", Deposit: "75523259"}
}

// frenchPrinter formats currency figures with French thousands-grouping,
// matching what the debtors saw from the legacy application.
var frenchPrinter = message.NewPrinter(language.French)

func formatAmount(v float64) string {
	return frenchPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// ComposeReminder renders the reminder template for one record.
func (c *Composer) ComposeReminder(r models.DebtRecord) (string, error) {
	if r.Amount == 0 {
		return "", ErrZeroAmount
	}
	bal := calculator.ComputeBalance(r.Amount, r.Paid)

	return fmt.Sprintf(`*MAËLYS MARKET & TONTINE - RAPPEL DE PAIEMENT*

Bonjour *%s*,

📝 *Motif du crédit* : %s
💰 *Montant total* : %s FCFA
💵 *Montant versé* : %s FCFA (%.1f%%)
⏳ *Reste à payer* : %s FCFA

📌 *Numéro de dépôt* : %s

Merci d'avoir fait confiance à Maëlys Market et Tontine.

_Cliquez sur ce message pour payer ou contactez-nous pour plus d'informations._`,
		r.Name,
		r.Reason,
		formatAmount(r.Amount),
		formatAmount(r.Paid),
		bal.PercentPaid,
		formatAmount(bal.Remaining),
		c.Deposit,
	), nil
}

// NormalizeContact strips whitespace and "+" from a contact number and
// prepends the country prefix when it is missing.
func (c *Composer) NormalizeContact(contact string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '+' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, contact)
	if !strings.HasPrefix(cleaned, c.CountryPrefix) {
		cleaned = c.CountryPrefix + cleaned
	}
	return cleaned
}

// DispatchTarget builds the wa.me deep link carrying the message text.
// Opening the link (and therefore actually sending) is the collaborator's
// side effect.
func (c *Composer) DispatchTarget(contact, text string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + c.NormalizeContact(contact),
		RawQuery: url.Values{"text": {text}}.Encode(),
	}
	return u.String()
}
