// Package calculator holds the pure balance and portfolio arithmetic.
// Everything here is side-effect free; the same functions back the live
// form preview and the commit path, so derived values can never drift
// between the two.
package calculator

import "github.com/maelys-market/creanciers/internal/models"

// Balance is the derived view of an (amount, paid) pair.
type Balance struct {
	Remaining   float64
	PercentPaid float64
	Status      models.Status
}

// ComputeBalance derives the remaining balance, percentage paid and status
// from an amount owed and a cumulative amount paid.
//
// Remaining is clamped at zero: overpaying never produces a negative
// balance. PercentPaid is 0 when amount is 0 so no NaN ever reaches a
// caller.
func ComputeBalance(amount, paid float64) Balance {
	remaining := amount - paid
	if remaining < 0 {
		remaining = 0
	}

	var pct float64
	if amount > 0 {
		pct = paid / amount * 100
	}

	status := models.StatusInProgress
	if remaining <= 0 {
		status = models.StatusSettled
	}

	return Balance{
		Remaining:   remaining,
		PercentPaid: pct,
		Status:      status,
	}
}
