package calculator

import (
	"cmp"
	"slices"
	"time"

	"github.com/maelys-market/creanciers/internal/models"
)

// Stats aggregates the whole portfolio for the dashboard cards.
type Stats struct {
	Count            int     `json:"totalCreanciers"`
	TotalAmount      float64 `json:"totalMontant"`
	TotalRemaining   float64 `json:"totalReste"`
	TotalPaid        float64 `json:"totalVerse"`
	SettledCount     int     `json:"creanciersSoldes"`
	ActiveCount      int     `json:"creanciersActifs"`
	PercentRemaining float64 `json:"pourcentageReste"`
	PercentPaid      float64 `json:"pourcentageVerse"`
}

// ComputeStatistics aggregates counts and totals across all records.
// Percentage fields are 0 when the total amount is 0 (empty store, or only
// zero-amount records), never NaN.
func ComputeStatistics(records []models.DebtRecord) Stats {
	var s Stats
	s.Count = len(records)
	for _, r := range records {
		s.TotalAmount += r.Amount
		s.TotalRemaining += r.Remaining
		s.TotalPaid += r.Paid
		if r.Remaining > 0 {
			s.ActiveCount++
		} else {
			s.SettledCount++
		}
	}
	if s.TotalAmount > 0 {
		s.PercentRemaining = s.TotalRemaining / s.TotalAmount * 100
		s.PercentPaid = s.TotalPaid / s.TotalAmount * 100
	}
	return s
}

// SortForDisplay returns a copy of records ordered most recently touched
// first. Records without a modification date fall back to their creation
// date; equal timestamps tie-break on ID so the ordering is total and
// deterministic.
func SortForDisplay(records []models.DebtRecord) []models.DebtRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.DebtRecord) int {
		if c := displayTime(b).Compare(displayTime(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

func displayTime(r models.DebtRecord) time.Time {
	if !r.ModifiedAt.IsZero() {
		return r.ModifiedAt
	}
	return r.CreatedAt
}
