package calculator

import (
	"math"
	"testing"

	"github.com/maelys-market/creanciers/internal/models"
)

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name          string
		amount        float64
		paid          float64
		wantRemaining float64
		wantPercent   float64
		wantStatus    models.Status
	}{
		{
			name:          "nothing paid yet",
			amount:        10000,
			paid:          0,
			wantRemaining: 10000,
			wantPercent:   0,
			wantStatus:    models.StatusInProgress,
		},
		{
			name:          "partial payment",
			amount:        5000,
			paid:          4000,
			wantRemaining: 1000,
			wantPercent:   80,
			wantStatus:    models.StatusInProgress,
		},
		{
			name:          "exactly settled",
			amount:        10000,
			paid:          10000,
			wantRemaining: 0,
			wantPercent:   100,
			wantStatus:    models.StatusSettled,
		},
		{
			name:          "overpaid is clamped at zero",
			amount:        5000,
			paid:          6000,
			wantRemaining: 0,
			wantPercent:   120,
			wantStatus:    models.StatusSettled,
		},
		{
			name:          "zero amount does not divide",
			amount:        0,
			paid:          0,
			wantRemaining: 0,
			wantPercent:   0,
			wantStatus:    models.StatusSettled,
		},
		{
			name:          "zero amount with payment still guarded",
			amount:        0,
			paid:          500,
			wantRemaining: 0,
			wantPercent:   0,
			wantStatus:    models.StatusSettled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalance(tt.amount, tt.paid)
			if math.Abs(got.Remaining-tt.wantRemaining) > 0.001 {
				t.Errorf("Remaining = %v, want %v", got.Remaining, tt.wantRemaining)
			}
			if math.Abs(got.PercentPaid-tt.wantPercent) > 0.001 {
				t.Errorf("PercentPaid = %v, want %v", got.PercentPaid, tt.wantPercent)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestComputeBalanceNeverNegativeOrNaN(t *testing.T) {
	// Sweep a grid of (amount, paid) pairs, including the zero edge.
	for amount := 0.0; amount <= 5000; amount += 250 {
		for paid := 0.0; paid <= 7500; paid += 250 {
			got := ComputeBalance(amount, paid)
			if got.Remaining < 0 {
				t.Fatalf("ComputeBalance(%v, %v).Remaining = %v, negative", amount, paid, got.Remaining)
			}
			if math.IsNaN(got.PercentPaid) || math.IsInf(got.PercentPaid, 0) {
				t.Fatalf("ComputeBalance(%v, %v).PercentPaid = %v", amount, paid, got.PercentPaid)
			}
			settled := got.Remaining == 0
			if (got.Status == models.StatusSettled) != settled {
				t.Fatalf("ComputeBalance(%v, %v): status %v with remaining %v", amount, paid, got.Status, got.Remaining)
			}
		}
	}
}
