package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/loanledger/internal/domain"
)

func TestGenerateSchedule(t *testing.T) {
	principal := decimal.NewFromInt(1000)
	rate := decimal.RequireFromString("0.24")
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	rows, err := domain.GenerateSchedule(principal, rate, 3, start)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	wantDue := []time.Time{
		time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 14, 12, 0, 0, 0, time.UTC),
	}

	for i, row := range rows {
		assert.Equal(t, i+1, row.Number)
		assert.True(t, row.DueDate.Equal(wantDue[i]), "row %d due %s, want %s", i+1, row.DueDate, wantDue[i])
		assert.True(t, row.Amount.Equal(row.PrincipalAmount.Add(row.InterestAmount)),
			"row %d amount %s != principal %s + interest %s", i+1, row.Amount, row.PrincipalAmount, row.InterestAmount)
	}

	// The first two installments share the fixed amount; the last may
	// differ only by the rounding residue folded into its principal.
	assert.True(t, rows[0].Amount.Equal(rows[1].Amount))

	sumPrincipal := decimal.Zero
	sumInterest := decimal.Zero
	sumAmount := decimal.Zero

	for _, row := range rows {
		sumPrincipal = sumPrincipal.Add(row.PrincipalAmount)
		sumInterest = sumInterest.Add(row.InterestAmount)
		sumAmount = sumAmount.Add(row.Amount)
	}

	assert.True(t, sumPrincipal.Equal(principal), "principal components sum to %s, want %s", sumPrincipal, principal)
	assert.True(t, sumAmount.Equal(principal.Add(sumInterest)), "amounts sum to %s, want principal+interest %s", sumAmount, principal.Add(sumInterest))
	assert.True(t, rows[2].RemainingBalance.IsZero(), "final remaining balance %s, want 0", rows[2].RemainingBalance)
}

func TestGenerateScheduleZeroRate(t *testing.T) {
	principal := decimal.NewFromInt(900)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rows, err := domain.GenerateSchedule(principal, decimal.Zero, 4, start)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	sumPrincipal := decimal.Zero
	for _, row := range rows {
		assert.True(t, row.InterestAmount.IsZero())
		sumPrincipal = sumPrincipal.Add(row.PrincipalAmount)
	}

	assert.True(t, sumPrincipal.Equal(principal))
}

func TestGenerateScheduleResidueFolding(t *testing.T) {
	// An awkward principal forces rounding residue into the last row.
	principal := decimal.RequireFromString("1000.01")
	rate := decimal.RequireFromString("0.355")
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	rows, err := domain.GenerateSchedule(principal, rate, 7, start)
	require.NoError(t, err)

	sumPrincipal := decimal.Zero
	for _, row := range rows {
		sumPrincipal = sumPrincipal.Add(row.PrincipalAmount)
		assert.True(t, row.Amount.Equal(row.PrincipalAmount.Add(row.InterestAmount)))
	}

	assert.True(t, sumPrincipal.Equal(principal), "got %s, want %s", sumPrincipal, principal)
	assert.True(t, rows[len(rows)-1].RemainingBalance.IsZero())
}

func TestGenerateScheduleValidation(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		wantErr   error
	}{
		{"zero principal", "0", "0.24", 3, domain.ErrInvalidPrincipal},
		{"negative principal", "-10", "0.24", 3, domain.ErrInvalidPrincipal},
		{"negative rate", "1000", "-0.01", 3, domain.ErrInvalidRate},
		{"zero term", "1000", "0.24", 0, domain.ErrInvalidTerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.GenerateSchedule(
				decimal.RequireFromString(tt.principal),
				decimal.RequireFromString(tt.rate),
				tt.term,
				start,
			)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
