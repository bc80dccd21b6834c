package financial

import (
	"context"

	"servibook-api/res/store"
)

// FinancialService is the narrow contract to the payment side of the
// platform. The booking lifecycle supplies only the booking and the penalty
// percentage; currency rounding, capture and transfer happen behind this
// interface.
type FinancialService interface {
	// ProcessCancellationPenalty charges the cancellation penalty for a
	// booking, computed from booking.AmountCents and the percentage
	ProcessCancellationPenalty(ctx context.Context, booking *store.Booking, penaltyPercentage int) error
}
