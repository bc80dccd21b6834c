package financial

import (
	"context"

	"servibook-api/res/store"

	"go.uber.org/zap"
)

// noopService records penalties in the log only. Used in development and in
// deployments where payouts are reconciled manually.
type noopService struct {
	logger *zap.SugaredLogger
}

// NewNoop creates a log-only FinancialService
func NewNoop(logger *zap.SugaredLogger) FinancialService {
	return &noopService{logger: logger}
}

func (s *noopService) ProcessCancellationPenalty(ctx context.Context, booking *store.Booking, penaltyPercentage int) error {
	s.logger.Infow("cancellation penalty recorded",
		"booking_id", booking.ID,
		"amount_cents", booking.AmountCents,
		"penalty_percentage", penaltyPercentage,
	)
	return nil
}
