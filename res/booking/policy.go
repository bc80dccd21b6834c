package booking

import "time"

// Cancellation lead-time tiers, in hours before the scheduled start
const (
	minCancellationLeadHours = 2
	halfPenaltyLeadHours     = 24
	quarterPenaltyLeadHours  = 48
	halfPenaltyPercentage    = 50
	quarterPenaltyPercentage = 25
)

// CancellationAssessment is the outcome of evaluating the cancellation
// policy for one booking. The penalty amount itself is computed downstream
// by the financial collaborator from the booking amount and the percentage;
// the policy never touches money.
type CancellationAssessment struct {
	CanCancel         bool
	HasPenalty        bool
	PenaltyPercentage int
	Message           string
}

// CancellationPolicy maps "hours until scheduled start" to a cancellation
// outcome. It is a pure function of two instants.
//
// When HardBlockUnderMinLead is false the sub-2-hour tier is advisory: the
// cancellation is allowed but carries the full late penalty.
type CancellationPolicy struct {
	HardBlockUnderMinLead bool
}

// NewCancellationPolicy returns the platform cancellation policy. The
// hard block under the minimum lead time is configurable; the penalty tiers
// are not.
func NewCancellationPolicy(hardBlockUnderMinLead bool) *CancellationPolicy {
	return &CancellationPolicy{HardBlockUnderMinLead: hardBlockUnderMinLead}
}

// Evaluate computes the cancellation outcome for a booking starting at
// scheduledStart, as seen from now
func (p *CancellationPolicy) Evaluate(scheduledStart, now time.Time) CancellationAssessment {
	hoursUntilStart := scheduledStart.Sub(now).Hours()

	switch {
	case hoursUntilStart < minCancellationLeadHours:
		if p.HardBlockUnderMinLead {
			return CancellationAssessment{
				CanCancel: false,
				Message:   "cancellation is not allowed less than 2 hours before the scheduled start",
			}
		}
		return CancellationAssessment{
			CanCancel:         true,
			HasPenalty:        true,
			PenaltyPercentage: halfPenaltyPercentage,
			Message:           "cancelled less than 2 hours before start, a 50% penalty applies",
		}

	case hoursUntilStart < halfPenaltyLeadHours:
		return CancellationAssessment{
			CanCancel:         true,
			HasPenalty:        true,
			PenaltyPercentage: halfPenaltyPercentage,
			Message:           "cancelled less than 24 hours before start, a 50% penalty applies",
		}

	case hoursUntilStart < quarterPenaltyLeadHours:
		return CancellationAssessment{
			CanCancel:         true,
			HasPenalty:        true,
			PenaltyPercentage: quarterPenaltyPercentage,
			Message:           "cancelled less than 48 hours before start, a 25% penalty applies",
		}

	default:
		return CancellationAssessment{
			CanCancel: true,
			Message:   "cancelled more than 48 hours before start, no penalty applies",
		}
	}
}
