package projection

import (
	"time"

	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// remainingTolerance is how far a supplied remaining amount may drift from
// target minus current savings, one cent, before the state is rejected.
var remainingTolerance = decimal.New(1, -constants.DecimalPlaces)

// resolved is a validated GoalState with every derived amount filled in.
type resolved struct {
	state     GoalState
	asOf      time.Time
	target    decimal.Decimal
	current   decimal.Decimal
	remaining decimal.Decimal
	// targetDate is nil when absent; overdue dates are kept here and flagged.
	targetDate *time.Time
	overdue    bool
	fixed      *decimal.Decimal
	reported   map[int]bool
}

func resolve(state GoalState) (resolved, error) {
	if state.AsOfDate.IsZero() {
		return resolved{}, invalid(state, "as_of_date", "is required")
	}
	if state.CurrentSavings.IsNegative() {
		return resolved{}, invalid(state, "current_savings", "cannot be negative")
	}
	if state.TargetAmount != nil && state.TargetAmount.IsNegative() {
		return resolved{}, invalid(state, "target_amount", "cannot be negative")
	}
	if state.RemainingAmount != nil && state.RemainingAmount.IsNegative() {
		return resolved{}, invalid(state, "remaining_amount", "cannot be negative")
	}
	if state.MonthlyContribution != nil && state.MonthlyContribution.IsNegative() {
		return resolved{}, invalid(state, "monthly_contribution", "cannot be negative")
	}

	r := resolved{
		state:    state,
		asOf:     datetime.Truncate(state.AsOfDate),
		current:  state.CurrentSavings,
		reported: make(map[int]bool, len(state.AchievedMilestones)),
	}

	switch {
	case state.TargetAmount != nil:
		r.target = *state.TargetAmount
		computed := mathutil.ClampZero(r.target.Sub(r.current))
		r.remaining = computed
		if state.RemainingAmount != nil {
			if r.current.GreaterThan(r.target) && state.RemainingAmount.IsPositive() {
				return resolved{}, invalid(state, "remaining_amount",
					"must be zero when current savings exceed the target amount")
			}
			if state.RemainingAmount.Sub(computed).Abs().GreaterThan(remainingTolerance) {
				return resolved{}, invalid(state, "remaining_amount",
					"does not match target amount minus current savings")
			}
		}
	case state.RemainingAmount != nil:
		r.remaining = *state.RemainingAmount
		r.target = r.current.Add(r.remaining)
	default:
		r.target = r.current
		r.remaining = decimal.Zero
	}

	if state.TargetDate != nil {
		td := datetime.Truncate(*state.TargetDate)
		r.targetDate = &td
		r.overdue = td.Before(r.asOf)
	}

	if state.MonthlyContribution != nil && state.MonthlyContribution.IsPositive() {
		fixed := *state.MonthlyContribution
		r.fixed = &fixed
	}

	for _, p := range state.AchievedMilestones {
		if !isMilestonePercentage(p) {
			return resolved{}, invalid(state, "achieved_milestones", "contains an unknown percentage")
		}
		r.reported[p] = true
	}

	return r, nil
}

// horizon returns the months remaining to a usable (not overdue) target date.
func (r resolved) horizon() (int, bool) {
	if r.targetDate == nil || r.overdue {
		return 0, false
	}
	return datetime.MonthsRemaining(r.asOf, *r.targetDate), true
}

func isMilestonePercentage(p int) bool {
	for _, m := range constants.MilestonePercentages {
		if m == p {
			return true
		}
	}
	return false
}
