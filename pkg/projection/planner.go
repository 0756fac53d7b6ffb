package projection

import (
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// PlanContribution derives whichever of the monthly contribution and the
// projected completion date the caller did not supply.
//
//   - remaining amount zero: contribution 0, completion on the as-of date.
//   - fixed contribution supplied: completion after ceil(remaining/contribution)
//     30-day months, or nil when that lies beyond datetime.MaxDate.
//   - target date on or after the as-of date: contribution is the remaining
//     amount spread over max(1, ceil(days/30)) months, unrounded.
//   - otherwise both are nil and the projection is indeterminate.
func PlanContribution(state GoalState) (Plan, error) {
	r, err := resolve(state)
	if err != nil {
		return Plan{}, err
	}
	return planContribution(r), nil
}

func planContribution(r resolved) Plan {
	var plan Plan
	plan.Overdue = r.overdue

	months, hasHorizon := r.horizon()
	if hasHorizon {
		plan.MonthsRemaining = &months
	}

	if r.remaining.IsZero() {
		plan.MonthlyContribution = mathutil.Ptr(decimal.Zero)
		plan.ProjectedCompletionDate = datetime.Ptr(r.asOf)
		plan.Overdue = false
		return plan
	}

	if r.fixed != nil {
		fixed := flatRate(*r.fixed)
		plan.MonthlyContribution = mathutil.Ptr(*r.fixed)
		plan.ProjectedCompletionDate = projectDate(r.asOf, fixed.monthsToCover(r.remaining))
		return plan
	}

	if hasHorizon {
		plan.MonthlyContribution = mathutil.Ptr(spreadRate(r.remaining, months).amount())
		plan.ProjectedCompletionDate = datetime.Ptr(*r.targetDate)
	}

	return plan
}
