package projection

import (
	"github.com/magnatepoint/goal-projection/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Project runs the contribution planner, milestone calculator and timeline
// generator over one GoalState.
func Project(state GoalState) (*GoalProjection, error) {
	r, err := resolve(state)
	if err != nil {
		return nil, err
	}

	plan := planContribution(r)
	contribution := contributionRate(r, plan.MonthlyContribution)
	return &GoalProjection{
		GoalID:          state.GoalID,
		Name:            state.Name,
		AsOfDate:        r.asOf,
		TargetAmount:    r.target,
		CurrentSavings:  r.current,
		RemainingAmount: r.remaining,
		ProgressPct:     progress(r),
		Plan:            plan,
		Milestones:      computeMilestones(r, contribution),
		Timeline:        generateTimeline(r, contribution),
	}, nil
}

func progress(r resolved) decimal.Decimal {
	if r.target.IsZero() {
		return hundred
	}
	return mathutil.Min(mathutil.CalculatePercentage(r.current, r.target), hundred)
}
