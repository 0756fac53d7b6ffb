package projection

import (
	"time"

	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// ComputeMilestones returns the 25/50/75/100% milestones in ascending order.
// A milestone is achieved when current savings cover its amount, whatever the
// backend reported. Unachieved milestones get a projected date only when
// monthlyContribution is positive and the date falls on or before
// datetime.MaxDate.
func ComputeMilestones(state GoalState, monthlyContribution *decimal.Decimal) ([]Milestone, error) {
	r, err := resolve(state)
	if err != nil {
		return nil, err
	}
	return computeMilestones(r, contributionRate(r, monthlyContribution)), nil
}

func computeMilestones(r resolved, contribution *rate) []Milestone {
	milestones := make([]Milestone, 0, len(constants.MilestonePercentages))
	for _, p := range constants.MilestonePercentages {
		amount := mathutil.ApplyPercentage(r.target, p)
		m := Milestone{
			Percentage:   p,
			TargetAmount: amount,
			Achieved:     r.current.GreaterThanOrEqual(amount),
			Reported:     r.reported[p],
		}
		m.ProjectedDate = milestoneDate(r, amount, m.Achieved, contribution)
		milestones = append(milestones, m)
	}
	return milestones
}

func milestoneDate(r resolved, amount decimal.Decimal, achieved bool, contribution *rate) *time.Time {
	if achieved {
		return datetime.Ptr(r.asOf)
	}
	if contribution == nil || !contribution.positive() {
		return nil
	}
	toGo := mathutil.ClampZero(amount.Sub(r.current))
	return projectDate(r.asOf, contribution.monthsToCover(toGo))
}
