package projection

import (
	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// GenerateTimeline returns cumulative savings for month 0 (the as-of date)
// through min(monthsRemaining, 12). The series is empty when there is no
// contribution or no usable target date. Savings never exceed the target.
func GenerateTimeline(state GoalState, monthlyContribution *decimal.Decimal) ([]TimelinePoint, error) {
	r, err := resolve(state)
	if err != nil {
		return nil, err
	}
	if monthlyContribution != nil && monthlyContribution.IsNegative() {
		return nil, invalid(state, "monthly_contribution", "cannot be negative")
	}
	return generateTimeline(r, contributionRate(r, monthlyContribution)), nil
}

func generateTimeline(r resolved, contribution *rate) []TimelinePoint {
	months, ok := r.horizon()
	if contribution == nil || !ok {
		return []TimelinePoint{}
	}
	horizon := months
	if horizon > constants.MaxTimelineMonths {
		horizon = constants.MaxTimelineMonths
	}

	points := make([]TimelinePoint, 0, horizon+1)
	start := mathutil.Min(r.current, r.target)
	for i := 0; i <= horizon; i++ {
		cumulative := start
		if i > 0 {
			cumulative = mathutil.Min(r.current.Add(contribution.savedAfter(i)), r.target)
		}
		points = append(points, TimelinePoint{
			MonthIndex:        i,
			Date:              datetime.AddApproxMonths(r.asOf, i),
			CumulativeSavings: cumulative,
			TargetAmount:      r.target,
		})
	}
	return points
}
