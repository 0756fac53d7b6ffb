// Package adapters converts goal records from the backend API and from the
// configuration file into projection.GoalState values.
package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/magnatepoint/goal-projection/internal/config"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/projection"
	"github.com/shopspring/decimal"
)

// GoalProgress is the goal-progress record returned by the backend. Amounts
// may arrive as JSON numbers or strings.
type GoalProgress struct {
	GoalID                  string           `json:"goal_id"`
	GoalName                string           `json:"goal_name"`
	ProgressPct             *decimal.Decimal `json:"progress_pct,omitempty"`
	CurrentSavingsClose     *decimal.Decimal `json:"current_savings_close"`
	RemainingAmount         *decimal.Decimal `json:"remaining_amount,omitempty"`
	ProjectedCompletionDate string           `json:"projected_completion_date,omitempty"`
	Milestones              json.RawMessage  `json:"milestones,omitempty"`
	EstimatedCost           *decimal.Decimal `json:"estimated_cost,omitempty"`
	TargetDate              string           `json:"target_date,omitempty"`
	MonthlyContribution     *decimal.Decimal `json:"monthly_contribution,omitempty"`
}

type backendMilestone struct {
	Percentage int  `json:"percentage"`
	Achieved   bool `json:"achieved"`
}

// ParseMilestones reads the backend milestones field, which is either a list
// of achieved percentages or a list of {percentage, achieved} objects. The
// result is sorted and free of duplicates.
func ParseMilestones(raw json.RawMessage) ([]int, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var percentages []int
	if err := json.Unmarshal(raw, &percentages); err != nil {
		var objects []backendMilestone
		if objErr := json.Unmarshal(raw, &objects); objErr != nil {
			return nil, fmt.Errorf("milestones must be a list of percentages or milestone objects: %w", err)
		}
		percentages = percentages[:0]
		for _, m := range objects {
			if m.Achieved {
				percentages = append(percentages, m.Percentage)
			}
		}
	}

	seen := make(map[int]bool, len(percentages))
	achieved := make([]int, 0, len(percentages))
	for _, p := range percentages {
		if seen[p] {
			continue
		}
		seen[p] = true
		achieved = append(achieved, p)
	}
	sort.Ints(achieved)
	return achieved, nil
}

// ToGoalState builds the engine input for this record evaluated at asOf.
func (g GoalProgress) ToGoalState(asOf time.Time) (projection.GoalState, error) {
	targetDate, err := datetime.ParseOptionalDate(g.TargetDate)
	if err != nil {
		return projection.GoalState{}, fmt.Errorf("goal %s: target_date: %w", g.GoalID, err)
	}

	achieved, err := ParseMilestones(g.Milestones)
	if err != nil {
		return projection.GoalState{}, fmt.Errorf("goal %s: %w", g.GoalID, err)
	}

	current := decimal.Zero
	if g.CurrentSavingsClose != nil {
		current = *g.CurrentSavingsClose
	}

	return projection.GoalState{
		GoalID:              g.GoalID,
		Name:                g.GoalName,
		TargetAmount:        g.EstimatedCost,
		CurrentSavings:      current,
		RemainingAmount:     g.RemainingAmount,
		TargetDate:          targetDate,
		AsOfDate:            asOf,
		MonthlyContribution: g.MonthlyContribution,
		AchievedMilestones:  achieved,
	}, nil
}

// GoalFromConfig builds the engine input for a configured goal evaluated at
// asOf.
func GoalFromConfig(goal config.Goal, asOf time.Time) (projection.GoalState, error) {
	target, err := parseOptionalAmount(goal.TargetAmount)
	if err != nil {
		return projection.GoalState{}, fmt.Errorf("targetAmount: %w", err)
	}
	remaining, err := parseOptionalAmount(goal.RemainingAmount)
	if err != nil {
		return projection.GoalState{}, fmt.Errorf("remainingAmount: %w", err)
	}
	contribution, err := parseOptionalAmount(goal.MonthlyContribution)
	if err != nil {
		return projection.GoalState{}, fmt.Errorf("monthlyContribution: %w", err)
	}

	current := decimal.Zero
	if c, err := parseOptionalAmount(goal.CurrentSavings); err != nil {
		return projection.GoalState{}, fmt.Errorf("currentSavings: %w", err)
	} else if c != nil {
		current = *c
	}

	targetDate, err := datetime.ParseOptionalDate(goal.TargetDate)
	if err != nil {
		return projection.GoalState{}, fmt.Errorf("targetDate: %w", err)
	}

	return projection.GoalState{
		GoalID:              goal.ID,
		Name:                goal.Name,
		TargetAmount:        target,
		CurrentSavings:      current,
		RemainingAmount:     remaining,
		TargetDate:          targetDate,
		AsOfDate:            asOf,
		MonthlyContribution: contribution,
		AchievedMilestones:  append([]int(nil), goal.AchievedMilestones...),
	}, nil
}

func parseOptionalAmount(value string) (*decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}
