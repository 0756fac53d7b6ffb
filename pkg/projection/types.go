// Package projection computes forward-looking savings projections for a single
// goal: the monthly contribution plan, the projected completion date, the
// 25/50/75/100% milestones and a bounded month-by-month timeline.
//
// Every function here is pure. The evaluation date is always taken from
// GoalState.AsOfDate and never from the clock, so identical input yields
// identical output.
package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalState is the caller-owned input for one projection.
type GoalState struct {
	GoalID string
	Name   string

	// TargetAmount is the goal's estimated cost. When nil it is derived as
	// CurrentSavings + RemainingAmount.
	TargetAmount   *decimal.Decimal
	CurrentSavings decimal.Decimal

	// RemainingAmount may be supplied by the backend. When nil it is computed
	// as max(0, TargetAmount - CurrentSavings).
	RemainingAmount *decimal.Decimal

	TargetDate *time.Time
	AsOfDate   time.Time

	// MonthlyContribution is a fixed contribution chosen by the caller. When
	// set it takes precedence over a contribution derived from TargetDate.
	MonthlyContribution *decimal.Decimal

	// AchievedMilestones is the backend's view of crossed thresholds. It is
	// advisory only; achievement is recomputed from CurrentSavings.
	AchievedMilestones []int
}

// Plan is the result of PlanContribution.
type Plan struct {
	MonthlyContribution     *decimal.Decimal `json:"monthly_contribution"`
	ProjectedCompletionDate *time.Time       `json:"projected_completion_date"`

	// MonthsRemaining is the 30-day-month horizon to the target date, or nil
	// when no usable target date exists.
	MonthsRemaining *int `json:"months_remaining"`

	// Overdue is set when the target date lies before the as-of date.
	Overdue bool `json:"overdue"`
}

// Milestone is one of the four fixed completion checkpoints.
type Milestone struct {
	Percentage    int             `json:"percentage"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	ProjectedDate *time.Time      `json:"projected_date"`
	Achieved      bool            `json:"achieved"`
	Reported      bool            `json:"reported"`
}

// TimelinePoint is a single month of cumulative savings for charting.
type TimelinePoint struct {
	MonthIndex        int             `json:"month_index"`
	Date              time.Time       `json:"date"`
	CumulativeSavings decimal.Decimal `json:"cumulative_savings"`
	TargetAmount      decimal.Decimal `json:"target_amount"`
}

// GoalProjection is newly built on every call and carries no identity beyond
// the goal it describes.
type GoalProjection struct {
	GoalID          string          `json:"goal_id,omitempty"`
	Name            string          `json:"goal_name,omitempty"`
	AsOfDate        time.Time       `json:"as_of_date"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CurrentSavings  decimal.Decimal `json:"current_savings"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	ProgressPct     decimal.Decimal `json:"progress_pct"`

	Plan

	Milestones []Milestone     `json:"milestones"`
	Timeline   []TimelinePoint `json:"timeline"`
}

// Indeterminate reports whether the engine lacked the data to derive a
// contribution plan. Callers should render an "insufficient data" state
// rather than treat this as a failure.
func (p *GoalProjection) Indeterminate() bool {
	return p.MonthlyContribution == nil
}

// Complete reports whether the goal has already been reached.
func (p *GoalProjection) Complete() bool {
	return p.RemainingAmount.IsZero()
}

// MilestoneDisagreements returns the percentages where the backend's reported
// state differs from the achievement computed from current savings.
func (p *GoalProjection) MilestoneDisagreements() []int {
	var disagreements []int
	for _, m := range p.Milestones {
		if m.Achieved != m.Reported {
			disagreements = append(disagreements, m.Percentage)
		}
	}
	return disagreements
}
