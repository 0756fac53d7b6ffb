// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/magnatepoint/goal-projection/pkg/datetime"
)

// GoalConfig is the subset of a configured goal that validation inspects.
type GoalConfig struct {
	ID                  string
	Name                string
	Active              bool
	TargetDate          string
	MonthlyContribution string
}

// ConfigValidator checks a goal list against the evaluation date.
type ConfigValidator struct {
	AsOfDate time.Time
	Goals    []GoalConfig
}

// ValidateGoalHorizon warns when a goal cannot be projected to a date or its
// deadline has already passed.
func ValidateGoalHorizon(label, targetDate, monthlyContribution string, asOf time.Time) []string {
	var warnings []string

	hasContribution := strings.TrimSpace(monthlyContribution) != ""
	target, err := datetime.ParseOptionalDate(targetDate)
	if err != nil {
		// Unparseable dates are reported as errors when the goal is converted.
		return nil
	}

	if target == nil && !hasContribution {
		warnings = append(warnings, fmt.Sprintf("%s has neither a target date nor a monthly contribution - projection will be indeterminate", label))
	}

	if target != nil && !asOf.IsZero() && datetime.DateBeforeDate(*target, asOf) {
		warnings = append(warnings, fmt.Sprintf("%s target date is before the as-of date (%s < %s) - goal is overdue",
			label, datetime.Format(*target), datetime.Format(asOf)))
	}

	return warnings
}

// ValidateAll validates the entire goal list and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	seen := make(map[string]int)
	active := 0
	for i, goal := range cv.Goals {
		label := fmt.Sprintf("Goal '%s'", goal.Name)
		if strings.TrimSpace(goal.Name) == "" {
			label = fmt.Sprintf("Goal #%d", i+1)
			warnings = append(warnings, fmt.Sprintf("%s has no name", label))
		}

		if strings.TrimSpace(goal.ID) == "" {
			warnings = append(warnings, fmt.Sprintf("%s has no id", label))
		} else if first, dup := seen[goal.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("%s reuses id '%s' from goal #%d", label, goal.ID, first+1))
		} else {
			seen[goal.ID] = i
		}

		if !goal.Active {
			continue
		}
		active++
		warnings = append(warnings, ValidateGoalHorizon(label, goal.TargetDate, goal.MonthlyContribution, cv.AsOfDate)...)
	}

	if len(cv.Goals) > 0 && active == 0 {
		warnings = append(warnings, "No goals are active - nothing will be projected")
	}

	return warnings
}
