// Package forecast runs the projection engine over every goal in a
// configuration.
package forecast

import (
	"fmt"
	"time"

	"github.com/magnatepoint/goal-projection/internal/config"
	"github.com/magnatepoint/goal-projection/pkg/adapters"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/format"
	"github.com/magnatepoint/goal-projection/pkg/projection"
	"go.uber.org/zap"
)

// GetProjections projects all active goals as of the given date, in
// configuration order.
func GetProjections(logger *zap.Logger, conf config.Configuration, asOf time.Time) ([]*projection.GoalProjection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	active := conf.ActiveGoals()
	if skipped := len(conf.Goals) - len(active); skipped > 0 {
		logger.Debug("skipping inactive goals",
			zap.String("op", "forecast.GetProjections"),
			zap.Int("count", skipped),
		)
	}

	var results []*projection.GoalProjection
	for _, goal := range active {
		state, err := adapters.GoalFromConfig(goal, asOf)
		if err != nil {
			return results, fmt.Errorf("goal %s: %w", goal.Name, err)
		}

		result, err := projection.Project(state)
		if err != nil {
			return results, fmt.Errorf("goal %s: %w", goal.Name, err)
		}

		LogProjection(logger, result, "forecast.GetProjections")
		results = append(results, result)
	}

	return results, nil
}

// LogProjection writes a summary of one projection, plus a debug entry when
// the backend's reported milestones disagree with the computed ones.
func LogProjection(logger *zap.Logger, result *projection.GoalProjection, op string) {
	if logger == nil {
		return
	}

	logger.Info(fmt.Sprintf("projected goal %s", result.Name),
		zap.String("op", op),
		zap.String("goalID", result.GoalID),
		zap.String("asOf", datetime.Format(result.AsOfDate)),
		zap.String("remaining", result.RemainingAmount.String()),
		zap.String("monthlyContribution", format.OptionalCurrency(result.MonthlyContribution)),
		zap.String("completion", format.Date(result.ProjectedCompletionDate)),
		zap.Bool("indeterminate", result.Indeterminate()),
		zap.Bool("overdue", result.Overdue),
	)

	if disagreements := result.MilestoneDisagreements(); len(disagreements) > 0 {
		logger.Debug("reported milestones disagree with current savings",
			zap.String("op", op),
			zap.String("goalID", result.GoalID),
			zap.Ints("percentages", disagreements),
		)
	}
}
