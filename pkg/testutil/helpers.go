// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/magnatepoint/goal-projection/pkg/projection"
)

// FindResult finds a projection by goal ID in the results slice.
// Returns nil if no projection matches.
func FindResult(results []*projection.GoalProjection, goalID string) *projection.GoalProjection {
	for _, result := range results {
		if result != nil && result.GoalID == goalID {
			return result
		}
	}
	return nil
}
