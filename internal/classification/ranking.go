package classification

import (
	"time"

	"github.com/yourusername/veloportal/internal/models"
)

// Rank returns rider IDs ordered by real elapsed time, fastest first.
// Empty when the stage has no results.
func Rank(stageType models.StageType, results []*models.Result) []int {
	standings := Standings(stageType, results)
	ids := make([]int, len(standings))
	for i, s := range standings {
		ids[i] = s.RiderID
	}
	return ids
}

// RankedAdjustedTimes returns adjusted elapsed times aligned index for
// index with Rank for the same inputs.
func RankedAdjustedTimes(stageType models.StageType, results []*models.Result) []time.Duration {
	standings := Standings(stageType, results)
	times := make([]time.Duration, len(standings))
	for i, s := range standings {
		times[i] = s.Adjusted
	}
	return times
}
