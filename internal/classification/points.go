package classification

import (
	"sort"

	"github.com/yourusername/veloportal/internal/models"
)

// Sprint points by finish position, keyed by stage type. Flat stages pay
// the deepest table; time-trials and high mountain stages the flattest.
var stagePointsTables = map[models.StageType][]int{
	models.StageFlat:           {50, 30, 20, 18, 16, 14, 12, 10, 8, 7, 6, 5, 4, 3, 2},
	models.StageMediumMountain: {30, 25, 22, 19, 17, 15, 13, 11, 9, 7, 6, 5, 4, 3, 2},
	models.StageHighMountain:   {20, 17, 15, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	models.StageTimeTrial:      {20, 17, 15, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
}

// Mountain points by climb crossing position, keyed by climb category.
var mountainPointsTables = map[models.CheckpointType][]int{
	models.ClimbHC: {20, 15, 12, 10, 8, 6, 4, 2},
	models.ClimbC1: {10, 8, 6, 4, 2, 1},
	models.ClimbC2: {5, 3, 2, 1},
	models.ClimbC3: {2, 1},
	models.ClimbC4: {1},
}

func tablePoints(table []int, position int) int {
	if position < len(table) {
		return table[position]
	}
	return 0
}

// StagePoints returns sprint points aligned with Rank. Points follow the
// strict finish order; adjusted-time grouping plays no part here.
func StagePoints(stageType models.StageType, results []*models.Result) []int {
	table := stagePointsTables[stageType]
	standings := Standings(stageType, results)
	points := make([]int, len(standings))
	for i := range standings {
		points[i] = tablePoints(table, i)
	}
	return points
}

// MountainPoints returns each rider's mountain points for the stage,
// aligned with Rank. Every climb checkpoint is scored separately on the
// order riders crossed it, which need not match the finish order, and a
// rider's stage total is the sum over all climbs. checkpoints must be the
// stage's checkpoints in location order, matching the timestamp layout of
// the results.
func MountainPoints(stageType models.StageType, checkpoints []*models.Checkpoint, results []*models.Result) []int {
	totals := make(map[int]int, len(results))
	for idx, cp := range checkpoints {
		if !cp.Type.IsClimb() {
			continue
		}
		table := mountainPointsTables[cp.Type]
		crossing := make([]*models.Result, len(results))
		copy(crossing, results)
		sort.Slice(crossing, func(i, j int) bool {
			ti, tj := crossing[i].CheckpointTime(idx), crossing[j].CheckpointTime(idx)
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return crossing[i].RiderID < crossing[j].RiderID
		})
		for pos, r := range crossing {
			totals[r.RiderID] += tablePoints(table, pos)
		}
	}

	standings := Standings(stageType, results)
	points := make([]int, len(standings))
	for i, s := range standings {
		points[i] = totals[s.RiderID]
	}
	return points
}
