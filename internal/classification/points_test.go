package classification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/veloportal/internal/models"
)

func TestStagePointsFollowsFinishOrder(t *testing.T) {
	// Riders 1 and 2 share an adjusted time but points still follow the
	// strict finish order.
	results := []*models.Result{
		resultWithElapsed(1, time.Hour),
		resultWithElapsed(2, time.Hour+300*time.Millisecond),
		resultWithElapsed(3, time.Hour+5*time.Second),
	}

	points := StagePoints(models.StageFlat, results)
	assert.Equal(t, []int{50, 30, 20}, points)
}

func TestStagePointsBeyondTableAreZero(t *testing.T) {
	var results []*models.Result
	for i := 1; i <= 20; i++ {
		results = append(results, resultWithElapsed(i, time.Hour+time.Duration(i)*10*time.Second))
	}

	points := StagePoints(models.StageTimeTrial, results)
	require.Len(t, points, 20)
	assert.Equal(t, 20, points[0])
	assert.Equal(t, 0, points[15])
	assert.Equal(t, 0, points[19])
}

func TestMountainPointsUseCrossingOrder(t *testing.T) {
	// Stage layout: sprint at km 5, HC climb at km 15. Rider 2 crests the
	// climb first but finishes second; rider 2 must take the climb win.
	checkpoints := []*models.Checkpoint{
		{ID: 1, StageID: 1, Type: models.CheckpointSprint, Location: decimal.NewFromInt(5)},
		{ID: 2, StageID: 1, Type: models.ClimbHC, Location: decimal.NewFromInt(15)},
	}
	results := []*models.Result{
		{StageID: 1, RiderID: 1, Times: []time.Time{
			raceDay,
			raceDay.Add(10 * time.Minute),
			raceDay.Add(40 * time.Minute),
			raceDay.Add(time.Hour),
		}},
		{StageID: 1, RiderID: 2, Times: []time.Time{
			raceDay,
			raceDay.Add(11 * time.Minute),
			raceDay.Add(39 * time.Minute),
			raceDay.Add(time.Hour + 10*time.Second),
		}},
	}

	points := MountainPoints(models.StageHighMountain, checkpoints, results)
	// Aligned with rank order [1, 2]: rider 1 second over the climb, rider
	// 2 first.
	assert.Equal(t, []int{15, 20}, points)
}

func TestMountainPointsSumAcrossClimbs(t *testing.T) {
	checkpoints := []*models.Checkpoint{
		{ID: 1, StageID: 1, Type: models.ClimbC2, Location: decimal.NewFromInt(8)},
		{ID: 2, StageID: 1, Type: models.ClimbC4, Location: decimal.NewFromInt(16)},
	}
	results := []*models.Result{
		{StageID: 1, RiderID: 1, Times: []time.Time{
			raceDay,
			raceDay.Add(20 * time.Minute),
			raceDay.Add(45 * time.Minute),
			raceDay.Add(time.Hour),
		}},
		{StageID: 1, RiderID: 2, Times: []time.Time{
			raceDay,
			raceDay.Add(21 * time.Minute),
			raceDay.Add(46 * time.Minute),
			raceDay.Add(time.Hour + time.Minute),
		}},
	}

	points := MountainPoints(models.StageMediumMountain, checkpoints, results)
	// Rider 1 wins both climbs: C2 first (5) + C4 first (1).
	assert.Equal(t, []int{6, 3}, points)
}

func TestMountainPointsNoClimbs(t *testing.T) {
	checkpoints := []*models.Checkpoint{
		{ID: 1, StageID: 1, Type: models.CheckpointSprint, Location: decimal.NewFromInt(5)},
	}
	results := []*models.Result{
		{StageID: 1, RiderID: 1, Times: []time.Time{
			raceDay, raceDay.Add(10 * time.Minute), raceDay.Add(time.Hour),
		}},
	}

	assert.Equal(t, []int{0}, MountainPoints(models.StageFlat, checkpoints, results))
}
