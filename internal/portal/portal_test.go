package portal

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/veloportal/internal/models"
)

var stageStart = time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)

func newTestPortal() *Portal {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func km(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestCreateRaceValidation(t *testing.T) {
	p := newTestPortal()

	tests := []struct {
		name     string
		raceName string
		wantErr  error
	}{
		{"empty", "", models.ErrInvalidName},
		{"whitespace", "tour de", models.ErrInvalidName},
		{"too long", strings.Repeat("a", 31), models.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.CreateRace(tt.raceName, "desc")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	id, err := p.CreateRace("tour", "desc")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = p.CreateRace("tour", "again")
	assert.ErrorIs(t, err, models.ErrNameAlreadyExists)
	assert.Equal(t, []int{1}, p.RaceIDs())
}

func TestAddStageValidation(t *testing.T) {
	p := newTestPortal()
	raceID, err := p.CreateRace("tour", "")
	require.NoError(t, err)

	_, err = p.AddStage(raceID, "stage-1", "", km(4.9), stageStart, models.StageFlat)
	assert.ErrorIs(t, err, models.ErrInvalidLength)

	_, err = p.AddStage(99, "stage-1", "", km(20), stageStart, models.StageFlat)
	assert.ErrorIs(t, err, models.ErrIDNotRecognised)

	stageID, err := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	require.NoError(t, err)

	// Stage names are unique platform-wide, even across races.
	other, err := p.CreateRace("giro", "")
	require.NoError(t, err)
	_, err = p.AddStage(other, "stage-1", "", km(20), stageStart, models.StageFlat)
	assert.ErrorIs(t, err, models.ErrNameAlreadyExists)

	stages, err := p.RaceStages(raceID)
	require.NoError(t, err)
	assert.Equal(t, []int{stageID}, stages)
}

func TestCheckpointInsertionKeepsLocationOrder(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, err := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	require.NoError(t, err)

	// Insert out of order: 10, 3, 7. Stored order must be 3, 7, 10.
	cp10, err := p.AddIntermediateSprint(stageID, km(10))
	require.NoError(t, err)
	cp3, err := p.AddIntermediateSprint(stageID, km(3))
	require.NoError(t, err)
	cp7, err := p.AddCategorizedClimb(stageID, km(7), models.ClimbC3, 5.5, km(2))
	require.NoError(t, err)

	got, err := p.StageCheckpoints(stageID)
	require.NoError(t, err)
	assert.Equal(t, []int{cp3, cp7, cp10}, got)
}

func TestCheckpointLocationBounds(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)

	_, err := p.AddIntermediateSprint(stageID, km(0))
	assert.ErrorIs(t, err, models.ErrInvalidLocation)
	_, err = p.AddIntermediateSprint(stageID, km(20.5))
	assert.ErrorIs(t, err, models.ErrInvalidLocation)

	_, err = p.AddIntermediateSprint(stageID, km(10))
	require.NoError(t, err)
	// Duplicate locations are rejected, never merged.
	_, err = p.AddIntermediateSprint(stageID, km(10))
	assert.ErrorIs(t, err, models.ErrInvalidLocation)
}

func TestTimeTrialAdmitsNoCheckpoints(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "tt-1", "", km(20), stageStart, models.StageTimeTrial)

	_, err := p.AddIntermediateSprint(stageID, km(10))
	assert.ErrorIs(t, err, models.ErrInvalidStageType)
	_, err = p.AddCategorizedClimb(stageID, km(10), models.ClimbHC, 8, km(5))
	assert.ErrorIs(t, err, models.ErrInvalidStageType)
}

func TestConcludeStageFreezesCheckpoints(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	cpID, err := p.AddIntermediateSprint(stageID, km(10))
	require.NoError(t, err)

	require.NoError(t, p.ConcludeStagePreparation(stageID))

	_, err = p.AddIntermediateSprint(stageID, km(5))
	assert.ErrorIs(t, err, models.ErrInvalidStageState)
	assert.ErrorIs(t, p.RemoveCheckpoint(cpID), models.ErrInvalidStageState)

	// No transition back.
	assert.ErrorIs(t, p.ConcludeStagePreparation(stageID), models.ErrInvalidStageState)
}

func TestRemoveCheckpointKeepsAbsoluteLocations(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	cpA, _ := p.AddIntermediateSprint(stageID, km(5))
	_, err := p.AddIntermediateSprint(stageID, km(15))
	require.NoError(t, err)

	require.NoError(t, p.RemoveCheckpoint(cpA))

	got, err := p.StageCheckpoints(stageID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	// Locations are absolute and not re-normalized.
	cp, err := p.Checkpoint(got[0])
	require.NoError(t, err)
	assert.True(t, cp.Location.Equal(km(15)))
}

func TestRegisterResultRules(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	_, err := p.AddIntermediateSprint(stageID, km(10))
	require.NoError(t, err)
	teamID, _ := p.CreateTeam("sky", "")
	riderID, err := p.CreateRider(teamID, "A Rider", 1995)
	require.NoError(t, err)

	times := []time.Time{stageStart, stageStart.Add(30 * time.Minute), stageStart.Add(time.Hour)}

	// Stage still preparing.
	err = p.RegisterResult(stageID, riderID, times)
	assert.ErrorIs(t, err, models.ErrInvalidStageState)

	require.NoError(t, p.ConcludeStagePreparation(stageID))

	// Wrong vector length: one intermediate checkpoint means 3 timestamps.
	err = p.RegisterResult(stageID, riderID, times[:2])
	assert.ErrorIs(t, err, models.ErrInvalidCheckpointTimes)

	require.NoError(t, p.RegisterResult(stageID, riderID, times))

	// Second registration always fails and leaves the first intact.
	err = p.RegisterResult(stageID, riderID, times)
	assert.ErrorIs(t, err, models.ErrDuplicatedResult)

	res, err := p.RiderResultInStage(stageID, riderID)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, res.Elapsed)
	assert.Len(t, res.Times, 3)
}

func TestDeleteResult(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "tt-1", "", km(20), stageStart, models.StageTimeTrial)
	require.NoError(t, p.ConcludeStagePreparation(stageID))
	teamID, _ := p.CreateTeam("sky", "")
	riderID, _ := p.CreateRider(teamID, "A Rider", 1995)

	err := p.DeleteResult(stageID, riderID)
	assert.ErrorIs(t, err, models.ErrIDNotRecognised)

	require.NoError(t, p.RegisterResult(stageID, riderID, []time.Time{stageStart, stageStart.Add(time.Hour)}))
	require.NoError(t, p.DeleteResult(stageID, riderID))

	rank, err := p.RidersRankInStage(stageID)
	require.NoError(t, err)
	assert.Empty(t, rank)
}

func TestRemoveRiderDropsOnlyTheirResults(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "tt-1", "", km(20), stageStart, models.StageTimeTrial)
	require.NoError(t, p.ConcludeStagePreparation(stageID))
	teamID, _ := p.CreateTeam("sky", "")
	riderA, _ := p.CreateRider(teamID, "A", 1995)
	riderB, _ := p.CreateRider(teamID, "B", 1996)

	require.NoError(t, p.RegisterResult(stageID, riderA, []time.Time{stageStart, stageStart.Add(time.Hour)}))
	require.NoError(t, p.RegisterResult(stageID, riderB, []time.Time{stageStart, stageStart.Add(2 * time.Hour)}))

	require.NoError(t, p.RemoveRider(riderA))

	rank, err := p.RidersRankInStage(stageID)
	require.NoError(t, err)
	assert.Equal(t, []int{riderB}, rank)

	riders, err := p.TeamRiders(teamID)
	require.NoError(t, err)
	assert.Equal(t, []int{riderB}, riders)
}

func TestRemoveRaceCascades(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, _ := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	cpID, _ := p.AddIntermediateSprint(stageID, km(10))

	require.NoError(t, p.RemoveRace(raceID))
	assert.Empty(t, p.RaceIDs())
	_, err := p.StageCheckpoints(stageID)
	assert.ErrorIs(t, err, models.ErrIDNotRecognised)
	_, err = p.Checkpoint(cpID)
	assert.ErrorIs(t, err, models.ErrIDNotRecognised)
}

func TestIDsAreNotReused(t *testing.T) {
	p := newTestPortal()
	raceA, _ := p.CreateRace("tour", "")
	require.NoError(t, p.RemoveRace(raceA))
	raceB, _ := p.CreateRace("giro", "")
	assert.Greater(t, raceB, raceA)
}

func TestEraseResetsCounters(t *testing.T) {
	p := newTestPortal()
	id, _ := p.CreateRace("tour", "")
	assert.Equal(t, 1, id)

	p.Erase()
	assert.Empty(t, p.RaceIDs())
	id, _ = p.CreateRace("tour", "")
	assert.Equal(t, 1, id)
}

// Worked end-to-end example: flat 20km stage with a sprint at km 5 and a
// C2 climb at km 15; riders A, B, C finish at 1:00:00, 1:00:00.3 and
// 1:00:05.
func TestStageClassificationExample(t *testing.T) {
	p := newTestPortal()
	raceID, _ := p.CreateRace("tour", "")
	stageID, err := p.AddStage(raceID, "stage-1", "", km(20), stageStart, models.StageFlat)
	require.NoError(t, err)
	_, err = p.AddIntermediateSprint(stageID, km(5))
	require.NoError(t, err)
	_, err = p.AddCategorizedClimb(stageID, km(15), models.ClimbC2, 6.2, km(3))
	require.NoError(t, err)
	require.NoError(t, p.ConcludeStagePreparation(stageID))

	teamID, _ := p.CreateTeam("sky", "")
	a, _ := p.CreateRider(teamID, "A", 1995)
	b, _ := p.CreateRider(teamID, "B", 1996)
	c, _ := p.CreateRider(teamID, "C", 1997)

	// B crests the climb ahead of A despite finishing behind.
	require.NoError(t, p.RegisterResult(stageID, a, []time.Time{
		stageStart,
		stageStart.Add(12 * time.Minute),
		stageStart.Add(41 * time.Minute),
		stageStart.Add(time.Hour),
	}))
	require.NoError(t, p.RegisterResult(stageID, b, []time.Time{
		stageStart,
		stageStart.Add(12*time.Minute + time.Second),
		stageStart.Add(40 * time.Minute),
		stageStart.Add(time.Hour + 300*time.Millisecond),
	}))
	require.NoError(t, p.RegisterResult(stageID, c, []time.Time{
		stageStart,
		stageStart.Add(13 * time.Minute),
		stageStart.Add(42 * time.Minute),
		stageStart.Add(time.Hour + 5*time.Second),
	}))

	cls, err := p.ClassifyStage(stageID)
	require.NoError(t, err)

	assert.Equal(t, []int{a, b, c}, cls.Riders)
	assert.Equal(t, []time.Duration{time.Hour, time.Hour, time.Hour + 5*time.Second}, cls.AdjustedTimes)
	assert.Equal(t, []int{50, 30, 20}, cls.Points)
	// C2 climb order: B, A, C.
	assert.Equal(t, []int{3, 5, 2}, cls.MountainPoints)
}
