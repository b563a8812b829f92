package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/store"
)

func sampleDump() *store.Dump {
	start := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	return &store.Dump{
		Races: []*models.Race{{ID: 1, Name: "tour", StageIDs: []int{1}}},
		Stages: []*models.Stage{{
			ID:            1,
			RaceID:        1,
			Name:          "stage-1",
			Length:        decimal.NewFromInt(20),
			StartTime:     start,
			Type:          models.StageFlat,
			State:         models.StageWaitingForResults,
			CheckpointIDs: []int{1},
		}},
		Checkpoints: []*models.Checkpoint{{
			ID: 1, StageID: 1, Type: models.ClimbC2, Location: decimal.NewFromInt(15),
		}},
		Teams:  []*models.Team{{ID: 1, Name: "sky", RiderIDs: []int{1}}},
		Riders: []*models.Rider{{ID: 1, TeamID: 1, Name: "A", YearOfBirth: 1995}},
		Results: []*models.Result{{
			StageID: 1, RiderID: 1,
			Times: []time.Time{start, start.Add(30 * time.Minute), start.Add(time.Hour)},
		}},
		Counters: store.Counters{Race: 1, Stage: 1, Checkpoint: 1, Team: 1, Rider: 1},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	data, err := Encode(sampleDump())
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	want := sampleDump()
	assert.Equal(t, want.Counters, got.Counters)
	require.Len(t, got.Stages, 1)
	assert.True(t, got.Stages[0].Length.Equal(want.Stages[0].Length))
	assert.Equal(t, want.Results[0].Times, got.Results[0].Times)
	assert.Equal(t, models.ClimbC2, got.Checkpoints[0].Type)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, sampleDump()))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Counters{Race: 1, Stage: 1, Checkpoint: 1, Team: 1, Rider: 1}, got.Counters)

	// Restoring into a store reproduces the platform.
	s := store.New()
	s.Restore(got)
	_ = s.View(func(st *store.State) error {
		assert.Len(t, st.Results, 1)
		assert.Equal(t, "tour", st.Races[1].Name)
		return nil
	})
}

func TestFileStoreLoadMissing(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := fs.Load(context.Background())
	assert.Error(t, err)
}
