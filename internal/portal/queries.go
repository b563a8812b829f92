package portal

import (
	"fmt"
	"time"

	"github.com/yourusername/veloportal/internal/classification"
	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/store"
)

// StageClassification carries the four rider-aligned vectors for a stage:
// riders ordered by real elapsed time, with adjusted times, sprint points
// and mountain points at matching indexes. All four are recomputed from
// current results on every call.
type StageClassification struct {
	StageID        int             `json:"stage_id"`
	Riders         []int           `json:"riders"`
	AdjustedTimes  []time.Duration `json:"adjusted_times"`
	Points         []int           `json:"points"`
	MountainPoints []int           `json:"mountain_points"`
}

// ClassifyStage computes the complete classification for a stage under one
// consistent read snapshot.
func (p *Portal) ClassifyStage(stageID int) (*StageClassification, error) {
	start := time.Now()
	out := &StageClassification{StageID: stageID}
	err := p.store.View(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		results := s.StageResults(stageID)
		checkpoints := make([]*models.Checkpoint, len(stage.CheckpointIDs))
		for i, cpID := range stage.CheckpointIDs {
			checkpoints[i] = s.Checkpoints[cpID]
		}
		out.Riders = classification.Rank(stage.Type, results)
		out.AdjustedTimes = classification.RankedAdjustedTimes(stage.Type, results)
		out.Points = classification.StagePoints(stage.Type, results)
		out.MountainPoints = classification.MountainPoints(stage.Type, checkpoints, results)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ClassificationQueriesTotal.Inc()
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	return out, nil
}

// RidersRankInStage returns rider IDs ordered by real elapsed time.
func (p *Portal) RidersRankInStage(stageID int) ([]int, error) {
	c, err := p.ClassifyStage(stageID)
	if err != nil {
		return nil, err
	}
	return c.Riders, nil
}

// RankedAdjustedElapsedTimesInStage returns adjusted elapsed times aligned
// with RidersRankInStage.
func (p *Portal) RankedAdjustedElapsedTimesInStage(stageID int) ([]time.Duration, error) {
	c, err := p.ClassifyStage(stageID)
	if err != nil {
		return nil, err
	}
	return c.AdjustedTimes, nil
}

// RidersPointsInStage returns sprint points aligned with
// RidersRankInStage.
func (p *Portal) RidersPointsInStage(stageID int) ([]int, error) {
	c, err := p.ClassifyStage(stageID)
	if err != nil {
		return nil, err
	}
	return c.Points, nil
}

// RidersMountainPointsInStage returns mountain points aligned with
// RidersRankInStage.
func (p *Portal) RidersMountainPointsInStage(stageID int) ([]int, error) {
	c, err := p.ClassifyStage(stageID)
	if err != nil {
		return nil, err
	}
	return c.MountainPoints, nil
}

// Stage returns a copy of a stage record.
func (p *Portal) Stage(stageID int) (models.Stage, error) {
	var out models.Stage
	err := p.store.View(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		out = *stage
		out.CheckpointIDs = append([]int(nil), stage.CheckpointIDs...)
		return nil
	})
	return out, err
}

// Checkpoint returns a copy of a checkpoint record.
func (p *Portal) Checkpoint(checkpointID int) (models.Checkpoint, error) {
	var out models.Checkpoint
	err := p.store.View(func(s *store.State) error {
		cp, ok := s.Checkpoints[checkpointID]
		if !ok {
			return fmt.Errorf("%w: checkpoint %d", models.ErrIDNotRecognised, checkpointID)
		}
		out = *cp
		return nil
	})
	return out, err
}
