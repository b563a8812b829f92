package portal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/store"
)

// AddStage appends a stage to a race. Stage names are unique across the
// whole platform and the minimum length is 5km.
func (p *Portal) AddStage(raceID int, name, description string, length decimal.Decimal, startTime time.Time, stageType models.StageType) (int, error) {
	if err := models.ValidateName(name); err != nil {
		return 0, p.reject("add_stage", err)
	}
	if length.Cmp(models.MinStageLength) < 0 {
		return 0, p.reject("add_stage", fmt.Errorf("%w: %skm", models.ErrInvalidLength, length.String()))
	}
	if startTime.IsZero() {
		return 0, p.reject("add_stage", fmt.Errorf("%w: start time required", models.ErrInvalidStageState))
	}

	var id int
	err := p.store.Update(func(s *store.State) error {
		race, ok := s.Races[raceID]
		if !ok {
			return fmt.Errorf("%w: race %d", models.ErrIDNotRecognised, raceID)
		}
		if s.StageNameTaken(name) {
			return fmt.Errorf("%w: stage %q", models.ErrNameAlreadyExists, name)
		}
		id = s.NextStageID()
		s.Stages[id] = &models.Stage{
			ID:          id,
			RaceID:      raceID,
			Name:        name,
			Description: description,
			Length:      length,
			StartTime:   startTime,
			Type:        stageType,
			State:       models.StagePreparing,
		}
		race.StageIDs = append(race.StageIDs, id)
		return nil
	})
	if err != nil {
		return 0, p.reject("add_stage", err)
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("stage").Inc()
	p.log.WithFields(logrus.Fields{"stage_id": id, "race_id": raceID, "type": stageType.String()}).Info("Stage added")
	return id, nil
}

// RemoveStage deletes a stage with its checkpoints and results.
func (p *Portal) RemoveStage(stageID int) error {
	err := p.store.Update(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if race, ok := s.Races[stage.RaceID]; ok {
			for i, id := range race.StageIDs {
				if id == stageID {
					race.StageIDs = append(race.StageIDs[:i], race.StageIDs[i+1:]...)
					break
				}
			}
		}
		s.RemoveStageCascade(stageID)
		return nil
	})
	if err != nil {
		return p.reject("remove_stage", err)
	}

	metrics.EntitiesRemovedTotal.WithLabelValues("stage").Inc()
	p.log.WithField("stage_id", stageID).Info("Stage removed")
	p.notifyStage(stageID)
	return nil
}

// StageLength returns a stage's length in km.
func (p *Portal) StageLength(stageID int) (decimal.Decimal, error) {
	var length decimal.Decimal
	err := p.store.View(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		length = stage.Length
		return nil
	})
	return length, err
}

// checkpointSlot validates a checkpoint location against the stage and
// returns the insertion index keeping CheckpointIDs strictly increasing by
// location. A duplicate location is an invalid location, not a merge.
func checkpointSlot(s *store.State, stage *models.Stage, location decimal.Decimal) (int, error) {
	if location.Sign() <= 0 || location.Cmp(stage.Length) > 0 {
		return 0, fmt.Errorf("%w: %skm outside (0, %skm]", models.ErrInvalidLocation, location.String(), stage.Length.String())
	}
	slot := len(stage.CheckpointIDs)
	for i, cpID := range stage.CheckpointIDs {
		existing := s.Checkpoints[cpID].Location
		if existing.Equal(location) {
			return 0, fmt.Errorf("%w: duplicate location %skm", models.ErrInvalidLocation, location.String())
		}
		if location.Cmp(existing) < 0 {
			slot = i
			break
		}
	}
	return slot, nil
}

func (p *Portal) addCheckpoint(operation string, stageID int, build func(id int) *models.Checkpoint, location decimal.Decimal) (int, error) {
	var id int
	err := p.store.Update(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if stage.Type == models.StageTimeTrial {
			return fmt.Errorf("%w: time-trial stages take no checkpoints", models.ErrInvalidStageType)
		}
		if stage.State == models.StageWaitingForResults {
			return fmt.Errorf("%w: stage %d is waiting for results", models.ErrInvalidStageState, stageID)
		}
		slot, err := checkpointSlot(s, stage, location)
		if err != nil {
			return err
		}
		id = s.NextCheckpointID()
		s.Checkpoints[id] = build(id)
		stage.CheckpointIDs = append(stage.CheckpointIDs, 0)
		copy(stage.CheckpointIDs[slot+1:], stage.CheckpointIDs[slot:])
		stage.CheckpointIDs[slot] = id
		return nil
	})
	if err != nil {
		return 0, p.reject(operation, err)
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("checkpoint").Inc()
	p.log.WithFields(logrus.Fields{"checkpoint_id": id, "stage_id": stageID}).Info("Checkpoint added")
	return id, nil
}

// AddCategorizedClimb adds a climb checkpoint to a stage.
func (p *Portal) AddCategorizedClimb(stageID int, location decimal.Decimal, category models.CheckpointType, averageGradient float64, climbLength decimal.Decimal) (int, error) {
	if !category.IsClimb() {
		return 0, p.reject("add_climb", fmt.Errorf("%s is not a climb category", category))
	}
	return p.addCheckpoint("add_climb", stageID, func(id int) *models.Checkpoint {
		return &models.Checkpoint{
			ID:              id,
			StageID:         stageID,
			Type:            category,
			Location:        location,
			AverageGradient: averageGradient,
			ClimbLength:     climbLength,
		}
	}, location)
}

// AddIntermediateSprint adds a sprint checkpoint to a stage.
func (p *Portal) AddIntermediateSprint(stageID int, location decimal.Decimal) (int, error) {
	return p.addCheckpoint("add_sprint", stageID, func(id int) *models.Checkpoint {
		return &models.Checkpoint{
			ID:       id,
			StageID:  stageID,
			Type:     models.CheckpointSprint,
			Location: location,
		}
	}, location)
}

// RemoveCheckpoint deletes a checkpoint from its stage. Any results the
// stage already holds are dropped with it: their timestamp count no longer
// matches and they have to be re-entered. Locations of the remaining
// checkpoints are absolute and stay as they are.
func (p *Portal) RemoveCheckpoint(checkpointID int) error {
	var stageID int
	err := p.store.Update(func(s *store.State) error {
		cp, ok := s.Checkpoints[checkpointID]
		if !ok {
			return fmt.Errorf("%w: checkpoint %d", models.ErrIDNotRecognised, checkpointID)
		}
		stage := s.Stages[cp.StageID]
		if stage.State == models.StageWaitingForResults {
			return fmt.Errorf("%w: stage %d is waiting for results", models.ErrInvalidStageState, stage.ID)
		}
		stageID = stage.ID
		for i, id := range stage.CheckpointIDs {
			if id == checkpointID {
				stage.CheckpointIDs = append(stage.CheckpointIDs[:i], stage.CheckpointIDs[i+1:]...)
				break
			}
		}
		delete(s.Checkpoints, checkpointID)
		s.RemoveStageResults(stageID)
		return nil
	})
	if err != nil {
		return p.reject("remove_checkpoint", err)
	}

	metrics.EntitiesRemovedTotal.WithLabelValues("checkpoint").Inc()
	p.log.WithField("checkpoint_id", checkpointID).Info("Checkpoint removed")
	p.notifyStage(stageID)
	return nil
}

// ConcludeStagePreparation transitions a stage from preparing to waiting
// for results. There is no way back.
func (p *Portal) ConcludeStagePreparation(stageID int) error {
	err := p.store.Update(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if stage.State == models.StageWaitingForResults {
			return fmt.Errorf("%w: stage %d already waiting for results", models.ErrInvalidStageState, stageID)
		}
		stage.State = models.StageWaitingForResults
		return nil
	})
	if err != nil {
		return p.reject("conclude_stage", err)
	}

	p.log.WithField("stage_id", stageID).Info("Stage preparation concluded")
	return nil
}

// StageCheckpoints returns the stage's checkpoint IDs in location order.
func (p *Portal) StageCheckpoints(stageID int) ([]int, error) {
	var ids []int
	err := p.store.View(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		ids = append([]int(nil), stage.CheckpointIDs...)
		return nil
	})
	return ids, err
}
