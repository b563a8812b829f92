package portal

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/classification"
	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/store"
)

// RegisterResult records a rider's raw checkpoint times for a stage. The
// stage must be waiting for results, the rider must not already hold a
// result for it, and times must contain exactly start + one per checkpoint
// + finish. Times are stored as given: the platform does not re-order
// out-of-sequence input.
func (p *Portal) RegisterResult(stageID, riderID int, times []time.Time) error {
	err := p.store.Update(func(s *store.State) error {
		stage, ok := s.Stages[stageID]
		if !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if _, ok := s.Riders[riderID]; !ok {
			return fmt.Errorf("%w: rider %d", models.ErrIDNotRecognised, riderID)
		}
		if stage.State != models.StageWaitingForResults {
			return fmt.Errorf("%w: stage %d still preparing", models.ErrInvalidStageState, stageID)
		}
		key := store.ResultKey{StageID: stageID, RiderID: riderID}
		if _, ok := s.Results[key]; ok {
			return fmt.Errorf("%w: rider %d in stage %d", models.ErrDuplicatedResult, riderID, stageID)
		}
		if len(times) != stage.ExpectedTimestamps() {
			return fmt.Errorf("%w: got %d timestamps, want %d", models.ErrInvalidCheckpointTimes, len(times), stage.ExpectedTimestamps())
		}
		s.Results[key] = &models.Result{
			StageID: stageID,
			RiderID: riderID,
			Times:   append([]time.Time(nil), times...),
		}
		return nil
	})
	if err != nil {
		return p.reject("register_result", err)
	}

	metrics.ResultsRegisteredTotal.Inc()
	p.log.WithFields(logrus.Fields{"stage_id": stageID, "rider_id": riderID}).Info("Result registered")
	p.notifyStage(stageID)
	return nil
}

// DeleteResult removes a rider's result for a stage.
func (p *Portal) DeleteResult(stageID, riderID int) error {
	err := p.store.Update(func(s *store.State) error {
		if _, ok := s.Stages[stageID]; !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if _, ok := s.Riders[riderID]; !ok {
			return fmt.Errorf("%w: rider %d", models.ErrIDNotRecognised, riderID)
		}
		key := store.ResultKey{StageID: stageID, RiderID: riderID}
		if _, ok := s.Results[key]; !ok {
			return fmt.Errorf("%w: no result for rider %d in stage %d", models.ErrIDNotRecognised, riderID, stageID)
		}
		delete(s.Results, key)
		return nil
	})
	if err != nil {
		return p.reject("delete_result", err)
	}

	p.log.WithFields(logrus.Fields{"stage_id": stageID, "rider_id": riderID}).Info("Result deleted")
	p.notifyStage(stageID)
	return nil
}

// RiderResult is a rider's raw times for a stage plus the derived real
// elapsed time.
type RiderResult struct {
	Times   []time.Time   `json:"times"`
	Elapsed time.Duration `json:"elapsed"`
}

// RiderResultInStage returns the rider's registered times and elapsed
// time, or a zero RiderResult when the rider has none for the stage.
func (p *Portal) RiderResultInStage(stageID, riderID int) (RiderResult, error) {
	var out RiderResult
	err := p.store.View(func(s *store.State) error {
		if _, ok := s.Stages[stageID]; !ok {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if _, ok := s.Riders[riderID]; !ok {
			return fmt.Errorf("%w: rider %d", models.ErrIDNotRecognised, riderID)
		}
		res, ok := s.Results[store.ResultKey{StageID: stageID, RiderID: riderID}]
		if !ok {
			return nil
		}
		out.Times = append([]time.Time(nil), res.Times...)
		out.Elapsed = res.Elapsed()
		return nil
	})
	return out, err
}

// RiderAdjustedElapsedTime returns the rider's adjusted elapsed time for a
// stage; ok is false when the rider has no result there.
func (p *Portal) RiderAdjustedElapsedTime(stageID, riderID int) (adjusted time.Duration, ok bool, err error) {
	err = p.store.View(func(s *store.State) error {
		stage, found := s.Stages[stageID]
		if !found {
			return fmt.Errorf("%w: stage %d", models.ErrIDNotRecognised, stageID)
		}
		if _, found := s.Riders[riderID]; !found {
			return fmt.Errorf("%w: rider %d", models.ErrIDNotRecognised, riderID)
		}
		adjusted, ok = classification.AdjustedFor(stage.Type, s.StageResults(stageID), riderID)
		return nil
	})
	return adjusted, ok, err
}
