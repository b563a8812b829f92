package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinStageLength is the shortest stage the platform accepts, in km.
var MinStageLength = decimal.NewFromInt(5)

// Stage belongs to a race and owns its checkpoints in location order.
type Stage struct {
	ID            int             `json:"id"`
	RaceID        int             `json:"race_id"`
	Name          string          `json:"name" validate:"required,max=30"`
	Description   string          `json:"description"`
	Length        decimal.Decimal `json:"length"`
	StartTime     time.Time       `json:"start_time" validate:"required"`
	Type          StageType       `json:"type"`
	State         StageState      `json:"state"`
	CheckpointIDs []int           `json:"checkpoint_ids"`
}

// AcceptsCheckpoints reports whether the stage may still gain or lose
// checkpoints.
func (s *Stage) AcceptsCheckpoints() bool {
	return s.State == StagePreparing && s.Type != StageTimeTrial
}

// ExpectedTimestamps is the timestamp count a result for this stage must
// carry: start, one per checkpoint, finish.
func (s *Stage) ExpectedTimestamps() int {
	return len(s.CheckpointIDs) + 2
}
