package models

import "github.com/shopspring/decimal"

// Checkpoint is a timed point within a stage: an intermediate sprint or a
// categorized climb. Location is the km mark where the checkpoint finishes,
// absolute within the stage.
type Checkpoint struct {
	ID       int             `json:"id"`
	StageID  int             `json:"stage_id"`
	Type     CheckpointType  `json:"type"`
	Location decimal.Decimal `json:"location"`

	// Climb-only fields, zero for sprints.
	AverageGradient float64         `json:"average_gradient,omitempty"`
	ClimbLength     decimal.Decimal `json:"climb_length,omitempty"`
}
