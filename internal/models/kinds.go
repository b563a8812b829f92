package models

import "fmt"

// StageType classifies a stage and selects the sprint points table.
type StageType int

const (
	StageFlat StageType = iota
	StageMediumMountain
	StageHighMountain
	StageTimeTrial
)

// String returns the lowercase wire name of the stage type.
func (t StageType) String() string {
	switch t {
	case StageFlat:
		return "flat"
	case StageMediumMountain:
		return "medium_mountain"
	case StageHighMountain:
		return "high_mountain"
	case StageTimeTrial:
		return "time_trial"
	default:
		return fmt.Sprintf("StageType(%d)", int(t))
	}
}

// ParseStageType converts a wire name back into a StageType.
func ParseStageType(s string) (StageType, error) {
	switch s {
	case "flat":
		return StageFlat, nil
	case "medium_mountain", "hilly":
		return StageMediumMountain, nil
	case "high_mountain", "mountain":
		return StageHighMountain, nil
	case "time_trial", "tt":
		return StageTimeTrial, nil
	default:
		return 0, fmt.Errorf("unknown stage type %q", s)
	}
}

// StageState is the stage lifecycle. Preparing stages accept checkpoint
// mutations; once preparation is concluded the stage only accepts results.
type StageState int

const (
	StagePreparing StageState = iota
	StageWaitingForResults
)

func (s StageState) String() string {
	switch s {
	case StagePreparing:
		return "preparing"
	case StageWaitingForResults:
		return "waiting_for_results"
	default:
		return fmt.Sprintf("StageState(%d)", int(s))
	}
}

// CheckpointType is a closed set: an intermediate sprint or a categorized
// climb. Climb categories run from C4 (easiest) up to HC (hors categorie).
type CheckpointType int

const (
	CheckpointSprint CheckpointType = iota
	ClimbC4
	ClimbC3
	ClimbC2
	ClimbC1
	ClimbHC
)

// IsClimb reports whether the checkpoint awards mountain points.
func (c CheckpointType) IsClimb() bool {
	return c != CheckpointSprint
}

func (c CheckpointType) String() string {
	switch c {
	case CheckpointSprint:
		return "sprint"
	case ClimbC4:
		return "c4"
	case ClimbC3:
		return "c3"
	case ClimbC2:
		return "c2"
	case ClimbC1:
		return "c1"
	case ClimbHC:
		return "hc"
	default:
		return fmt.Sprintf("CheckpointType(%d)", int(c))
	}
}

// ParseClimbCategory converts a wire name into a climb checkpoint type.
func ParseClimbCategory(s string) (CheckpointType, error) {
	switch s {
	case "c4":
		return ClimbC4, nil
	case "c3":
		return ClimbC3, nil
	case "c2":
		return ClimbC2, nil
	case "c1":
		return ClimbC1, nil
	case "hc":
		return ClimbHC, nil
	default:
		return 0, fmt.Errorf("unknown climb category %q", s)
	}
}
