package models

import "errors"

// Validation errors shared across the platform. Every mutating operation
// checks its inputs against current state before applying anything, so a
// caller that sees one of these can assume the platform is unchanged.
var (
	ErrIDNotRecognised        = errors.New("id not recognised")
	ErrInvalidName            = errors.New("invalid name")
	ErrNameAlreadyExists      = errors.New("name already exists")
	ErrInvalidLength          = errors.New("invalid stage length")
	ErrInvalidLocation        = errors.New("invalid checkpoint location")
	ErrInvalidStageType       = errors.New("invalid stage type")
	ErrInvalidStageState      = errors.New("invalid stage state")
	ErrDuplicatedResult       = errors.New("result already registered for rider in stage")
	ErrInvalidCheckpointTimes = errors.New("invalid checkpoint times")
	ErrInvalidRider           = errors.New("invalid rider details")
)
