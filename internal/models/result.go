package models

import "time"

// Result is a rider's raw timestamps for one stage, in the order start,
// each checkpoint by location, finish. Timestamps are stored exactly as
// registered; the platform never re-orders them.
type Result struct {
	StageID int         `json:"stage_id"`
	RiderID int         `json:"rider_id"`
	Times   []time.Time `json:"times"`
}

// Elapsed is the real elapsed time: finish minus start.
func (r *Result) Elapsed() time.Duration {
	if len(r.Times) < 2 {
		return 0
	}
	return r.Times[len(r.Times)-1].Sub(r.Times[0])
}

// CheckpointTime is the crossing timestamp for the i-th checkpoint of the
// stage in location order.
func (r *Result) CheckpointTime(i int) time.Time {
	return r.Times[i+1]
}
