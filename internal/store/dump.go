package store

import (
	"time"

	"github.com/yourusername/veloportal/internal/models"
)

// Dump is a self-contained copy of the full platform state, suitable for
// serialization. Results are flattened to a slice because JSON object keys
// cannot carry the composite result key.
type Dump struct {
	Races       []*models.Race       `json:"races"`
	Stages      []*models.Stage      `json:"stages"`
	Checkpoints []*models.Checkpoint `json:"checkpoints"`
	Teams       []*models.Team       `json:"teams"`
	Riders      []*models.Rider      `json:"riders"`
	Results     []*models.Result     `json:"results"`
	Counters    Counters             `json:"counters"`
}

// Export deep-copies the current state under the read lock.
func (s *Store) Export() *Dump {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := &Dump{Counters: s.state.Counters}
	for _, r := range s.state.Races {
		cp := *r
		cp.StageIDs = append([]int(nil), r.StageIDs...)
		d.Races = append(d.Races, &cp)
	}
	for _, st := range s.state.Stages {
		cp := *st
		cp.CheckpointIDs = append([]int(nil), st.CheckpointIDs...)
		d.Stages = append(d.Stages, &cp)
	}
	for _, c := range s.state.Checkpoints {
		cp := *c
		d.Checkpoints = append(d.Checkpoints, &cp)
	}
	for _, t := range s.state.Teams {
		cp := *t
		cp.RiderIDs = append([]int(nil), t.RiderIDs...)
		d.Teams = append(d.Teams, &cp)
	}
	for _, r := range s.state.Riders {
		cp := *r
		d.Riders = append(d.Riders, &cp)
	}
	for _, r := range s.state.Results {
		cp := *r
		cp.Times = append([]time.Time(nil), r.Times...)
		d.Results = append(d.Results, &cp)
	}
	return d
}

// Restore replaces the entire store contents with the dump, atomically.
func (s *Store) Restore(d *Dump) {
	st := newState()
	for _, r := range d.Races {
		st.Races[r.ID] = r
	}
	for _, sg := range d.Stages {
		st.Stages[sg.ID] = sg
	}
	for _, c := range d.Checkpoints {
		st.Checkpoints[c.ID] = c
	}
	for _, t := range d.Teams {
		st.Teams[t.ID] = t
	}
	for _, r := range d.Riders {
		st.Riders[r.ID] = r
	}
	for _, r := range d.Results {
		st.Results[ResultKey{StageID: r.StageID, RiderID: r.RiderID}] = r
	}
	st.Counters = d.Counters

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
