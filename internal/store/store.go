// Package store holds the in-memory entity arena for the platform. All
// entities are keyed by integer IDs allocated from per-kind counters that
// are never reused within a session. Mutations run one at a time under a
// write lock, so a failed validation leaves the platform untouched and a
// reader never observes a half-applied cascade.
package store

import (
	"sync"

	"github.com/yourusername/veloportal/internal/models"
)

// ResultKey identifies the single result a rider may hold for a stage.
type ResultKey struct {
	StageID int `json:"stage_id"`
	RiderID int `json:"rider_id"`
}

// Counters are the per-kind ID allocators. They only move forward, even
// across deletions.
type Counters struct {
	Race       int `json:"race"`
	Stage      int `json:"stage"`
	Checkpoint int `json:"checkpoint"`
	Team       int `json:"team"`
	Rider      int `json:"rider"`
}

// State is the complete entity arena. It is only ever touched through
// Store.Update and Store.View closures.
type State struct {
	Races       map[int]*models.Race
	Stages      map[int]*models.Stage
	Checkpoints map[int]*models.Checkpoint
	Teams       map[int]*models.Team
	Riders      map[int]*models.Rider
	Results     map[ResultKey]*models.Result
	Counters    Counters
}

func newState() *State {
	return &State{
		Races:       make(map[int]*models.Race),
		Stages:      make(map[int]*models.Stage),
		Checkpoints: make(map[int]*models.Checkpoint),
		Teams:       make(map[int]*models.Team),
		Riders:      make(map[int]*models.Rider),
		Results:     make(map[ResultKey]*models.Result),
	}
}

// Store wraps State with the single-writer lock.
type Store struct {
	mu    sync.RWMutex
	state *State
}

// New creates an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// Update runs fn with exclusive access. If fn returns an error the
// convention is that it has not mutated anything; fn must do all its
// validation before the first write.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// View runs fn with shared read access.
func (s *Store) View(fn func(*State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// Reset empties the store and resets all counters.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newState()
}

// NextRaceID allocates a race ID.
func (st *State) NextRaceID() int { st.Counters.Race++; return st.Counters.Race }

// NextStageID allocates a stage ID.
func (st *State) NextStageID() int { st.Counters.Stage++; return st.Counters.Stage }

// NextCheckpointID allocates a checkpoint ID.
func (st *State) NextCheckpointID() int { st.Counters.Checkpoint++; return st.Counters.Checkpoint }

// NextTeamID allocates a team ID.
func (st *State) NextTeamID() int { st.Counters.Team++; return st.Counters.Team }

// NextRiderID allocates a rider ID.
func (st *State) NextRiderID() int { st.Counters.Rider++; return st.Counters.Rider }

// RaceNameTaken reports whether a race already uses the name.
func (st *State) RaceNameTaken(name string) bool {
	for _, r := range st.Races {
		if r.Name == name {
			return true
		}
	}
	return false
}

// StageNameTaken reports whether any stage on the platform uses the name.
// Stage names are unique platform-wide, not per race.
func (st *State) StageNameTaken(name string) bool {
	for _, s := range st.Stages {
		if s.Name == name {
			return true
		}
	}
	return false
}

// TeamNameTaken reports whether a team already uses the name.
func (st *State) TeamNameTaken(name string) bool {
	for _, t := range st.Teams {
		if t.Name == name {
			return true
		}
	}
	return false
}

// StageResults returns the results registered for a stage, in no
// particular order.
func (st *State) StageResults(stageID int) []*models.Result {
	var out []*models.Result
	for k, r := range st.Results {
		if k.StageID == stageID {
			out = append(out, r)
		}
	}
	return out
}

// RemoveStageResults drops every result for a stage.
func (st *State) RemoveStageResults(stageID int) {
	for k := range st.Results {
		if k.StageID == stageID {
			delete(st.Results, k)
		}
	}
}

// RemoveRiderResults drops a rider's results across all stages and returns
// the IDs of the stages that were affected.
func (st *State) RemoveRiderResults(riderID int) []int {
	var stages []int
	for k := range st.Results {
		if k.RiderID == riderID {
			stages = append(stages, k.StageID)
			delete(st.Results, k)
		}
	}
	return stages
}

// RemoveStageCascade deletes a stage with its checkpoints and results. The
// caller removes the stage from its race.
func (st *State) RemoveStageCascade(stageID int) {
	stage, ok := st.Stages[stageID]
	if !ok {
		return
	}
	for _, cpID := range stage.CheckpointIDs {
		delete(st.Checkpoints, cpID)
	}
	st.RemoveStageResults(stageID)
	delete(st.Stages, stageID)
}

// RemoveRaceCascade deletes a race and everything below it.
func (st *State) RemoveRaceCascade(raceID int) {
	race, ok := st.Races[raceID]
	if !ok {
		return
	}
	for _, stageID := range race.StageIDs {
		st.RemoveStageCascade(stageID)
	}
	delete(st.Races, raceID)
}

// RemoveTeamCascade deletes a team, its riders and their results.
func (st *State) RemoveTeamCascade(teamID int) {
	team, ok := st.Teams[teamID]
	if !ok {
		return
	}
	for _, riderID := range team.RiderIDs {
		st.RemoveRiderResults(riderID)
		delete(st.Riders, riderID)
	}
	delete(st.Teams, teamID)
}
