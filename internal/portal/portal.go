// Package portal is the service facade of the platform. Every mutating
// operation validates fully against current state before writing, so any
// returned error means the platform is unchanged.
package portal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/store"
)

// StageObserver is notified after a completed mutation that can change a
// stage's classification, including removal of the stage itself. Observers
// run outside the store lock.
type StageObserver interface {
	StageChanged(stageID int)
}

// Portal exposes the full platform surface over the entity store and the
// classification engine.
type Portal struct {
	store     *store.Store
	log       *logrus.Logger
	observers []StageObserver
}

// New creates a portal over an empty store.
func New(log *logrus.Logger) *Portal {
	if log == nil {
		log = logrus.New()
	}
	return &Portal{store: store.New(), log: log}
}

// Store exposes the underlying store for snapshotting.
func (p *Portal) Store() *store.Store {
	return p.store
}

// Subscribe registers an observer for stage classification changes.
func (p *Portal) Subscribe(obs StageObserver) {
	p.observers = append(p.observers, obs)
}

func (p *Portal) notifyStage(stageID int) {
	for _, obs := range p.observers {
		obs.StageChanged(stageID)
	}
}

func (p *Portal) reject(operation string, err error) error {
	metrics.ValidationFailuresTotal.WithLabelValues(operation).Inc()
	p.log.WithFields(logrus.Fields{"operation": operation, "reason": err}).Debug("Mutation rejected")
	return err
}

// Erase empties the platform and resets all ID counters.
func (p *Portal) Erase() {
	p.store.Reset()
	p.log.Info("Platform erased")
}

// CreateRace creates a staged race. The description may be empty.
func (p *Portal) CreateRace(name, description string) (int, error) {
	if err := models.ValidateName(name); err != nil {
		return 0, p.reject("create_race", err)
	}

	var id int
	err := p.store.Update(func(s *store.State) error {
		if s.RaceNameTaken(name) {
			return fmt.Errorf("%w: race %q", models.ErrNameAlreadyExists, name)
		}
		id = s.NextRaceID()
		s.Races[id] = &models.Race{ID: id, Name: name, Description: description}
		return nil
	})
	if err != nil {
		return 0, p.reject("create_race", err)
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("race").Inc()
	p.log.WithFields(logrus.Fields{"race_id": id, "name": name}).Info("Race created")
	return id, nil
}

// RemoveRace deletes the race with all its stages, checkpoints and results.
func (p *Portal) RemoveRace(raceID int) error {
	var affected []int
	err := p.store.Update(func(s *store.State) error {
		race, ok := s.Races[raceID]
		if !ok {
			return fmt.Errorf("%w: race %d", models.ErrIDNotRecognised, raceID)
		}
		affected = append(affected, race.StageIDs...)
		s.RemoveRaceCascade(raceID)
		return nil
	})
	if err != nil {
		return p.reject("remove_race", err)
	}

	metrics.EntitiesRemovedTotal.WithLabelValues("race").Inc()
	p.log.WithField("race_id", raceID).Info("Race removed")
	for _, stageID := range affected {
		p.notifyStage(stageID)
	}
	return nil
}

// RaceIDs returns all race IDs, ascending.
func (p *Portal) RaceIDs() []int {
	var ids []int
	_ = p.store.View(func(s *store.State) error {
		for id := range s.Races {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Ints(ids)
	return ids
}

// ViewRaceDetails renders the race summary string.
func (p *Portal) ViewRaceDetails(raceID int) (string, error) {
	var details string
	err := p.store.View(func(s *store.State) error {
		race, ok := s.Races[raceID]
		if !ok {
			return fmt.Errorf("%w: race %d", models.ErrIDNotRecognised, raceID)
		}
		total := decimal.Zero
		for _, stageID := range race.StageIDs {
			total = total.Add(s.Stages[stageID].Length)
		}
		details = race.Details(total)
		return nil
	})
	return details, err
}

// RaceStages returns the race's stage IDs in racing order.
func (p *Portal) RaceStages(raceID int) ([]int, error) {
	var ids []int
	err := p.store.View(func(s *store.State) error {
		race, ok := s.Races[raceID]
		if !ok {
			return fmt.Errorf("%w: race %d", models.ErrIDNotRecognised, raceID)
		}
		ids = append([]int(nil), race.StageIDs...)
		return nil
	})
	return ids, err
}

// NumberOfStages returns the stage count for a race.
func (p *Portal) NumberOfStages(raceID int) (int, error) {
	stages, err := p.RaceStages(raceID)
	if err != nil {
		return 0, err
	}
	return len(stages), nil
}

// CreateTeam creates a team.
func (p *Portal) CreateTeam(name, description string) (int, error) {
	if err := models.ValidateName(name); err != nil {
		return 0, p.reject("create_team", err)
	}

	var id int
	err := p.store.Update(func(s *store.State) error {
		if s.TeamNameTaken(name) {
			return fmt.Errorf("%w: team %q", models.ErrNameAlreadyExists, name)
		}
		id = s.NextTeamID()
		s.Teams[id] = &models.Team{ID: id, Name: name, Description: description}
		return nil
	})
	if err != nil {
		return 0, p.reject("create_team", err)
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("team").Inc()
	p.log.WithFields(logrus.Fields{"team_id": id, "name": name}).Info("Team created")
	return id, nil
}

// RemoveTeam deletes a team with its riders and all their results.
func (p *Portal) RemoveTeam(teamID int) error {
	var affected []int
	err := p.store.Update(func(s *store.State) error {
		team, ok := s.Teams[teamID]
		if !ok {
			return fmt.Errorf("%w: team %d", models.ErrIDNotRecognised, teamID)
		}
		seen := map[int]bool{}
		for _, riderID := range team.RiderIDs {
			for k := range s.Results {
				if k.RiderID == riderID && !seen[k.StageID] {
					seen[k.StageID] = true
					affected = append(affected, k.StageID)
				}
			}
		}
		s.RemoveTeamCascade(teamID)
		return nil
	})
	if err != nil {
		return p.reject("remove_team", err)
	}

	metrics.EntitiesRemovedTotal.WithLabelValues("team").Inc()
	p.log.WithField("team_id", teamID).Info("Team removed")
	for _, stageID := range affected {
		p.notifyStage(stageID)
	}
	return nil
}

// Teams returns all team IDs, ascending.
func (p *Portal) Teams() []int {
	var ids []int
	_ = p.store.View(func(s *store.State) error {
		for id := range s.Teams {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Ints(ids)
	return ids
}

// TeamRiders returns the rider IDs of a team.
func (p *Portal) TeamRiders(teamID int) ([]int, error) {
	var ids []int
	err := p.store.View(func(s *store.State) error {
		team, ok := s.Teams[teamID]
		if !ok {
			return fmt.Errorf("%w: team %d", models.ErrIDNotRecognised, teamID)
		}
		ids = append([]int(nil), team.RiderIDs...)
		return nil
	})
	return ids, err
}

// CreateRider creates a rider on an existing team.
func (p *Portal) CreateRider(teamID int, name string, yearOfBirth int) (int, error) {
	if err := models.ValidateRider(name, yearOfBirth); err != nil {
		return 0, p.reject("create_rider", err)
	}

	var id int
	err := p.store.Update(func(s *store.State) error {
		team, ok := s.Teams[teamID]
		if !ok {
			return fmt.Errorf("%w: team %d", models.ErrIDNotRecognised, teamID)
		}
		id = s.NextRiderID()
		s.Riders[id] = &models.Rider{ID: id, TeamID: teamID, Name: name, YearOfBirth: yearOfBirth}
		team.RiderIDs = append(team.RiderIDs, id)
		return nil
	})
	if err != nil {
		return 0, p.reject("create_rider", err)
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("rider").Inc()
	p.log.WithFields(logrus.Fields{"rider_id": id, "team_id": teamID}).Info("Rider created")
	return id, nil
}

// RemoveRider deletes a rider and every result they hold across all
// stages.
func (p *Portal) RemoveRider(riderID int) error {
	var affected []int
	err := p.store.Update(func(s *store.State) error {
		rider, ok := s.Riders[riderID]
		if !ok {
			return fmt.Errorf("%w: rider %d", models.ErrIDNotRecognised, riderID)
		}
		affected = s.RemoveRiderResults(riderID)
		if team, ok := s.Teams[rider.TeamID]; ok {
			for i, id := range team.RiderIDs {
				if id == riderID {
					team.RiderIDs = append(team.RiderIDs[:i], team.RiderIDs[i+1:]...)
					break
				}
			}
		}
		delete(s.Riders, riderID)
		return nil
	})
	if err != nil {
		return p.reject("remove_rider", err)
	}

	metrics.EntitiesRemovedTotal.WithLabelValues("rider").Inc()
	p.log.WithField("rider_id", riderID).Info("Rider removed")
	for _, stageID := range affected {
		p.notifyStage(stageID)
	}
	return nil
}
