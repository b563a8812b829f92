package portal

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/datasource"
	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/store"
)

// ImportReport summarizes one startlist import run.
type ImportReport struct {
	TeamsCreated  int      `json:"teams_created"`
	RidersCreated int      `json:"riders_created"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
}

// ImportStartlist creates the teams and riders of a fetched startlist
// through the normal validated mutators. Teams whose name is already taken
// are treated as existing and skipped; their riders are still created when
// the existing team can be resolved by name. Entries that fail validation
// are reported and do not abort the run.
func (p *Portal) ImportStartlist(list *datasource.Startlist) ImportReport {
	var report ImportReport

	for _, team := range list.Teams {
		teamID, err := p.CreateTeam(team.Name, team.Description)
		switch {
		case err == nil:
			report.TeamsCreated++
		case errors.Is(err, models.ErrNameAlreadyExists):
			report.Skipped++
			teamID = p.teamIDByName(team.Name)
			if teamID == 0 {
				continue
			}
		default:
			report.Errors = append(report.Errors, err.Error())
			continue
		}

		for _, rider := range team.Riders {
			if _, err := p.CreateRider(teamID, rider.Name, rider.YearOfBirth); err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			report.RidersCreated++
		}
	}

	metrics.StartlistImportsTotal.Inc()
	p.log.WithFields(logrus.Fields{
		"teams":  report.TeamsCreated,
		"riders": report.RidersCreated,
	}).Info("Startlist imported")
	return report
}

func (p *Portal) teamIDByName(name string) int {
	var id int
	_ = p.store.View(func(s *store.State) error {
		for _, t := range s.Teams {
			if t.Name == name {
				id = t.ID
				break
			}
		}
		return nil
	})
	return id
}
