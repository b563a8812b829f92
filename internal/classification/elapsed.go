// Package classification turns raw stage results into rankings, adjusted
// elapsed times and points. Everything here is a pure function of the
// results it is handed; nothing is cached, stage fields are recomputed per
// call.
package classification

import (
	"sort"
	"time"

	"github.com/yourusername/veloportal/internal/models"
)

// groupingGap is the consecutive-gap threshold below which riders share an
// adjusted elapsed time. The comparison is strict: a gap of exactly one
// second starts a new group.
const groupingGap = time.Second

// Standing is one rider's place in the stage ranking.
type Standing struct {
	RiderID  int
	Elapsed  time.Duration
	Adjusted time.Duration
}

// Standings ranks the stage's results by real elapsed time, rider ID as
// tiebreak, and fills in adjusted times by the close-finish grouping rule:
// a rider finishing less than a second behind the previous finisher takes
// that finisher's adjusted time. The chain is transitive, so a group can
// span far more than a second end to end. Time-trials never group.
func Standings(stageType models.StageType, results []*models.Result) []Standing {
	standings := make([]Standing, 0, len(results))
	for _, r := range results {
		standings = append(standings, Standing{RiderID: r.RiderID, Elapsed: r.Elapsed()})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Elapsed != standings[j].Elapsed {
			return standings[i].Elapsed < standings[j].Elapsed
		}
		return standings[i].RiderID < standings[j].RiderID
	})

	for i := range standings {
		if stageType != models.StageTimeTrial && i > 0 &&
			standings[i].Elapsed-standings[i-1].Elapsed < groupingGap {
			standings[i].Adjusted = standings[i-1].Adjusted
		} else {
			standings[i].Adjusted = standings[i].Elapsed
		}
	}
	return standings
}

// AdjustedFor returns a single rider's adjusted elapsed time, or false if
// the rider has no result among those given.
func AdjustedFor(stageType models.StageType, results []*models.Result, riderID int) (time.Duration, bool) {
	for _, s := range Standings(stageType, results) {
		if s.RiderID == riderID {
			return s.Adjusted, true
		}
	}
	return 0, false
}
