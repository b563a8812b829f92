package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/veloportal/internal/config"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/portal"
)

func newTestServer(t *testing.T) (*Server, *portal.Portal, int, int) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := portal.New(log)
	s := New(config.ServerConfig{Port: 0, CacheTTLSeconds: 60}, p, log, false)

	start := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	raceID, err := p.CreateRace("tour", "july")
	require.NoError(t, err)
	stageID, err := p.AddStage(raceID, "stage-1", "", decimal.NewFromInt(20), start, models.StageTimeTrial)
	require.NoError(t, err)
	require.NoError(t, p.ConcludeStagePreparation(stageID))
	teamID, err := p.CreateTeam("sky", "")
	require.NoError(t, err)
	riderID, err := p.CreateRider(teamID, "A", 1995)
	require.NoError(t, err)
	require.NoError(t, p.RegisterResult(stageID, riderID, []time.Time{start, start.Add(time.Hour)}))

	return s, p, raceID, stageID
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStageClassificationEndpoint(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	rec := get(t, s, "/api/v1/stages/1/classification")
	require.Equal(t, http.StatusOK, rec.Code)

	var cls portal.StageClassification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cls))
	assert.Equal(t, []int{1}, cls.Riders)
	assert.Len(t, cls.Points, 1)
}

func TestUnknownStageIs404(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/v1/stages/99/classification").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/v1/races/99").Code)
}

func TestRaceDetailsEndpoint(t *testing.T) {
	s, _, raceID, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/races/1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID     int    `json:"id"`
		Stages []int  `json:"stages"`
		Detail string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, raceID, body.ID)
	assert.Len(t, body.Stages, 1)
}

func TestMutationFlushesCachedClassification(t *testing.T) {
	s, p, _, stageID := newTestServer(t)

	// Warm the cache.
	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/stages/1/classification").Code)

	riderID, err := p.CreateRider(1, "B", 1996)
	require.NoError(t, err)
	start := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	require.NoError(t, p.RegisterResult(stageID, riderID, []time.Time{start, start.Add(50 * time.Minute)}))

	rec := get(t, s, "/api/v1/stages/1/classification")
	var cls portal.StageClassification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cls))
	assert.Equal(t, []int{riderID, 1}, cls.Riders)
}

func TestHealthEndpoints(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/readyz").Code)
}
