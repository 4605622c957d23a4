// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-engine/internal/catalog"
	"github.com/pdiddy/trial-engine/internal/layout"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

type staticLoader struct {
	records []types.StudyRecord
	calls   int
}

func (l *staticLoader) Load(ctx context.Context) ([]types.StudyRecord, error) {
	l.calls++
	return l.records, nil
}

func fixture() []types.StudyRecord {
	return []types.StudyRecord{
		{ID: "NCT1", Source: types.SourceClinicalTrials, Title: "Phase 2 Study of Drug X in Breast Cancer",
			Status: types.StatusActive, Sponsor: "Acme", Conditions: []string{"Breast Cancer"},
			StartISO: "2020-03-01T00:00:00.000Z", Enrollment: 120},
		{ID: "NCT2", Source: types.SourceClinicalTrials, Title: "Pediatric Asthma Device Trial",
			Status: types.StatusComplete, Sponsor: "Beta", Conditions: []string{"Asthma"},
			StartISO: "2018-06-15T00:00:00.000Z", Enrollment: 40},
		{ID: "2020-001234-56", Source: types.SourceEudraCT, Title: "Vaccine study in healthy volunteers",
			Status: types.StatusActive, Sponsor: "Gamma", Conditions: []string{"Influenza"}},
	}
}

type testServer struct {
	handler http.Handler
	loader  *staticLoader
	store   *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	loader := &staticLoader{records: fixture()}
	cat := catalog.New(loader, nil)
	return &testServer{
		handler: buildRouter(cat, st, layout.NewManager(st), []string{"*"}),
		loader:  loader,
		store:   st,
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type studiesResponse struct {
	Total   int                 `json:"total"`
	Studies []types.StudyRecord `json:"studies"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["loaded"])
}

func TestStudiesFilter(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/studies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[studiesResponse](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/studies?region=us&condition=cancer&from=2020-01-01&to=2020-12-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[studiesResponse](t, rec)
	require.Len(t, got.Studies, 1)
	assert.Equal(t, "NCT1", got.Studies[0].ID)

	rec = s.do(t, http.MethodGet, "/studies?region=eu", "")
	got = decode[studiesResponse](t, rec)
	require.Len(t, got.Studies, 1)
	assert.Equal(t, types.SourceEudraCT, got.Studies[0].Source)

	assert.Equal(t, 1, s.loader.calls, "records are cached across requests")
}

func TestStudiesBadParams(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{
		"/studies?region=asia",
		"/studies?from=03/01/2020",
		"/classifications?to=yesterday",
		"/stats?top=-1",
	} {
		rec := s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, decode[map[string]string](t, rec), "error", target)
	}
}

func TestClassifications(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/classifications?condition=cancer", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total   int                          `json:"total"`
		Results []types.ClassificationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	c := body.Results[0].Classification
	assert.Equal(t, "NCT1", body.Results[0].StudyID)
	assert.Contains(t, c.TherapeuticAreas, "cancer")
	assert.Equal(t, "phase2", c.StudyPhase)
	assert.Equal(t, "drug", c.TreatmentType)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/stats?top=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rep := decode[report](t, rec)
	assert.Equal(t, 3, rep.Classification.TotalStudies)
	assert.Len(t, rep.Conditions, 1)
	assert.Len(t, rep.Sponsors, 1)
	require.Len(t, rep.Regions, 2)
	assert.Equal(t, 2, rep.Regions[0].Trials)
	assert.Equal(t, 160, rep.Regions[0].Enrollment)
	assert.Equal(t, 1, rep.Regions[1].Trials)
	require.NotEmpty(t, rep.StartYears)
	assert.Equal(t, 2018, rep.StartYears[0].Year)
	assert.Equal(t, 2020, rep.StartYears[len(rep.StartYears)-1].Year)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.SaveSnapshot(context.Background(), fixture()))

	rec := s.do(t, http.MethodGet, "/search?q=asthma", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[studiesResponse](t, rec)
	require.Len(t, got.Studies, 1)
	assert.Equal(t, "NCT2", got.Studies[0].ID)

	rec = s.do(t, http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefetch(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/studies", "")
	require.Equal(t, 1, s.loader.calls)

	rec := s.do(t, http.MethodPost, "/refetch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode[map[string]any](t, rec)["records"])
	assert.Equal(t, 2, s.loader.calls)
}

func TestLayoutRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/layouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]types.DashboardLayout](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, layout.DefaultID, list[0].ID)

	rec = s.do(t, http.MethodPost, "/layouts", `{"name":"Oncology"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[types.DashboardLayout](t, rec)
	base := "/layouts/" + created.ID

	rec = s.do(t, http.MethodPost, base+"/widgets", `{"id":"phases","type":"SmartPhaseClassificationChart"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, decode[types.DashboardLayout](t, rec).Widgets, 1)

	rec = s.do(t, http.MethodPatch, base+"/widgets/phases", `{"size":{"width":2,"height":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[types.DashboardLayout](t, rec).Widgets[0].Size.Width)

	rec = s.do(t, http.MethodPatch, base, `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode[types.DashboardLayout](t, rec).Name)

	rec = s.do(t, http.MethodDelete, base+"/widgets/phases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[types.DashboardLayout](t, rec).Widgets)

	rec = s.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLayoutErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, "/layouts/"+layout.DefaultID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/layouts", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/layouts", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/layouts", `{"name":"x"}`)
	created := decode[types.DashboardLayout](t, rec)

	rec = s.do(t, http.MethodPost, "/layouts/"+created.ID+"/widgets", `{"type":"PieChart"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/layouts/"+created.ID+"/widgets/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeUntilDoneDrainsInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	})}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, ln) }()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-started
	cancel()
	select {
	case err := <-done:
		t.Fatalf("serveUntilDone returned with a request in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, http.StatusOK, <-status)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilDone did not return after the request finished")
	}
}

func TestServeFlags(t *testing.T) {
	assert.NotNil(t, serveCmd.Flags().Lookup("live"))
	assert.NotNil(t, serveCmd.Flags().Lookup("port"))
	for _, name := range []string{"region", "condition", "from", "to", "filter-file", "json"} {
		assert.Nil(t, serveCmd.Flags().Lookup(name), name)
	}
}
