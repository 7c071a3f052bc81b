// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/recommend"
)

func testCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		&catalog.Item{ID: "m1", Title: "Airplane!", Year: 1980, Genres: []string{"Comedy"}, QualityRating: 7.7, Platforms: []string{"Netflix"}},
		&catalog.Item{ID: "m2", Title: "The Shining", Year: 1980, Genres: []string{"Horror"}, QualityRating: 8.4, Platforms: []string{"Hulu"}},
		&catalog.Item{ID: "m3", Title: "Groundhog Day", Year: 1993, Genres: []string{"Comedy", "Romance"}, QualityRating: 8.0, Platforms: []string{"Netflix"}},
		&catalog.Item{ID: "m4", Title: "Alien", Year: 1979, Genres: []string{"Horror", "Sci-Fi"}, QualityRating: 8.5, Platforms: []string{"Disney+"}},
		&catalog.Item{ID: "m5", Title: "Heat", Year: 1995, Genres: []string{"Crime", "Drama"}, QualityRating: 8.3, Platforms: []string{"Hulu"}},
	)
}

func testRows() []recommend.Interaction {
	return []recommend.Interaction{
		{UserID: "u1", ItemID: "m1", Rating: 5, Timestamp: 1},
		{UserID: "u1", ItemID: "m2", Rating: 1, Timestamp: 2},
		{UserID: "u2", ItemID: "m1", Rating: 4, Timestamp: 3},
		{UserID: "u2", ItemID: "m3", Rating: 5, Timestamp: 4},
		{UserID: "u3", ItemID: "m2", Rating: 3, Timestamp: 5},
		{UserID: "u3", ItemID: "m4", Rating: 4, Timestamp: 6},
		{UserID: "u3", ItemID: "m5", Rating: 2, Timestamp: 7},
	}
}

type recordingPublisher struct {
	mu       sync.Mutex
	requests []events.TrainRequested
	err      error
}

func (p *recordingPublisher) PublishTrainRequested(_ context.Context, event events.TrainRequested) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.requests = append(p.requests, event)
	return nil
}

func (p *recordingPublisher) PublishModelTrained(context.Context, events.ModelTrained) error {
	return nil
}

type testServer struct {
	engine    *recommend.Engine
	publisher *recordingPublisher
	handler   http.Handler
}

func newTestServer(t *testing.T, train bool, modify func(*recommend.Config)) *testServer {
	t.Helper()

	cfg := recommend.DefaultConfig()
	cfg.MinInteractions = 1
	cfg.Factors = 2
	if modify != nil {
		modify(cfg)
	}
	engine, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(engine.Close)
	engine.SetCatalog(testCatalog())
	engine.SetDataProvider(recommend.StaticProvider(testRows()))

	if train {
		if err := engine.Train(context.Background()); err != nil {
			t.Fatalf("Train() error = %v", err)
		}
	}

	pub := &recordingPublisher{}
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		RateLimitDisabled:  true,
	})
	h := NewHandler(engine, nil, pub, HandlerConfig{DiversityLambda: 0.3, Version: "test"})
	return &testServer{
		engine:    engine,
		publisher: pub,
		handler:   NewRouter(h, mw).SetupChi(),
	}
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		ModelVersion int    `json:"model_version"`
		RequestID    string `json:"request_id"`
	} `json:"metadata"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

type recommendationData struct {
	UserID          string `json:"user_id"`
	Count           int    `json:"count"`
	Source          string `json:"source"`
	Recommendations []struct {
		ItemID    string   `json:"item_id"`
		Title     string   `json:"title"`
		Genres    []string `json:"genres"`
		Rating    float64  `json:"rating"`
		Platforms []string `json:"platforms"`
		Score     float64  `json:"score"`
	} `json:"recommendations"`
	Preferences *struct {
		Genres        []string `json:"genres"`
		ExcludeGenres []string `json:"exclude_genres"`
	} `json:"preferences"`
	Extractor string `json:"extractor"`
}

func decodeRecommendations(t *testing.T, env envelope) recommendationData {
	t.Helper()
	var data recommendationData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return data
}

func itemIDs(data recommendationData) []string {
	ids := make([]string, len(data.Recommendations))
	for i, r := range data.Recommendations {
		ids[i] = r.ItemID
	}
	return ids
}

func TestHealth(t *testing.T) {
	t.Run("before training", func(t *testing.T) {
		s := newTestServer(t, false, nil)

		rec, env := s.do(t, http.MethodGet, "/api/v1/health", "")
		if rec.Code != http.StatusOK || env.Status != "success" {
			t.Fatalf("health = %d %s", rec.Code, env.Status)
		}
		if !strings.Contains(string(env.Data), `"model_loaded":false`) {
			t.Errorf("data = %s, want model_loaded false", env.Data)
		}

		rec, env = s.do(t, http.MethodGet, "/api/v1/health/ready", "")
		if rec.Code != http.StatusServiceUnavailable || env.Error == nil || env.Error.Code != "NOT_READY" {
			t.Errorf("ready = %d %+v, want 503 NOT_READY", rec.Code, env.Error)
		}

		if rec, _ := s.do(t, http.MethodGet, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
			t.Errorf("live = %d, want 200", rec.Code)
		}
	})

	t.Run("after training", func(t *testing.T) {
		s := newTestServer(t, true, nil)
		rec, env := s.do(t, http.MethodGet, "/api/v1/health/ready", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("ready = %d, want 200", rec.Code)
		}
		if !strings.Contains(string(env.Data), `"model_version":1`) {
			t.Errorf("data = %s, want model_version 1", env.Data)
		}
	})
}

func TestGetRecommendationsPopularity(t *testing.T) {
	s := newTestServer(t, true, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations/user/stranger?n=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeRecommendations(t, env)
	if data.Source != "popularity" || data.UserID != "stranger" {
		t.Errorf("source/user = %s/%s, want popularity/stranger", data.Source, data.UserID)
	}
	want := []string{"m4", "m2", "m5"}
	if got := itemIDs(data); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("items = %v, want %v", got, want)
	}
	if data.Count != 3 || data.Recommendations[0].Title != "Alien" || data.Recommendations[0].Rating != 8.5 {
		t.Errorf("first = %+v, count %d", data.Recommendations[0], data.Count)
	}
}

func TestGetRecommendationsModel(t *testing.T) {
	s := newTestServer(t, true, nil)

	_, env := s.do(t, http.MethodGet, "/api/v1/recommendations/user/u1", "")
	data := decodeRecommendations(t, env)
	if data.Source != "model" {
		t.Fatalf("source = %s, want model", data.Source)
	}
	if env.Metadata.ModelVersion != 1 {
		t.Errorf("model_version = %d, want 1", env.Metadata.ModelVersion)
	}
	for _, id := range itemIDs(data) {
		if id == "m1" || id == "m2" {
			t.Errorf("seen item %s served", id)
		}
	}
	if data.Count != 3 {
		t.Errorf("count = %d, want 3 unseen items", data.Count)
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/recommendations/user/u1?filter_seen=false", "")
	if got := decodeRecommendations(t, env).Count; got != 5 {
		t.Errorf("count with filter_seen=false = %d, want 5", got)
	}
}

func TestGetRecommendationsPlatformFilter(t *testing.T) {
	s := newTestServer(t, true, nil)

	for _, target := range []string{
		"/api/v1/recommendations/user/stranger?platform=Hulu,Disney%2B",
		"/api/v1/recommendations/user/stranger?platform=Hulu&platform=Disney%2B",
	} {
		_, env := s.do(t, http.MethodGet, target, "")
		data := decodeRecommendations(t, env)
		want := []string{"m4", "m2", "m5"}
		if got := itemIDs(data); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("%s items = %v, want %v", target, got, want)
		}
	}
}

func TestGetRecommendationsLimits(t *testing.T) {
	s := newTestServer(t, true, func(c *recommend.Config) {
		c.Limits.DefaultN = 2
		c.Limits.MaxN = 4
	})

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?n=0", 2},
		{"?n=3", 3},
		{"?n=50", 4},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, env := s.do(t, http.MethodGet, "/api/v1/recommendations/user/stranger"+tt.query, "")
			if got := decodeRecommendations(t, env).Count; got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetRecommendationsInvalidParams(t *testing.T) {
	s := newTestServer(t, false, nil)

	tests := []struct {
		name   string
		target string
	}{
		{"non-numeric n", "/api/v1/recommendations/user/u1?n=ten"},
		{"negative n", "/api/v1/recommendations/user/u1?n=-1"},
		{"bad filter_seen", "/api/v1/recommendations/user/u1?filter_seen=maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("got %d %+v, want 400 VALIDATION_ERROR", rec.Code, env.Error)
			}
		})
	}
}

func TestGetSimilar(t *testing.T) {
	s := newTestServer(t, true, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations/similar/m1?n=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data struct {
		ItemID  string `json:"item_id"`
		Count   int    `json:"count"`
		Similar []struct {
			ItemID string `json:"item_id"`
		} `json:"similar"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.ItemID != "m1" || data.Count != 2 {
		t.Errorf("data = %+v, want 2 neighbours of m1", data)
	}
	for _, r := range data.Similar {
		if r.ItemID == "m1" {
			t.Error("item is its own neighbour")
		}
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/recommendations/similar/unknown", "")
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Count != 0 || len(data.Similar) != 0 {
		t.Errorf("unknown item returned %+v", data)
	}
}

func TestQuery(t *testing.T) {
	s := newTestServer(t, true, nil)

	rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/query", `{"text": "funny movies without horror"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeRecommendations(t, env)
	if data.Extractor != "pattern" || data.Preferences == nil {
		t.Fatalf("extractor/preferences = %s/%v", data.Extractor, data.Preferences)
	}
	if len(data.Preferences.Genres) != 1 || data.Preferences.Genres[0] != "Comedy" {
		t.Errorf("genres = %v, want [Comedy]", data.Preferences.Genres)
	}
	if len(data.Preferences.ExcludeGenres) != 1 || data.Preferences.ExcludeGenres[0] != "Horror" {
		t.Errorf("exclude = %v, want [Horror]", data.Preferences.ExcludeGenres)
	}

	// Popularity scores plus bonuses: m3 10.0, m1 9.7, m5 8.3, m4 5.5, m2 5.4.
	want := []string{"m3", "m1", "m5", "m4", "m2"}
	if got := itemIDs(data); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("items = %v, want %v", got, want)
	}
	if data.Source != "popularity" {
		t.Errorf("source = %s, want popularity", data.Source)
	}
}

func TestQueryTruncatesAfterRerank(t *testing.T) {
	s := newTestServer(t, true, nil)

	_, env := s.do(t, http.MethodPost, "/api/v1/recommendations/query", `{"text": "something funny", "n": 2}`)
	data := decodeRecommendations(t, env)
	want := []string{"m3", "m1"}
	if got := itemIDs(data); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("items = %v, want %v (reranked from over-fetched candidates)", got, want)
	}
}

func TestQueryDiversity(t *testing.T) {
	s := newTestServer(t, true, nil)

	_, env := s.do(t, http.MethodPost, "/api/v1/recommendations/query", `{"text": "funny", "n": 2, "diversity": true}`)
	data := decodeRecommendations(t, env)
	if data.Count != 2 {
		t.Fatalf("count = %d, want 2", data.Count)
	}
	// m3 leads on relevance. m1 is next by score but shares Comedy with m3,
	// so at lambda 0.3 the unrelated m4 takes the second slot.
	if got := itemIDs(data); strings.Join(got, ",") != "m3,m4" {
		t.Errorf("items = %v, want [m3 m4]", got)
	}
}

func TestQueryInvalid(t *testing.T) {
	s := newTestServer(t, false, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"text": `, "INVALID_JSON"},
		{"missing text", `{"n": 3}`, "VALIDATION_ERROR"},
		{"blank text", `{"text": "   "}`, "VALIDATION_ERROR"},
		{"negative n", `{"text": "drama", "n": -2}`, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/query", tt.body)
			if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("got %d %+v, want 400 %s", rec.Code, env.Error, tt.code)
			}
		})
	}
}

func TestTriggerTraining(t *testing.T) {
	t.Run("queued", func(t *testing.T) {
		s := newTestServer(t, false, nil)
		rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/train", `{"reason": "nightly"}`)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if len(s.publisher.requests) != 1 || s.publisher.requests[0].Reason != "nightly" {
			t.Fatalf("published %+v", s.publisher.requests)
		}
		if s.publisher.requests[0].RequestID != env.Metadata.RequestID {
			t.Errorf("event request id %q, response %q", s.publisher.requests[0].RequestID, env.Metadata.RequestID)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		s := newTestServer(t, false, nil)
		if rec, _ := s.do(t, http.MethodPost, "/api/v1/recommendations/train", ""); rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202", rec.Code)
		}
		if s.publisher.requests[0].Reason != "api" {
			t.Errorf("reason = %q, want api", s.publisher.requests[0].Reason)
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		s := newTestServer(t, false, nil)
		s.publisher.err = errors.New("closed")
		rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/train", "")
		if rec.Code != http.StatusServiceUnavailable || env.Error.Code != CodeEventsUnavailable {
			t.Errorf("got %d %+v", rec.Code, env.Error)
		}
	})

	t.Run("inline", func(t *testing.T) {
		s := newTestServer(t, false, nil)
		rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/train?wait=true", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if env.Metadata.ModelVersion != 1 || s.engine.Model() == nil {
			t.Errorf("model_version = %d, want 1", env.Metadata.ModelVersion)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		s := newTestServer(t, false, nil)
		s.engine.SetDataProvider(recommend.StaticProvider{{UserID: "u", ItemID: "i", Rating: 5}})
		rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/train?wait=true", "")
		if rec.Code != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != CodeInsufficientData {
			t.Errorf("got %d %+v, want 422 INSUFFICIENT_DATA", rec.Code, env.Error)
		}
	})
}

func TestTriggerTrainingWithoutPublisher(t *testing.T) {
	engine, err := recommend.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	h := NewHandler(engine, nil, nil, HandlerConfig{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/train", nil)
	rec := httptest.NewRecorder()
	h.TriggerTraining(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetStatus(t *testing.T) {
	s := newTestServer(t, true, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data struct {
		Training recommend.TrainingStatus `json:"training"`
		Config   recommend.Config         `json:"config"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Training.ModelVersion != 1 || data.Training.Users != 3 || data.Training.Items != 5 {
		t.Errorf("training = %+v", data.Training)
	}
	if data.Config.Factors != 2 || data.Config.Solver != recommend.SolverSVD {
		t.Errorf("config = %+v", data.Config)
	}
}
