// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/config"
	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
	"github.com/tomtom215/tuneisland/internal/store"
)

type testServer struct {
	router  http.Handler
	handler *Handler
	db      *store.DB
	engine  *recommend.Engine
	stores  Stores
}

// setupTestServer seeds songs 1..4 (plays 10, 40, 30, 5), users 1 and 2
// and songlist 10 owned by user 1 containing song 1. User 1 has a stored
// recommendation list [3, 99, 1].
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := store.Open(store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stores := Stores{
		Users:     store.NewUserStore(db),
		Songs:     store.NewSongStore(db),
		Songlists: store.NewSonglistStore(db),
	}

	ctx := context.Background()
	for _, s := range []*models.Song{
		{ID: 1, Name: "One", Singer: "A", Tags: []models.SongTag{models.TagPop}, PlayCount: 10},
		{ID: 2, Name: "Two", Singer: "B", PlayCount: 40},
		{ID: 3, Name: "Three", Singer: "C", PlayCount: 30},
		{ID: 4, Name: "Four", Singer: "D", PlayCount: 5},
	} {
		if err := stores.Songs.Save(ctx, s); err != nil {
			t.Fatalf("save song: %v", err)
		}
	}
	if err := stores.Users.SaveAll(ctx, []*models.UserProfile{
		{ID: 1, Name: "alice", RecommendedItems: []int64{3, 99, 1}},
		{ID: 2, Name: "bob"},
	}); err != nil {
		t.Fatalf("save users: %v", err)
	}
	if err := stores.Songlists.Save(ctx, &models.Songlist{ID: 10, OwnerID: 1, Name: "likes", Songs: []int64{1}}); err != nil {
		t.Fatalf("save songlist: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Recommend.DefaultCount = 2
	cfg.Recommend.Workers = 2

	engine, err := recommend.NewEngine(cfg.EngineConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.SetStores(stores.Users, stores.Songs, stores.Songlists)

	h := NewHandler(engine, stores, db, cfg)
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true

	return &testServer{
		router:  NewRouter(h, mw).SetupChi(),
		handler: h,
		db:      db,
		engine:  engine,
		stores:  stores,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, resp
}

func songIDsFrom(t *testing.T, data interface{}) []int64 {
	t.Helper()
	m, ok := data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", data)
	}
	list, _ := m["songs"].([]interface{})
	ids := make([]int64, 0, len(list))
	for _, s := range list {
		ids = append(ids, int64(s.(map[string]interface{})["id"].(float64)))
	}
	return ids
}

func errorCode(resp map[string]interface{}) string {
	e, _ := resp["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGetRecommendations(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantIDs  []int64
		wantErr  string
	}{
		{"stored list skips deleted ids", "/api/v1/users/1/recommendations?n=5", http.StatusOK, []int64{3, 1}, ""},
		{"default count", "/api/v1/users/1/recommendations", http.StatusOK, []int64{3, 1}, ""},
		{"truncated to n", "/api/v1/users/1/recommendations?n=1", http.StatusOK, []int64{3}, ""},
		{"empty list uses popularity", "/api/v1/users/2/recommendations?n=3", http.StatusOK, []int64{2, 3, 1}, ""},
		{"unknown user uses popularity", "/api/v1/users/404/recommendations?n=2", http.StatusOK, []int64{2, 3}, ""},
		{"n too large", "/api/v1/users/1/recommendations?n=101", http.StatusBadRequest, nil, "VALIDATION_ERROR"},
		{"n zero", "/api/v1/users/1/recommendations?n=0", http.StatusBadRequest, nil, "VALIDATION_ERROR"},
		{"n not a number", "/api/v1/users/1/recommendations?n=ten", http.StatusBadRequest, nil, "VALIDATION_ERROR"},
		{"bad user id", "/api/v1/users/abc/recommendations", http.StatusBadRequest, nil, "INVALID_USER_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, resp := ts.do(t, http.MethodGet, tt.path, "")
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%v)", code, tt.wantCode, resp)
			}
			if tt.wantErr != "" {
				if got := errorCode(resp); got != tt.wantErr {
					t.Errorf("error code = %q, want %q", got, tt.wantErr)
				}
				return
			}
			if got := songIDsFrom(t, resp["data"]); !equalIDs(got, tt.wantIDs) {
				t.Errorf("songs = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestGetHotSongs(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)
	code, resp := ts.do(t, http.MethodGet, "/api/v1/songs/hot", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got := songIDsFrom(t, resp["data"]); !equalIDs(got, []int64{2, 3, 1, 4}) {
		t.Errorf("hot songs = %v, want [2 3 1 4]", got)
	}
}

func TestPlaySong(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"records play", "/api/v1/songs/4/play", `{"user_id":2}`, http.StatusOK, ""},
		{"missing user id", "/api/v1/songs/4/play", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown field", "/api/v1/songs/4/play", `{"user_id":2,"x":1}`, http.StatusBadRequest, "INVALID_JSON"},
		{"empty body", "/api/v1/songs/4/play", "", http.StatusBadRequest, "INVALID_JSON"},
		{"unknown song", "/api/v1/songs/99/play", `{"user_id":2}`, http.StatusNotFound, "NOT_FOUND"},
		{"unknown user", "/api/v1/songs/4/play", `{"user_id":77}`, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := ts.do(t, http.MethodPost, tt.path, tt.body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%v)", code, tt.wantCode, resp)
			}
			if tt.wantErr != "" && errorCode(resp) != tt.wantErr {
				t.Errorf("error code = %q, want %q", errorCode(resp), tt.wantErr)
			}
		})
	}

	song, err := ts.stores.Songs.GetByID(context.Background(), 4)
	if err != nil || song.PlayCount != 6 {
		t.Errorf("song 4 = %+v, err %v; want play count 6", song, err)
	}
	user, err := ts.stores.Users.GetByID(context.Background(), 2)
	if err != nil || !equalIDs(user.History, []int64{4}) {
		t.Errorf("user 2 history = %v, err %v; want [4]", user.History, err)
	}
}

func TestRateSong(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	steps := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"rating above five", `{"user_id":1,"rating":6}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing rating", `{"user_id":1}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"first rating", `{"user_id":1,"rating":4}`, http.StatusOK, ""},
		{"second rating by same user", `{"user_id":1,"rating":2}`, http.StatusConflict, "ALREADY_RATED"},
		{"zero rating by other user", `{"user_id":2,"rating":0}`, http.StatusOK, ""},
	}

	for _, step := range steps {
		code, resp := ts.do(t, http.MethodPost, "/api/v1/songs/3/rate", step.body)
		if code != step.wantCode {
			t.Fatalf("%s: status = %d, want %d (%v)", step.name, code, step.wantCode, resp)
		}
		if step.wantErr != "" && errorCode(resp) != step.wantErr {
			t.Errorf("%s: error code = %q, want %q", step.name, errorCode(resp), step.wantErr)
		}
	}

	song, err := ts.stores.Songs.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if song.RatingCount != 2 || song.Rating != 2 {
		t.Errorf("rating = %v over %d, want 2 over 2", song.Rating, song.RatingCount)
	}
}

func TestSonglistSongs(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	code, resp := ts.do(t, http.MethodPost, "/api/v1/songlists/10/songs", `{"song_id":2}`)
	if code != http.StatusOK {
		t.Fatalf("add status = %d (%v)", code, resp)
	}
	code, _ = ts.do(t, http.MethodPost, "/api/v1/songlists/10/songs", `{"song_id":99}`)
	if code != http.StatusNotFound {
		t.Errorf("add unknown song status = %d, want 404", code)
	}
	code, _ = ts.do(t, http.MethodDelete, "/api/v1/songlists/10/songs/1", "")
	if code != http.StatusOK {
		t.Errorf("remove status = %d, want 200", code)
	}

	list, err := ts.stores.Songlists.GetByID(context.Background(), 10)
	if err != nil || !equalIDs(list.Songs, []int64{2}) {
		t.Errorf("songlist = %+v, err %v; want songs [2]", list, err)
	}

	code, _ = ts.do(t, http.MethodDelete, "/api/v1/songlists/55/songs/1", "")
	if code != http.StatusNotFound {
		t.Errorf("remove from unknown songlist status = %d, want 404", code)
	}
}

func TestCollectSonglist(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	for i := 0; i < 2; i++ {
		code, resp := ts.do(t, http.MethodPost, "/api/v1/users/2/songlists/10", "")
		if code != http.StatusOK {
			t.Fatalf("collect status = %d (%v)", code, resp)
		}
	}
	user, err := ts.stores.Users.GetByID(context.Background(), 2)
	if err != nil || !equalIDs(user.CollectedSonglists, []int64{10}) {
		t.Errorf("collected = %v, err %v; want [10]", user.CollectedSonglists, err)
	}

	code, _ := ts.do(t, http.MethodPost, "/api/v1/users/2/songlists/11", "")
	if code != http.StatusNotFound {
		t.Errorf("collect unknown songlist status = %d, want 404", code)
	}
}

func TestUpserts(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"create song", http.MethodPut, "/api/v1/songs/5", `{"name":"Five","singer":"E","tags":["SLEEP","STUDY"]}`, http.StatusCreated, ""},
		{"update song", http.MethodPut, "/api/v1/songs/2", `{"name":"Two!","singer":"B"}`, http.StatusOK, ""},
		{"unknown tag", http.MethodPut, "/api/v1/songs/6", `{"name":"Six","singer":"F","tags":["POLKA"]}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"create user", http.MethodPut, "/api/v1/users/3", `{"name":"carol"}`, http.StatusCreated, ""},
		{"user without name", http.MethodPut, "/api/v1/users/3", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"create songlist", http.MethodPut, "/api/v1/songlists/11", `{"owner_id":2,"name":"road trip"}`, http.StatusCreated, ""},
		{"get song", http.MethodGet, "/api/v1/songs/5", "", http.StatusOK, ""},
		{"get missing song", http.MethodGet, "/api/v1/songs/6", "", http.StatusNotFound, "NOT_FOUND"},
		{"get user", http.MethodGet, "/api/v1/users/3", "", http.StatusOK, ""},
		{"get songlist", http.MethodGet, "/api/v1/songlists/11", "", http.StatusOK, ""},
		{"negative id", http.MethodGet, "/api/v1/songs/-1", "", http.StatusBadRequest, "INVALID_SONG_ID"},
	}

	for _, tt := range tests {
		code, resp := ts.do(t, tt.method, tt.path, tt.body)
		if code != tt.wantCode {
			t.Fatalf("%s: status = %d, want %d (%v)", tt.name, code, tt.wantCode, resp)
		}
		if tt.wantErr != "" && errorCode(resp) != tt.wantErr {
			t.Errorf("%s: error code = %q, want %q", tt.name, errorCode(resp), tt.wantErr)
		}
	}

	song, err := ts.stores.Songs.GetByID(context.Background(), 2)
	if err != nil || song.Name != "Two!" || song.PlayCount != 40 {
		t.Errorf("updated song = %+v, err %v; want name changed and plays kept", song, err)
	}
}

func TestTrainingEndpoints(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)
	done := make(chan error, 1)
	ts.handler.trainDone = done

	code, resp := ts.do(t, http.MethodPost, "/api/v1/admin/train", "")
	if code != http.StatusAccepted {
		t.Fatalf("train status = %d (%v)", code, resp)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("background training error = %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("training did not finish")
	}

	code, resp = ts.do(t, http.MethodGet, "/api/v1/admin/train/status", "")
	if code != http.StatusOK {
		t.Fatalf("status endpoint = %d", code)
	}
	data := resp["data"].(map[string]interface{})
	if data["is_training"] != false || data["user_count"] != float64(2) || data["song_count"] != float64(4) {
		t.Errorf("training status = %v", data)
	}

	user, err := ts.stores.Users.GetByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(user.RecommendedItems) == 0 || len(user.RecommendedItems) > 2 {
		t.Errorf("recommended items = %v, want 1..2 ids", user.RecommendedItems)
	}
}

// busyEngine reports a running cycle.
type busyEngine struct {
	*recommend.Engine
}

func (busyEngine) Status() recommend.TrainingStatus {
	return recommend.TrainingStatus{IsTraining: true}
}

func TestTriggerTraining_Conflict(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)
	h := NewHandler(busyEngine{ts.engine}, ts.stores, ts.db, config.DefaultConfig())
	router := NewRouter(h, nil).SetupChi()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/train", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "TRAINING_IN_PROGRESS") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	code, resp := ts.do(t, http.MethodGet, "/api/v1/health/live", "")
	if code != http.StatusOK || resp["data"].(map[string]interface{})["alive"] != true {
		t.Errorf("live = %d %v", code, resp)
	}

	code, resp = ts.do(t, http.MethodGet, "/api/v1/health/ready", "")
	if code != http.StatusOK || resp["status"] != "ready" {
		t.Errorf("ready = %d %v", code, resp)
	}

	_ = ts.db.Close()
	code, resp = ts.do(t, http.MethodGet, "/api/v1/health/ready", "")
	if code != http.StatusServiceUnavailable || resp["status"] != "not_ready" {
		t.Errorf("ready after close = %d %v", code, resp)
	}
}

func TestRouting(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)

	code, resp := ts.do(t, http.MethodGet, "/api/v1/nope", "")
	if code != http.StatusNotFound || errorCode(resp) != "NOT_FOUND" {
		t.Errorf("unknown route = %d %v", code, resp)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Errorf("metrics = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Header().Get("X-Request-ID") == "" || rec.Header().Get("ETag") == "" {
		t.Errorf("headers = %v, want X-Request-ID and ETag", rec.Header())
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	ts := setupTestServer(t)
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitRequests = 2
	mw.RateLimitWindow = time.Minute
	router := NewRouter(ts.handler, mw).SetupChi()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
}
