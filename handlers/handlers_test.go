package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/database"
	"github.com/camden-git/seeds/repository"
	"github.com/camden-git/seeds/services"
	"go.uber.org/zap"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func setupServer(t *testing.T, allowSignup bool) *httptest.Server {
	t.Helper()

	db, err := database.InitGormDB(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "api.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("InitGormDB: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("AutoMigrateModels: %v", err)
	}

	logger := zap.NewNop()
	clock := fixedClock{now: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}
	srv := httptest.NewServer(NewRouter(RouterOptions{
		Services:       services.New(db, cache.Nop{}, clock, logger),
		Users:          repository.NewGormUserRepository(db),
		JWTSecret:      []byte("test-secret"),
		JWTExpiration:  time.Hour,
		AllowSignup:    allowSignup,
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         logger,
	}))
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func login(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "correct horse"}
	if status := do(t, srv, "POST", "/api/auth/register", "", creds, nil); status != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, status)
	}
	var resp LoginResponse
	if status := do(t, srv, "POST", "/api/auth/login", "", creds, &resp); status != http.StatusOK {
		t.Fatalf("login %s: status %d", username, status)
	}
	return resp.Token
}

func TestAuthRequired(t *testing.T) {
	srv := setupServer(t, true)

	var body APIErrorResponse
	if status := do(t, srv, "GET", "/api/people", "", nil, &body); status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if len(body.Errors) != 1 || body.Errors[0].Status != "401" {
		t.Errorf("error body = %+v", body)
	}
	if status := do(t, srv, "GET", "/api/people", "bogus", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", status)
	}
}

func TestSignupClosedAfterFirstUser(t *testing.T) {
	srv := setupServer(t, false)

	login(t, srv, "first")
	creds := map[string]string{"username": "second", "password": "correct horse"}
	if status := do(t, srv, "POST", "/api/auth/register", "", creds, nil); status != http.StatusForbidden {
		t.Errorf("second register status = %d, want 403", status)
	}
}

func TestPeopleEndpoints(t *testing.T) {
	srv := setupServer(t, true)
	alice := login(t, srv, "alice")
	bob := login(t, srv, "bob")

	var created struct {
		Slug string `json:"slug"`
	}
	status := do(t, srv, "POST", "/api/people", alice, map[string]string{"first_name": "Jane", "last_name": "Doe"}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", status)
	}
	if created.Slug != "jane-doe" {
		t.Errorf("slug = %q, want jane-doe", created.Slug)
	}

	if status := do(t, srv, "GET", "/api/people/jane-doe", alice, nil, nil); status != http.StatusOK {
		t.Errorf("get status = %d, want 200", status)
	}
	if status := do(t, srv, "GET", "/api/people/jane-doe", bob, nil, nil); status != http.StatusNotFound {
		t.Errorf("get as other user status = %d, want 404", status)
	}

	var invalid APIErrorResponse
	status = do(t, srv, "POST", "/api/people", alice, map[string]string{"first_name": "X", "work_phone": "12"}, &invalid)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create status = %d, want 422", status)
	}
	if len(invalid.Errors) != 1 || invalid.Errors[0].Field != "work_phone" {
		t.Errorf("errors = %+v, want one on work_phone", invalid.Errors)
	}

	var search struct {
		Page        int  `json:"page"`
		MoreResults bool `json:"more_results"`
		People      []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"people"`
	}
	if status := do(t, srv, "GET", "/api/people/search?q=ja", alice, nil, &search); status != http.StatusOK {
		t.Fatalf("search status = %d", status)
	}
	if len(search.People) != 1 || search.People[0].Name != "Jane Doe" {
		t.Errorf("search = %+v, want Jane Doe", search.People)
	}

	var deleted deletedResponse
	if status := do(t, srv, "DELETE", "/api/people/jane-doe", alice, nil, &deleted); status != http.StatusOK || deleted.Deleted != 1 {
		t.Errorf("delete = %d/%d, want 200/1", status, deleted.Deleted)
	}
}

func TestConversationEndpoints(t *testing.T) {
	srv := setupServer(t, true)
	token := login(t, srv, "alice")

	do(t, srv, "POST", "/api/people", token, map[string]string{"first_name": "Jane"}, nil)

	var invalid APIErrorResponse
	seed := map[string]interface{}{"people": []string{"jane"}, "mode": "video call", "summary": "hi", "seed": true}
	if status := do(t, srv, "POST", "/api/conversations", token, seed, &invalid); status != http.StatusUnprocessableEntity {
		t.Fatalf("live seed status = %d, want 422", status)
	}
	if len(invalid.Errors) == 0 || invalid.Errors[0].Field != "mode" {
		t.Errorf("errors = %+v, want one on mode", invalid.Errors)
	}

	var conv struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	}
	seed["mode"] = "email"
	if status := do(t, srv, "POST", "/api/conversations", token, seed, &conv); status != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", status)
	}
	if status := do(t, srv, "GET", "/api/conversations/"+conv.ID, token, nil, nil); status != http.StatusOK {
		t.Errorf("get status = %d, want 200", status)
	}

	var trend services.Series
	if status := do(t, srv, "GET", "/api/insights/trend?period=month", token, nil, &trend); status != http.StatusOK {
		t.Fatalf("trend status = %d", status)
	}
	if n := len(trend.Seeds); n != services.TrendMonths || trend.Seeds[n-1] != 1 {
		t.Errorf("trend seeds = %v, want one this month", trend.Seeds)
	}
	if status := do(t, srv, "GET", "/api/insights/trend?period=day", token, nil, nil); status != http.StatusUnprocessableEntity {
		t.Errorf("bad period status = %d, want 422", status)
	}
}
