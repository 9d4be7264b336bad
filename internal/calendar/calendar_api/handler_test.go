package calendar_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"family-calendar/internal/calendar"
	"family-calendar/internal/calendar/calendar_api"
	"family-calendar/internal/calendar/db"
	"family-calendar/internal/config"
	"family-calendar/internal/identity"
	"family-calendar/internal/identity/identity_api"
	"family-calendar/internal/kafka"
	"family-calendar/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

// setupServer wires the full stack over an in-memory database: real
// storage, real sessions, real routing, no Kafka.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqldb.SetMaxOpenConns(1)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, db.Migrate(context.Background(), bunDB))

	storage := &db.DB{Bun: bunDB}
	sessions := session.NewManager(session.NewMemoryStore(time.Hour), config.SessionConfig{
		Secret:     "test-secret",
		CookieName: "calendar_session",
		TTL:        time.Hour,
	})
	eventService := calendar.NewEventService(storage, kafka.Noop{}, nil)
	identityService := identity.NewService(storage, sessions)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		identity_api.NewHandler(identityService, nil).RegisterRoutes(r)
		calendar_api.NewHandler(eventService, sessions, nil).RegisterRoutes(r)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		bunDB.Close()
	})
	return srv
}

// newClient returns an HTTP client that carries the session cookie
// between requests, as a browser would.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func login(t *testing.T, client *http.Client, baseURL string, userID int64) {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/login", map[string]int64{"user_id": userID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestGetUsers(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/api/users")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]interface{}
	decode(t, resp, &users)
	require.Len(t, users, 4)
	assert.Equal(t, "Family Member A", users[0]["name"])
	assert.Equal(t, "#4A90D9", users[0]["color"])
}

func TestLoginValidation(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]int64{"user_id": 99})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The failed attempts never established a session.
	resp, err := client.Get(srv.URL + "/api/current-user")
	require.NoError(t, err)
	var current map[string]interface{}
	decode(t, resp, &current)
	assert.Nil(t, current["user"])
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]int64{"user_id": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginBody struct {
		Message string `json:"message"`
		User    struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	decode(t, resp, &loginBody)
	assert.Equal(t, "Logged in successfully", loginBody.Message)
	assert.Equal(t, int64(2), loginBody.User.ID)

	resp, err := client.Get(srv.URL + "/api/current-user")
	require.NoError(t, err)
	var current struct {
		User *struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decode(t, resp, &current)
	require.NotNil(t, current.User)
	assert.Equal(t, int64(2), current.User.ID)

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/api/current-user")
	require.NoError(t, err)
	current.User = nil
	decode(t, resp, &current)
	assert.Nil(t, current.User)
}

func TestEventLifecycle(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)
	login(t, client, srv.URL, 1)

	// Create.
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/events", map[string]interface{}{
		"title":      "Dentist",
		"date":       "2024-03-05",
		"start_time": "09:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		UserID    int64  `json:"user_id"`
		UserName  string `json:"user_name"`
		UserColor string `json:"user_color"`
		CreatedAt string `json:"created_at"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "Dentist", created.Title)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "Family Member A", created.UserName)
	assert.NotEmpty(t, created.CreatedAt)

	// The created id is usable immediately.
	resp, err := client.Get(fmt.Sprintf("%s/api/events/%d", srv.URL, created.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Month filtering includes March, not April.
	resp, err = client.Get(srv.URL + "/api/events?year=2024&month=3")
	require.NoError(t, err)
	var march []map[string]interface{}
	decode(t, resp, &march)
	require.Len(t, march, 1)
	assert.Equal(t, "Dentist", march[0]["title"])

	resp, err = client.Get(srv.URL + "/api/events?year=2024&month=4")
	require.NoError(t, err)
	var april []map[string]interface{}
	decode(t, resp, &april)
	assert.Empty(t, april)

	// Full replace, reassigning the owner.
	resp = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/events/%d", srv.URL, created.ID), map[string]interface{}{
		"title":   "Dentist (moved)",
		"date":    "2024-03-06",
		"user_id": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		Title     string  `json:"title"`
		Date      string  `json:"date"`
		StartTime *string `json:"start_time"`
		UserID    int64   `json:"user_id"`
		UserName  string  `json:"user_name"`
	}
	decode(t, resp, &updated)
	assert.Equal(t, "Dentist (moved)", updated.Title)
	assert.Equal(t, "2024-03-06", updated.Date)
	assert.Nil(t, updated.StartTime)
	assert.Equal(t, int64(2), updated.UserID)
	assert.Equal(t, "Family Member B", updated.UserName)

	// Delete, then the id is gone.
	resp = doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/api/events/%d", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ack map[string]string
	decode(t, resp, &ack)
	assert.Equal(t, "Event deleted successfully", ack["message"])

	resp, err = client.Get(fmt.Sprintf("%s/api/events/%d", srv.URL, created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestMutationsRequireSession(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/events", map[string]string{
		"title": "Dentist",
		"date":  "2024-03-05",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Please log in first", body["error"])

	resp = doJSON(t, client, http.MethodPut, srv.URL+"/api/events/1", map[string]string{
		"title": "Dentist",
		"date":  "2024-03-05",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/events/1", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateEventValidation(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)
	login(t, client, srv.URL, 1)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/events", map[string]string{
		"title": "   ",
		"date":  "2024-03-05",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/events", map[string]string{
		"title": "Dentist",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateAndDeleteUnknownEvent(t *testing.T) {
	srv := setupServer(t)
	client := newClient(t)
	login(t, client, srv.URL, 1)

	resp := doJSON(t, client, http.MethodPut, srv.URL+"/api/events/9999", map[string]string{
		"title": "Dentist",
		"date":  "2024-03-05",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/events/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Non-numeric ids can't name an event either.
	resp, err := client.Get(srv.URL + "/api/events/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSavedTitles(t *testing.T) {
	srv := setupServer(t)

	// Unauthenticated: empty list, not an error.
	anon := newClient(t)
	resp, err := anon.Get(srv.URL + "/api/saved-titles")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var titles struct {
		Titles []string `json:"titles"`
	}
	decode(t, resp, &titles)
	assert.Empty(t, titles.Titles)

	client := newClient(t)
	login(t, client, srv.URL, 1)
	for _, title := range []string{"Dentist", "Football", "Dentist"} {
		resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/events", map[string]string{
			"title": title,
			"date":  "2024-03-05",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err = client.Get(srv.URL + "/api/saved-titles")
	require.NoError(t, err)
	decode(t, resp, &titles)
	assert.Len(t, titles.Titles, 2)
	assert.Contains(t, titles.Titles, "Dentist")
	assert.Contains(t, titles.Titles, "Football")
}
