package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
	"github.com/comitanigiacomo/kanso-habits/internal/core/workers"
)

var today = domain.NewDate(2024, time.March, 15)

type testServer struct {
	router      *gin.Engine
	habits      *repository.InMemoryHabitRepository
	completions *repository.InMemoryCompletionRepository
	users       *repository.InMemoryUserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewInMemoryUserRepository()
	completions := repository.NewInMemoryCompletionRepository()
	habits := repository.NewInMemoryHabitRepository(completions)

	clock := domain.FixedClock(today)
	engine := streak.NewEngine(clock)
	tokens := services.NewTokenService("handler-test-secret", "kanso-test", time.Hour, users)

	worker := workers.NewStreakWorker(habits, completions, engine, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	t.Cleanup(func() {
		cancel()
		worker.Wait()
	})

	router, err := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(services.NewAuthService(users, tokens)),
		HabitHandler:      adapterHTTP.NewHabitHandler(services.NewHabitService(habits, completions, engine)),
		CompletionHandler: adapterHTTP.NewCompletionHandler(services.NewCompletionService(completions, habits, worker), clock),
		StatsHandler:      adapterHTTP.NewStatsHandler(services.NewStatsService(habits, completions, engine)),
		Tokens:            tokens,
		Logger:            zerolog.Nop(),
		StartTime:         time.Now(),
	})
	require.NoError(t, err)

	return &testServer{router: router, habits: habits, completions: completions, users: users}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login registers a fresh account and returns its bearer token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	w := s.do(http.MethodPost, "/api/auth/register",
		`{"name":"Tester","email":"`+email+`","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (s *testServer) createHabit(t *testing.T, token, body string) domain.HabitWithStats {
	t.Helper()

	w := s.do(http.MethodPost, "/api/habits", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var h domain.HabitWithStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	return h
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
