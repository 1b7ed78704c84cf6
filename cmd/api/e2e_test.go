package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habits/internal/config"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
	"github.com/comitanigiacomo/kanso-habits/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupStores(t *testing.T, storage string) *stores {
	cfg := &config.Config{
		Storage:    storage,
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "kanso_user"),
		DBPassword: envOr("DB_PASSWORD", "secret"),
		DBName:     envOr("DB_NAME", "kanso_db"),
	}

	st, err := openStores(cfg, zerolog.Nop())
	if err != nil {
		t.Skipf("Skipping end-to-end test: database connection failed: %v", err)
	}

	if st.db != nil {
		t.Cleanup(func() { st.db.Close() })
		_, err := st.db.Exec("TRUNCATE TABLE habit_completions, habits, users CASCADE")
		require.NoError(t, err, "Failed to truncate tables")
	}
	return st
}

func buildTestRouter(t *testing.T, st *stores, clock domain.Clock) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := streak.NewEngine(clock)
	tokens := services.NewTokenService("e2e-secret", "kanso-e2e", time.Hour, st.users)

	worker := workers.NewStreakWorker(st.habits, st.completions, engine, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	t.Cleanup(func() {
		cancel()
		worker.Wait()
	})

	router, err := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(services.NewAuthService(st.users, tokens)),
		HabitHandler:      adapterHTTP.NewHabitHandler(services.NewHabitService(st.habits, st.completions, engine)),
		CompletionHandler: adapterHTTP.NewCompletionHandler(services.NewCompletionService(st.completions, st.habits, worker), clock),
		StatsHandler:      adapterHTTP.NewStatsHandler(services.NewStatsService(st.habits, st.completions, engine)),
		Tokens:            tokens,
		Logger:            zerolog.Nop(),
		DB:                st.db,
		StartTime:         time.Now(),
	})
	require.NoError(t, err)
	return router
}

func call(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func runHabitLifecycle(t *testing.T, router *gin.Engine) {
	var token, habitID string

	t.Run("1. Register and Login", func(t *testing.T) {
		w := call(router, http.MethodPost, "/api/auth/register",
			`{"name":"E2E","email":"e2e@kanso.app","password":"password123"}`, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = call(router, http.MethodPost, "/api/auth/login", `{"email":"e2e@kanso.app","password":"password123"}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		token = resp.AccessToken
	})

	t.Run("2. Create Habit", func(t *testing.T) {
		w := call(router, http.MethodPost, "/api/habits", `{"name":"Morning Run","target_days":4}`, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var h domain.HabitWithStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
		habitID = h.ID
	})

	t.Run("3. Complete three days in a row", func(t *testing.T) {
		require.NotEmpty(t, habitID, "Create step failed")

		for _, d := range []string{"2024-03-13", "2024-03-14", "2024-03-15"} {
			w := call(router, http.MethodPost, "/api/habits/"+habitID+"/complete", `{"completion_date":"`+d+`"}`, token)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		w := call(router, http.MethodPost, "/api/habits/"+habitID+"/complete", `{"completion_date":"2024-03-15"}`, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("4. Verify Streaks", func(t *testing.T) {
		w := call(router, http.MethodGet, "/api/habits", "", token)
		require.Equal(t, http.StatusOK, w.Code)

		var list []domain.HabitWithStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, 3, list[0].CurrentStreak)
		assert.Equal(t, 3, list[0].LongestStreak)
	})

	t.Run("5. Overview", func(t *testing.T) {
		w := call(router, http.MethodGet, "/api/stats/overview", "", token)
		require.Equal(t, http.StatusOK, w.Code)

		var o domain.StatsOverview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
		assert.Equal(t, 1, o.TotalHabits)
		assert.Equal(t, 3, o.TotalCompletions)
		assert.Equal(t, 1, o.TodayCompletions)
		assert.Equal(t, 75.0, o.AvgCompletionRate)
		assert.Len(t, o.ThisWeek, 7)
	})

	t.Run("6. Delete Habit", func(t *testing.T) {
		w := call(router, http.MethodDelete, "/api/habits/"+habitID, "", token)
		assert.Equal(t, http.StatusOK, w.Code)

		w = call(router, http.MethodGet, "/api/habits", "", token)
		assert.NotContains(t, w.Body.String(), habitID)
	})

	t.Run("7. Auth Error", func(t *testing.T) {
		w := call(router, http.MethodGet, "/api/habits", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEndToEnd_HabitLifecycle_Memory(t *testing.T) {
	st := setupStores(t, config.StorageMemory)
	runHabitLifecycle(t, buildTestRouter(t, st, domain.FixedClock(domain.NewDate(2024, time.March, 15))))
}

func TestEndToEnd_HabitLifecycle_Postgres(t *testing.T) {
	st := setupStores(t, config.StoragePostgres)
	runHabitLifecycle(t, buildTestRouter(t, st, domain.FixedClock(domain.NewDate(2024, time.March, 15))))
}
