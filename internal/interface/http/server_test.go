package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmt697/EcoTracker-Project/internal/application/command"
	"github.com/mmt697/EcoTracker-Project/internal/application/saga"
	"github.com/mmt697/EcoTracker-Project/internal/application/session"
	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/tips"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/messaging"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/persistence/memory"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/service"
)

// newTestServer wires the full stack against in-memory storage, the same
// shape the entry point builds.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	accountRepo := memory.NewAccountRepository()
	activityRepo := memory.NewActivityRepository()
	unlockRepo := memory.NewUnlockRepository()

	tipsCatalog := tips.DefaultCatalog()
	achCatalog := achievement.DefaultCatalog()
	ids := service.NewUUIDGenerator()

	busCfg := messaging.DefaultConfig()
	busCfg.AsyncMode = false
	bus := messaging.NewEventBus(busCfg)
	t.Cleanup(func() { _ = bus.Close() })

	factory := func(userID string, sess *session.Session) *saga.UnlockFlow {
		store := achievement.NewStore(achCatalog)
		guard := achievement.NewGuard(time.Millisecond)
		engine := achievement.NewEngine(achCatalog, store, guard, nil)
		accessor := service.NewActivityAccessor(userID, activityRepo, tipsCatalog, sess)
		return saga.NewUnlockFlow(userID, store, guard, engine, nil, accessor,
			unlockRepo, bus, saga.Config{Debounce: time.Millisecond}, nil)
	}
	sessions := session.NewManager(factory, ids, nil)

	return NewServer(DefaultConfig(), Dependencies{
		Register:     command.NewRegisterHandler(accountRepo, ids, bus),
		Authenticate: command.NewAuthenticateHandler(accountRepo, bus),
		LogUsage:     command.NewLogUsageHandler(activityRepo, ids, bus),
		TryTip:       command.NewTryTipHandler(activityRepo, tipsCatalog, bus),
		SaveSettings: command.NewSaveSettingsHandler(activityRepo, bus),
		RecordVisit:  command.NewRecordVisitHandler(activityRepo, bus),
		Sessions:     sessions,
		TipsCatalog:  tipsCatalog,
		Achievements: achCatalog,
	})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func registerAndLogin(t *testing.T, s *Server) string {
	t.Helper()

	rec, _ := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Eco", "email": "eco@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "eco@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestServer_AuthFlow(t *testing.T) {
	s := newTestServer(t)

	// Duplicate registration conflicts.
	rec, _ := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "eco@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "eco@example.com", "password": "secret456",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email_taken", resp.Error.Code)

	// Weak password rejected.
	rec, resp = doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "other@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "weak_password", resp.Error.Code)

	// Wrong password on login.
	rec, resp = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "eco@example.com", "password": "wrong-one",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", resp.Error.Code)

	// Successful login and logout.
	rec, resp = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "eco@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := resp.Data.(map[string]interface{})["token"].(string)

	rec, _ = doJSON(t, s, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The token is dead after logout.
	rec, _ = doJSON(t, s, http.MethodPost, "/api/v1/usage", token, map[string]interface{}{
		"kind": "water", "amount": 100,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_RequiresSession(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/usage"},
		{http.MethodGet, "/api/v1/tips"},
		{http.MethodGet, "/api/v1/achievements"},
		{http.MethodGet, "/api/v1/achievements/stats"},
		{http.MethodPost, "/api/v1/achievements/evaluate"},
	} {
		rec, resp := doJSON(t, s, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Equal(t, "missing_token", resp.Error.Code, tc.path)
	}
}

func TestServer_LogUsageAndEvaluate(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec, _ := doJSON(t, s, http.MethodPost, "/api/v1/usage", token, map[string]interface{}{
		"kind": "water", "amount": 120, "date": "2026-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A malformed date is rejected.
	rec, resp := doJSON(t, s, http.MethodPost, "/api/v1/usage", token, map[string]interface{}{
		"kind": "water", "amount": 120, "date": "03/01/2026",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date", resp.Error.Code)

	// Manual evaluation unlocks first-login and first-water-log.
	time.Sleep(5 * time.Millisecond) // past the per-session cooldown
	rec, resp = doJSON(t, s, http.MethodPost, "/api/v1/achievements/evaluate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, resp = doJSON(t, s, http.MethodGet, "/api/v1/achievements?unlocked=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ids []string
	for _, v := range resp.Data.([]interface{}) {
		ids = append(ids, v.(map[string]interface{})["id"].(string))
	}
	assert.Contains(t, ids, "first-login")
	assert.Contains(t, ids, "first-water-log")
}

func TestServer_TipsEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/v1/tips", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data.([]interface{}), 10)

	rec, _ = doJSON(t, s, http.MethodPost, "/api/v1/tips/missing-tip/try", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tipID := tips.DefaultCatalog().All()[0].ID
	rec, _ = doJSON(t, s, http.MethodPost, "/api/v1/tips/"+tipID+"/try", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_SettingsAndStats(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec, _ := doJSON(t, s, http.MethodPut, "/api/v1/settings", token, map[string]interface{}{
		"waterGoal": 90, "energyGoal": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, s, http.MethodGet, "/api/v1/achievements/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(18), stats["total"])

	// With locked achievements left, the payload names the next one to
	// chase, without leaking anything beyond its public fields.
	next, ok := stats["nextAchievement"].(map[string]interface{})
	require.True(t, ok, "stats payload is missing nextAchievement")
	assert.NotEmpty(t, next["id"])
	assert.NotEmpty(t, next["hint"])
	assert.NotZero(t, next["points"])
}

func TestServer_LoginAloneUnlocksFirstLogin(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	// No manual evaluation pass: beginning the session must carry the
	// login trigger itself, because the authenticated event is published
	// before the session's flow exists.
	assert.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/achievements?unlocked=true", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}

		var resp JSONResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return false
		}
		list, ok := resp.Data.([]interface{})
		if !ok {
			return false
		}
		for _, v := range list {
			if v.(map[string]interface{})["id"] == "first-login" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_EvaluateCooldown(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	time.Sleep(5 * time.Millisecond)
	rec, _ := doJSON(t, s, http.MethodPost, "/api/v1/achievements/evaluate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// An immediate second pass hits the cooldown. The per-session
	// cooldown in this fixture is 1ms, so fire straight away.
	rec, resp := doJSON(t, s, http.MethodPost, "/api/v1/achievements/evaluate", token, nil)
	if rec.Code == http.StatusTooManyRequests {
		assert.Equal(t, "cooldown_active", resp.Error.Code)
	} else {
		// The clock may already have passed 1ms; then the pass is
		// simply admitted again.
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
