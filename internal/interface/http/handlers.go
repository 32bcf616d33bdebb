package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/application/command"
	"github.com/mmt697/EcoTracker-Project/internal/application/query"
	"github.com/mmt697/EcoTracker-Project/internal/application/session"
	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
	"github.com/mmt697/EcoTracker-Project/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════
// HEALTH & ROOT
// ══════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "ecotracker-api",
		"version": "v1",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"active_sessions": s.deps.Sessions.Count(),
		"checked_at":      time.Now().UTC(),
	})
}

// ══════════════════════════════════════════════════════════════════════════
// AUTH
// ══════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.Register.Handle(r.Context(), command.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrUserAlreadyExists):
			writeJSONError(w, http.StatusConflict, "email_taken", "Email already registered")
		case errors.Is(err, shared.ErrWeakPassword):
			writeJSONError(w, http.StatusBadRequest, "weak_password", "Password does not meet requirements")
		default:
			writeJSONError(w, http.StatusBadRequest, "invalid_registration", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.Authenticate.Handle(r.Context(), command.AuthenticateCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_login", err.Error())
		return
	}

	sess, err := s.deps.Sessions.Begin(r.Context(), result.UserID, result.Name)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "session_failed", "Failed to start session")
		return
	}

	s.logger.Info("login", logger.UserID(result.UserID))

	writeJSON(w, http.StatusOK, loginResponse{
		Token:  sess.Token(),
		UserID: sess.UserID(),
		Name:   sess.Name(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing_token", "Authorization token required")
		return
	}

	if err := s.deps.Sessions.End(token); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_session", "Unknown session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// requireSession resolves the request's session or writes a 401.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing_token", "Authorization token required")
		return nil, false
	}

	sess, err := s.deps.Sessions.Get(token)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_session", "Unknown session")
		return nil, false
	}

	return sess, true
}

// ══════════════════════════════════════════════════════════════════════════
// ACTIVITY TRACKING
// ══════════════════════════════════════════════════════════════════════════

type logUsageRequest struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"` // YYYY-MM-DD
}

func (s *Server) handleLogUsage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req logUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	result, err := s.deps.LogUsage.Handle(r.Context(), command.LogUsageCommand{
		UserID: sess.UserID(),
		Kind:   activity.UsageKind(req.Kind),
		Amount: req.Amount,
		Date:   date,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_usage", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.deps.TipsCatalog.All())
}

func (s *Server) handleTryTip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	result, err := s.deps.TryTip.Handle(r.Context(), command.TryTipCommand{
		UserID: sess.UserID(),
		TipID:  r.PathValue("id"),
	})
	if err != nil {
		if errors.Is(err, shared.ErrTipNotFound) {
			writeJSONError(w, http.StatusNotFound, "tip_not_found", "Unknown tip")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_tip", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type saveSettingsRequest struct {
	WaterGoal  float64 `json:"waterGoal"`
	EnergyGoal float64 `json:"energyGoal"`
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req saveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.SaveSettings.Handle(r.Context(), command.SaveSettingsCommand{
		UserID:     sess.UserID(),
		WaterGoal:  req.WaterGoal,
		EnergyGoal: req.EnergyGoal,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type recordVisitRequest struct {
	Page string `json:"page"`
}

func (s *Server) handleRecordVisit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req recordVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	err := s.deps.RecordVisit.Handle(r.Context(), command.RecordVisitCommand{
		UserID: sess.UserID(),
		Page:   req.Page,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_visit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

// ══════════════════════════════════════════════════════════════════════════
// ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetAchievements(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	handler := query.NewGetAchievementsHandler(s.deps.Achievements, sess.Flow().Store())
	views, err := handler.Handle(r.Context(), query.GetAchievementsQuery{
		UserID:       sess.UserID(),
		Category:     achievement.Category(r.URL.Query().Get("category")),
		OnlyUnlocked: r.URL.Query().Get("unlocked") == "true",
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// nextAchievementView is the serializable slice of the next locked
// achievement. The predicate never leaves the process.
type nextAchievementView struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Hint   string `json:"hint"`
	Points int    `json:"points"`
}

type statisticsResponse struct {
	achievement.Statistics
	NextAchievement *nextAchievementView `json:"nextAchievement,omitempty"`
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	handler := query.NewGetStatisticsHandler(sess.Flow().Store(), s.deps.StatsCache, nil)
	stats, err := handler.Handle(r.Context(), query.GetStatisticsQuery{
		UserID:      sess.UserID(),
		BypassCache: r.URL.Query().Get("fresh") == "true",
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}

	resp := statisticsResponse{Statistics: stats}
	if stats.Next != nil {
		resp.NextAchievement = &nextAchievementView{
			ID:     stats.Next.ID,
			Title:  stats.Next.Title,
			Hint:   stats.Next.Hint,
			Points: stats.Next.Points,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleEvaluate runs an immediate evaluation pass, bypassing the
// debounce but not the guard.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	result, err := sess.Flow().Execute(r.Context(), "manual")
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrEvaluationRunning):
			writeJSONError(w, http.StatusConflict, "evaluation_running", "Evaluation already in progress")
		case errors.Is(err, shared.ErrCooldownActive):
			writeJSONError(w, http.StatusTooManyRequests, "cooldown_active", "Evaluation cooldown active")
		default:
			writeJSONError(w, http.StatusInternalServerError, "evaluation_failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
