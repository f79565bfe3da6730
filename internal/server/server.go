// Package server exposes the scheduling service as a JSON REST API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/srs"
	"github.com/kioku-app/kioku/internal/statistics"
)

// defaultUserID serves single-user deployments. Authentication is an outer
// concern; a gateway that knows the user sets the X-User-ID header.
const defaultUserID = "default"

// Server holds the handlers of the REST API.
type Server struct {
	cards      card.Repository
	reviews    *review.Service
	activities *activity.Service
	stats      *statistics.Service
	logger     *logrus.Logger
	clock      func() time.Time
	mux        *http.ServeMux
}

// New creates the server. A nil clock defaults to UTC wall time.
func New(
	cards card.Repository,
	reviews *review.Service,
	activities *activity.Service,
	stats *statistics.Service,
	logger *logrus.Logger,
	clock func() time.Time,
) *Server {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	s := &Server{
		cards:      cards,
		reviews:    reviews,
		activities: activities,
		stats:      stats,
		logger:     logger,
		clock:      clock,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/reviews", s.handleCreateReview)
	s.mux.HandleFunc("GET /api/v1/cards/due", s.handleListDueCards)
	s.mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	s.mux.HandleFunc("POST /api/v1/activity", s.handleRecordActivity)
	s.mux.HandleFunc("POST /api/v1/progress/reset", s.handleResetProgress)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

type reviewRequest struct {
	CardID int64 `json:"card_id"`
	// Quality outside [0,5] is accepted and clamped, matching the clients
	// this API grew up with. See the reviewResponse for the applied value.
	Quality int `json:"quality"`
}

type reviewResponse struct {
	CardID          int64     `json:"card_id"`
	Quality         int       `json:"quality"`
	IntervalDays    int       `json:"interval_days"`
	RepetitionCount int       `json:"repetition_count"`
	EasinessFactor  float64   `json:"easiness_factor"`
	DueAt           time.Time `json:"due_at"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quality := srs.Quality(req.Quality).Clamp()
	c, err := s.reviews.Review(r.Context(), userID(r), req.CardID, quality)
	if errors.Is(err, card.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if errors.Is(err, card.ErrVersionConflict) {
		s.writeError(w, http.StatusConflict, "card was reviewed concurrently, retry")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, reviewResponse{
		CardID:          c.ID,
		Quality:         int(quality),
		IntervalDays:    c.IntervalDays,
		RepetitionCount: c.RepetitionCount,
		EasinessFactor:  c.EasinessFactor,
		DueAt:           c.DueAt,
	})
}

type dueCardResponse struct {
	ID    int64     `json:"id"`
	Front string    `json:"front"`
	Back  string    `json:"back"`
	DueAt time.Time `json:"due_at"`
}

func (s *Server) handleListDueCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cards.FindAllByUser(r.Context(), userID(r))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	byID := make(map[string]card.Card, len(cards))
	items := make([]srs.DueItem, 0, len(cards))
	for _, c := range cards {
		key := strconv.FormatInt(c.ID, 10)
		byID[key] = c
		items = append(items, srs.DueItem{ID: key, State: c.ReviewState()})
	}

	due := make([]dueCardResponse, 0)
	for _, id := range srs.SelectDue(items, s.clock()) {
		c := byID[id]
		due = append(due, dueCardResponse{ID: c.ID, Front: c.Front, Back: c.Back, DueAt: c.DueAt})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"cards": due})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.stats.Summarize(r.Context(), userID(r))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	forecast := make([]map[string]int, 0, len(summary.Forecast))
	for _, bucket := range summary.Forecast {
		forecast = append(forecast, map[string]int{"days": bucket.Days, "count": bucket.Count})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"total_cards":    summary.TotalCards,
		"due_count":      summary.DueCount,
		"due_card_ids":   summary.DueCardIDs,
		"forecast":       forecast,
		"retention_rate": summary.RetentionRate,
		"learned_count":  summary.LearnedCount,
		"streak_count":   summary.StreakCount,
	})
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	state, err := s.activities.RecordActivity(r.Context(), userID(r))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"streak_count":   state.StreakCount,
		"last_active_at": state.LastActiveAt,
	})
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.reviews.ResetProgress(r.Context(), userID(r)); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}
