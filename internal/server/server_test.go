package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/config"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/server"
	"github.com/kioku-app/kioku/internal/statistics"
	"github.com/kioku-app/kioku/internal/testutil"
)

func newTestServer(t *testing.T, now time.Time) (*server.Server, card.Repository) {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	clock := func() time.Time { return now }

	cards := card.NewDBRepository(db)
	logs := review.NewDBLogRepository(db)
	activities := activity.NewDBRepository(db)

	reviews := review.NewService(cards, logs, clock)
	activitySvc := activity.NewService(activities, clock)
	stats := statistics.NewService(cards, logs, activities, config.DashboardConfig{
		RetentionWindow:      100,
		LearnedThresholdDays: 21,
		ForecastDays:         7,
	}, clock)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return server.New(cards, reviews, activitySvc, stats, logger, clock), cards
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestServer_CreateReview(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("perfect recall schedules the card", func(t *testing.T) {
		srv, cards := newTestServer(t, now)
		c := card.NewCard("default", "犬", "dog", now.AddDate(0, 0, -1))
		require.NoError(t, cards.Create(context.Background(), &c))

		rec := postJSON(t, srv, "/api/v1/reviews", map[string]any{"card_id": c.ID, "quality": 5})
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			CardID          int64   `json:"card_id"`
			Quality         int     `json:"quality"`
			IntervalDays    int     `json:"interval_days"`
			RepetitionCount int     `json:"repetition_count"`
			EasinessFactor  float64 `json:"easiness_factor"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, c.ID, got.CardID)
		assert.Equal(t, 5, got.Quality)
		assert.Equal(t, 1, got.IntervalDays)
		assert.Equal(t, 1, got.RepetitionCount)
		assert.InDelta(t, 2.6, got.EasinessFactor, 1e-9)
	})

	t.Run("out of range quality is clamped", func(t *testing.T) {
		srv, cards := newTestServer(t, now)
		c := card.NewCard("default", "猫", "cat", now.AddDate(0, 0, -1))
		require.NoError(t, cards.Create(context.Background(), &c))

		rec := postJSON(t, srv, "/api/v1/reviews", map[string]any{"card_id": c.ID, "quality": 11})
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			Quality int `json:"quality"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 5, got.Quality)
	})

	t.Run("unknown card returns not found", func(t *testing.T) {
		srv, _ := newTestServer(t, now)
		rec := postJSON(t, srv, "/api/v1/reviews", map[string]any{"card_id": 999, "quality": 4})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body returns bad request", func(t *testing.T) {
		srv, _ := newTestServer(t, now)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_ListDueCards(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv, cards := newTestServer(t, now)
	ctx := context.Background()

	overdue := card.NewCard("default", "水", "water", now.Add(-2*time.Hour))
	older := card.NewCard("default", "火", "fire", now.AddDate(0, 0, -3))
	future := card.NewCard("default", "土", "earth", now.Add(time.Hour))
	other := card.NewCard("bob", "風", "wind", now.AddDate(0, 0, -3))
	for _, c := range []*card.Card{&overdue, &older, &future, &other} {
		require.NoError(t, cards.Create(ctx, c))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/due", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Cards []struct {
			ID    int64  `json:"id"`
			Front string `json:"front"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Cards, 2)
	assert.Equal(t, older.ID, got.Cards[0].ID)
	assert.Equal(t, overdue.ID, got.Cards[1].ID)
}

func TestServer_Dashboard(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv, cards := newTestServer(t, now)
	ctx := context.Background()

	due := card.NewCard("default", "読む", "to read", now.AddDate(0, 0, -1))
	future := card.NewCard("default", "書く", "to write", now.Add(time.Hour))
	require.NoError(t, cards.Create(ctx, &due))
	require.NoError(t, cards.Create(ctx, &future))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		TotalCards    int     `json:"total_cards"`
		DueCount      int     `json:"due_count"`
		DueCardIDs    []int64 `json:"due_card_ids"`
		RetentionRate float64 `json:"retention_rate"`
		StreakCount   int     `json:"streak_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.TotalCards)
	assert.Equal(t, 1, got.DueCount)
	assert.Equal(t, []int64{due.ID}, got.DueCardIDs)
	assert.Equal(t, 0.0, got.RetentionRate)
	assert.Equal(t, 0, got.StreakCount)
}

func TestServer_RecordActivity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(t, now)

	rec := postJSON(t, srv, "/api/v1/activity", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		StreakCount int `json:"streak_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0, got.StreakCount)
}

func TestServer_ResetProgress(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv, cards := newTestServer(t, now)
	ctx := context.Background()

	c := card.NewCard("default", "行く", "to go", now.AddDate(0, 0, -1))
	require.NoError(t, cards.Create(ctx, &c))
	rec := postJSON(t, srv, "/api/v1/reviews", map[string]any{"card_id": c.ID, "quality": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress/reset", nil)
	resetRec := httptest.NewRecorder()
	srv.ServeHTTP(resetRec, req)
	require.Equal(t, http.StatusNoContent, resetRec.Code)

	got, err := cards.FindByID(ctx, "default", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RepetitionCount)
	assert.InDelta(t, 2.5, got.EasinessFactor, 1e-9)
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, time.Now().UTC())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_UserHeaderScopesRequests(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv, cards := newTestServer(t, now)
	ctx := context.Background()

	mine := card.NewCard("alice", "海", "sea", now.AddDate(0, 0, -1))
	require.NoError(t, cards.Create(ctx, &mine))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/due", nil)
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"id":%d`, mine.ID))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cards/due", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), mine.Front)
}

func TestCORSMiddleware(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := server.CORSMiddleware(server.LoggingMiddleware(inner, logger), []string{"http://localhost:3000"})

	t.Run("allowed origin is echoed back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/reviews", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
