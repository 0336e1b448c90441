// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/middleware"
	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/moderation"
	"github.com/danielhkuo/rankpick/tally"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title must be at most 200 characters")
		return
	}
	if !models.ValidPollType(req.PollType) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pollType must be one of: movie, other")
		return
	}

	method := tally.DefaultMethod
	if req.Method != "" {
		m, err := tally.ParseMethod(req.Method)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "method must be one of: borda, condorcet, rcv")
			return
		}
		method = m
	}

	if moderation.IsInappropriate(title) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Poll title contains inappropriate content")
		return
	}

	// Generate poll ID
	pollID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate poll ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Count this creation against today's limit; rolling back undoes the increment
	var count int
	err = tx.QueryRow(`
		INSERT INTO daily_counter (day, poll_count)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET poll_count = daily_counter.poll_count + 1
		RETURNING poll_count
	`, dayKey(time.Now())).Scan(&count)
	if err != nil {
		slog.Error("failed to increment daily counter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if count > h.cfg.DailyPollLimit {
		slog.Warn("daily poll limit reached", "limit", h.cfg.DailyPollLimit)
		middleware.JSONResponse(w, http.StatusTooManyRequests, models.DailyLimitResponse{
			Error:        "Daily poll creation limit reached. Please try again tomorrow.",
			DailyLimit:   h.cfg.DailyPollLimit,
			CurrentCount: count - 1,
		})
		return
	}

	_, err = tx.Exec(`
		INSERT INTO poll (id, title, poll_type, method, phase, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pollID, title, req.PollType, string(method), models.PhaseNominating, nowMillis())
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	// Link device to poll as admin (if X-Device-UUID header present)
	linkRequestDevice(h.db, r, pollID, models.RoleAdmin)

	slog.Info("poll created", "poll_id", pollID, "poll_type", req.PollType, "method", method, "daily_count", count)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:         pollID,
		AdminToken:     auth.GenerateAdminToken(pollID, h.cfg.AdminKeySalt),
		Title:          title,
		PollType:       req.PollType,
		Method:         string(method),
		Phase:          models.PhaseNominating,
		DailyPollCount: count,
	})
}

// GetStats handles GET /polls/stats
func (h *PollHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	today := dayKey(time.Now())

	var count int
	err := h.db.QueryRow(`SELECT poll_count FROM daily_counter WHERE day = $1`, today).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query daily counter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatsResponse{
		DailyPollCount: count,
		DailyLimit:     h.cfg.DailyPollLimit,
		Date:           today,
	})
}

// GetPoll handles GET /polls/{id}
// Votes are included only once the poll is closed; the admin token only for admins
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	poll, err := loadPoll(h.db, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidates, err := loadCandidates(h.db, pollID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votes, err := loadVotes(h.db, pollID)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	isAdmin := auth.IsAdmin(r, pollID, h.cfg.AdminKeySalt)

	view := models.PollView{
		PollID:     poll.ID,
		Title:      poll.Title,
		PollType:   poll.PollType,
		Method:     poll.Method,
		Phase:      poll.Phase,
		CreatedAt:  poll.CreatedAt,
		Candidates: candidates,
		VoteCount:  len(votes),
		IsAdmin:    isAdmin,
	}
	if poll.Phase == models.PhaseClosed {
		view.Votes = votes
	}
	if isAdmin {
		view.AdminToken = auth.AdminTokenFromRequest(r)
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// UpdatePhase handles PUT /polls/{id}/phase (admin only)
func (h *PollHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.UpdatePhaseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.ValidPhase(req.Phase) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid phase")
		return
	}

	current, err := loadPoll(h.db, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Token may arrive in the header, query string, or body
	token := auth.AdminTokenFromRequest(r)
	if token == "" {
		token = req.AdminToken
	}
	if err := auth.ValidateAdminToken(pollID, token, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid admin token")
		return
	}

	_, err = h.db.Exec(`UPDATE poll SET phase = $1 WHERE id = $2`, req.Phase, pollID)
	if err != nil {
		slog.Error("failed to update phase", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update phase")
		return
	}

	slog.Info("poll phase changed", "poll_id", pollID, "from", current.Phase, "to", req.Phase)

	middleware.JSONResponse(w, http.StatusOK, models.UpdatePhaseResponse{Phase: req.Phase})
}
