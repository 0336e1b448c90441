// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/db"
	"github.com/danielhkuo/rankpick/enrich"
	"github.com/danielhkuo/rankpick/middleware"
	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/moderation"
)

type CandidateHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	describer enrich.Describer
}

// NewCandidateHandler creates the handler. describer may be nil, which
// disables description enrichment.
func NewCandidateHandler(db *sql.DB, cfg cliparse.Config, describer enrich.Describer) *CandidateHandler {
	return &CandidateHandler{db: db, cfg: cfg, describer: describer}
}

// nominationError is a client-facing rejection of a nomination
type nominationError struct {
	status  int
	message string
}

func (e *nominationError) Error() string { return e.message }

// checkNomination verifies the poll accepts another candidate with titleKey
func (h *CandidateHandler) checkNomination(q queryer, pollID, titleKey string) (models.Poll, error) {
	poll, err := loadPoll(q, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return poll, &nominationError{http.StatusNotFound, "Poll not found"}
	}
	if err != nil {
		return poll, fmt.Errorf("query poll: %w", err)
	}

	if poll.Phase != models.PhaseNominating {
		return poll, &nominationError{http.StatusConflict, "Poll is not accepting nominations"}
	}

	var existing string
	err = q.QueryRow(`
		SELECT title FROM candidate WHERE poll_id = $1 AND title_key = $2
	`, pollID, titleKey).Scan(&existing)
	if err == nil {
		return poll, &nominationError{http.StatusBadRequest, fmt.Sprintf("%q has already been added", existing)}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return poll, fmt.Errorf("query duplicate: %w", err)
	}

	var count int
	if err := q.QueryRow(`SELECT COUNT(*) FROM candidate WHERE poll_id = $1`, pollID).Scan(&count); err != nil {
		return poll, fmt.Errorf("count candidates: %w", err)
	}
	if count >= h.cfg.MaxCandidates {
		return poll, &nominationError{http.StatusBadRequest, fmt.Sprintf("Poll already has the maximum of %d entries", h.cfg.MaxCandidates)}
	}

	return poll, nil
}

func writeNominationError(w http.ResponseWriter, err error) {
	var nerr *nominationError
	if errors.As(err, &nerr) {
		middleware.ErrorResponse(w, nerr.status, nerr.message)
		return
	}
	slog.Error("failed to check nomination", "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}

// AddCandidate handles POST /polls/{id}/candidates
func (h *CandidateHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	title := strings.TrimSpace(req.Title)
	addedBy := strings.TrimSpace(req.AddedBy)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title must be at most 200 characters")
		return
	}
	if addedBy == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "addedBy is required")
		return
	}
	if utf8.RuneCountInString(addedBy) > models.MaxNicknameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "addedBy must be at most 50 characters")
		return
	}

	titleKey := moderation.TitleKey(title)

	// Reject early, before any enrichment call
	poll, err := h.checkNomination(h.db, pollID, titleKey)
	if err != nil {
		writeNominationError(w, err)
		return
	}

	candidateID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate candidate ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	candidate := models.Candidate{
		ID:      candidateID,
		PollID:  pollID,
		Title:   title,
		AddedBy: addedBy,
		AddedAt: nowMillis(),
	}
	if poll.PollType == models.PollTypeMovie {
		h.describe(r, &candidate)
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Re-check inside the transaction; the poll may have changed during enrichment
	if _, err := h.checkNomination(tx, pollID, titleKey); err != nil {
		writeNominationError(w, err)
		return
	}

	var description sql.NullString
	if candidate.Description != "" {
		description = sql.NullString{String: candidate.Description, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO candidate (id, poll_id, title, title_key, added_by, added_at,
		                       description, description_fetched_at, description_attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, candidate.ID, pollID, candidate.Title, titleKey, candidate.AddedBy, candidate.AddedAt,
		description, candidate.DescriptionFetchedAt, candidate.DescriptionAttemptedAt)
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("%q has already been added", title))
		return
	}
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	slog.Info("candidate added", "poll_id", pollID, "candidate_id", candidate.ID,
		"described", candidate.Description != "")

	middleware.JSONResponse(w, http.StatusCreated, candidate)
}

// describe fills in the candidate description. Failures are recorded on the
// candidate and logged; they never fail the request.
func (h *CandidateHandler) describe(r *http.Request, c *models.Candidate) {
	if h.describer == nil {
		return
	}

	desc, err := h.describer.Describe(r.Context(), c.Title)
	at := c.AddedAt
	if err != nil {
		if errors.Is(err, enrich.ErrUnknownTitle) {
			slog.Info("candidate not recognized by description service", "title", c.Title)
		} else {
			slog.Warn("failed to fetch candidate description", "title", c.Title, "error", err)
		}
		c.DescriptionAttemptedAt = &at
		return
	}

	c.Description = desc
	c.DescriptionFetchedAt = &at
}

// RemoveCandidate handles DELETE /polls/{id}/candidates/{candidateId} (admin only)
func (h *CandidateHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	candidateID := r.PathValue("candidateId")
	if pollID == "" || candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id and candidate id are required")
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

	if !auth.IsAdmin(r, pollID, h.cfg.AdminKeySalt) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid admin token")
		return
	}

	if poll.Phase != models.PhaseNominating {
		middleware.ErrorResponse(w, http.StatusConflict, "Can only remove candidates during nomination phase")
		return
	}

	res, err := h.db.Exec(`DELETE FROM candidate WHERE id = $1 AND poll_id = $2`, candidateID, pollID)
	if err != nil {
		slog.Error("failed to delete candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove candidate")
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	slog.Info("candidate removed", "poll_id", pollID, "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteCandidateResponse{Deleted: true})
}
