// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/middleware"
	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/tally"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /polls/{id}/results
// Returns 403 until the poll is closed unless the caller is admin.
// Results are computed from the stored ballots on every call; the optional
// method query parameter recomputes under another method without saving it.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
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

	method := tally.Method(poll.Method)
	if override := r.URL.Query().Get("method"); override != "" {
		m, err := tally.ParseMethod(override)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "method must be one of: borda, condorcet, rcv")
			return
		}
		method = m
	}

	if poll.Phase != models.PhaseClosed && !auth.IsAdmin(r, pollID, h.cfg.AdminKeySalt) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are sealed until the poll is closed")
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

	result := tally.Compute(method, candidateIDs(candidates), ballotsOf(votes))

	slog.Info("results computed",
		"poll_id", pollID,
		"method", result.Kind(),
		"winner", result.WinnerID(),
		"ballots", len(votes),
	)

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		PollID: pollID,
		Method: result.Kind(),
		Result: result,
	})
}
