// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/db"
	"github.com/danielhkuo/rankpick/middleware"
	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/tally"
	"github.com/google/uuid"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// SubmitVote handles POST /polls/{id}/votes
// A second submission with the same voter key replaces the first
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voterHash, err := auth.HashVoterKey(pollID, req.VoterKey, h.cfg.AdminKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voterKey is required")
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nickname is required")
		return
	}
	if utf8.RuneCountInString(nickname) > models.MaxNicknameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nickname must be at most 50 characters")
		return
	}

	if len(req.Rankings) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rankings are required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	poll, err := loadPoll(tx, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if poll.Phase != models.PhaseVoting {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is not accepting votes")
		return
	}

	candidates, err := loadCandidates(tx, pollID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rankings := cleanRankings(req.Rankings, tally.NewCandidateSet(candidateIDs(candidates)))
	if len(rankings) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No valid candidates in rankings")
		return
	}

	// Replace any earlier ballot from this voter; rankings cascade
	res, err := tx.Exec(`DELETE FROM ballot WHERE poll_id = $1 AND voter_hash = $2`, pollID, voterHash)
	if err != nil {
		slog.Error("failed to delete previous ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}
	replaced, _ := res.RowsAffected()

	voteID := uuid.NewString()
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)

	_, err = tx.Exec(`
		INSERT INTO ballot (id, poll_id, voter_hash, nickname, submitted_at, ip_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, voterHash, nickname, nowMillis(), ipHash)
	if db.IsUniqueViolation(err) {
		// A concurrent submission with the same key won the race
		middleware.ErrorResponse(w, http.StatusConflict, "Vote already being submitted, please retry")
		return
	}
	if err != nil {
		slog.Error("failed to insert ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	for i, candidateID := range rankings {
		_, err = tx.Exec(`
			INSERT INTO ballot_ranking (ballot_id, rank_position, candidate_id)
			VALUES ($1, $2, $3)
		`, voteID, i, candidateID)
		if err != nil {
			slog.Error("failed to insert ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save rankings")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	// Link device to poll as voter (if X-Device-UUID header present)
	linkRequestDevice(h.db, r, pollID, models.RoleVoter)

	slog.Info("vote submitted", "poll_id", pollID, "vote_id", voteID, "ranked", len(rankings), "is_update", replaced > 0)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		VoteID:   voteID,
		Nickname: nickname,
		Rankings: rankings,
	})
}
