// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/tally"
	"github.com/danielhkuo/rankpick/testutil"
)

// TestFullVotingWorkflow walks one poll through every phase:
// create -> nominate -> vote -> close -> results
func TestFullVotingWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	describer := &fakeDescriber{desc: "A film."}
	pollHandler := NewPollHandler(db, cfg)
	candidateHandler := NewCandidateHandler(db, cfg, describer)
	votingHandler := NewVotingHandler(db, cfg)
	resultsHandler := NewResultsHandler(db, cfg)
	deviceHandler := NewDeviceHandler(db, cfg)

	adminDevice := map[string]string{"X-Device-UUID": testDeviceUUID}

	// Step 1: Create poll from a device
	w := httptest.NewRecorder()
	pollHandler.CreatePoll(w, newRequest("POST", "/polls", models.CreatePollRequest{
		Title:    "Movie Night",
		PollType: models.PollTypeMovie,
	}, nil, adminDevice))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreatePollResponse
	testutil.AssertJSON(t, w, &created)
	pollID := created.PollID
	admin := map[string]string{"X-Admin-Key": created.AdminToken}
	t.Logf("Created poll %s", pollID)

	// Step 2: Nominate
	ids := map[string]string{}
	for _, title := range []string{"Alien", "Brazil", "Casablanca"} {
		w := addCandidate(candidateHandler, pollID, models.AddCandidateRequest{Title: title, AddedBy: "Amy"})
		testutil.AssertStatus(t, w, http.StatusCreated)
		var c models.Candidate
		testutil.AssertJSON(t, w, &c)
		if c.Description != "A film." || c.DescriptionFetchedAt == nil {
			t.Errorf("Expected %s to be described, got %+v", title, c)
		}
		ids[title] = c.ID
	}
	a, b, c := ids["Alien"], ids["Brazil"], ids["Casablanca"]

	// Votes are refused while nominating
	w = submitVote(votingHandler, pollID, models.SubmitVoteRequest{
		VoterKey: "early", Nickname: "Early", Rankings: []string{a},
	}, nil)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 3: Open voting
	w = httptest.NewRecorder()
	pollHandler.UpdatePhase(w, newRequest("PUT", "/polls/"+pollID+"/phase",
		models.UpdatePhaseRequest{Phase: models.PhaseVoting}, map[string]string{"id": pollID}, admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Nominations are closed now
	w = addCandidate(candidateHandler, pollID, models.AddCandidateRequest{Title: "Dune", AddedBy: "Amy"})
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 4: Vote
	ballots := []struct {
		key, nickname string
		rankings      []string
	}{
		{"k1", "Amy", []string{a, b, c}},
		{"k2", "Ben", []string{a, b, c}},
		{"k3", "Cat", []string{b, c, a}},
		{"k4", "Dan", []string{b, c, a}},
		{"k5", "Eve", []string{c, b, a}},
	}
	for _, bl := range ballots {
		w := submitVote(votingHandler, pollID, models.SubmitVoteRequest{
			VoterKey: bl.key, Nickname: bl.nickname, Rankings: bl.rankings,
		}, nil)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	// Results stay sealed for the public while voting
	w = getResults(resultsHandler, pollID, "", nil)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// Step 5: Close
	w = httptest.NewRecorder()
	pollHandler.UpdatePhase(w, newRequest("PUT", "/polls/"+pollID+"/phase",
		models.UpdatePhaseRequest{Phase: models.PhaseClosed}, map[string]string{"id": pollID}, admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = submitVote(votingHandler, pollID, models.SubmitVoteRequest{
		VoterKey: "late", Nickname: "Late", Rankings: []string{c},
	}, nil)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Closed polls expose ballots by nickname
	w = httptest.NewRecorder()
	pollHandler.GetPoll(w, newRequest("GET", "/polls/"+pollID, nil, map[string]string{"id": pollID}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if view.VoteCount != len(ballots) || len(view.Votes) != len(ballots) {
		t.Errorf("Expected %d votes, got count %d and %d listed", len(ballots), view.VoteCount, len(view.Votes))
	}
	if view.IsAdmin || view.AdminToken != "" {
		t.Error("Public view must not carry admin access")
	}

	// Step 6: Results under every method
	decode := func(query string, v any) {
		t.Helper()
		w := getResults(resultsHandler, pollID, query, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
		if err := json.Unmarshal(decodeResults(t, w).Result, v); err != nil {
			t.Fatalf("Failed to decode %s result: %v", query, err)
		}
	}

	// Borda, points 2/1/0: A=4 B=7 C=4
	var borda tally.BordaResult
	decode("", &borda)
	if borda.Winner != b {
		t.Errorf("Borda: expected Brazil, got %s", borda.Winner)
	}
	if borda.Scores[a] != 4 || borda.Scores[b] != 7 || borda.Scores[c] != 4 {
		t.Errorf("Borda: unexpected scores %v", borda.Scores)
	}
	if borda.MaxPossibleScore != 10 || borda.TotalVotes != 5 {
		t.Errorf("Borda: expected max 10 over 5 votes, got %d over %d", borda.MaxPossibleScore, borda.TotalVotes)
	}

	// Brazil beats both others head to head
	var condorcet tally.CondorcetResult
	decode("?method=condorcet", &condorcet)
	if condorcet.Winner != b || condorcet.NoCondorcetWinner {
		t.Errorf("Condorcet: expected Brazil as Condorcet winner, got %+v", condorcet)
	}

	// Casablanca is eliminated first and its ballot transfers to Brazil
	var rcv tally.RCVResult
	decode("?method=rcv", &rcv)
	if rcv.Winner != b {
		t.Errorf("RCV: expected Brazil, got %s", rcv.Winner)
	}
	if len(rcv.Rounds) < 2 || rcv.Rounds[0].Eliminated != c {
		t.Fatalf("RCV: expected Casablanca eliminated in round 1, got %+v", rcv.Rounds)
	}
	if rcv.Rounds[1].Counts[b] != 3 {
		t.Errorf("RCV: expected Brazil at 3 in round 2, got %v", rcv.Rounds[1].Counts)
	}

	// The creating device sees the poll as admin
	w = httptest.NewRecorder()
	deviceHandler.GetMyPolls(w, testutil.MakeRequest("GET", "/devices/my-polls", nil, adminDevice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var mine models.GetMyPollsResponse
	testutil.AssertJSON(t, w, &mine)
	if len(mine.Polls) != 1 || mine.Polls[0].Role != models.RoleAdmin || mine.Polls[0].VoteCount != 5 {
		t.Errorf("Expected one admin poll with 5 votes, got %+v", mine.Polls)
	}

	if describer.calls() != 3 {
		t.Errorf("Expected 3 description lookups, got %d", describer.calls())
	}
}

// TestVoteCountAccuracy verifies that replacing ballots never inflates counts
func TestVoteCountAccuracy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg)
	pollHandler := NewPollHandler(db, cfg)

	pollID, _ := testutil.CreateTestPoll(t, db, cfg, models.PhaseVoting, "other", "borda")
	a := testutil.AddTestCandidate(t, db, pollID, "A")
	b := testutil.AddTestCandidate(t, db, pollID, "B")

	for i := 0; i < 3; i++ {
		for _, key := range []string{"k1", "k2", "k3"} {
			w := submitVote(votingHandler, pollID, models.SubmitVoteRequest{
				VoterKey: key, Nickname: key, Rankings: []string{a, b},
			}, nil)
			testutil.AssertStatus(t, w, http.StatusCreated)
		}
	}

	w := httptest.NewRecorder()
	pollHandler.GetPoll(w, newRequest("GET", "/polls/"+pollID, nil, map[string]string{"id": pollID}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if view.VoteCount != 3 {
		t.Errorf("Expected 3 votes, got %d", view.VoteCount)
	}
	if len(view.Votes) != 0 {
		t.Error("Votes must stay hidden until the poll is closed")
	}
}
