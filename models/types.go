package models

import "github.com/danielhkuo/rankpick/tally"

// Poll phase constants
const (
	PhaseNominating = "nominating"
	PhaseVoting     = "voting"
	PhaseClosed     = "closed"
)

// Poll type constants
const (
	PollTypeMovie = "movie"
	PollTypeOther = "other"
)

// Limits
const (
	MaxTitleLength    = 200
	MaxNicknameLength = 50
	MyPollsLimit      = 20
)

// ValidPhase reports whether p is a known poll phase
func ValidPhase(p string) bool {
	switch p {
	case PhaseNominating, PhaseVoting, PhaseClosed:
		return true
	}
	return false
}

// ValidPollType reports whether t is a known poll type
func ValidPollType(t string) bool {
	return t == PollTypeMovie || t == PollTypeOther
}

// Request types

type CreatePollRequest struct {
	Title    string `json:"title"`
	PollType string `json:"pollType"`
	Method   string `json:"method,omitempty"`
}

type UpdatePhaseRequest struct {
	Phase      string `json:"phase"`
	AdminToken string `json:"adminToken,omitempty"`
}

type AddCandidateRequest struct {
	Title   string `json:"title"`
	AddedBy string `json:"addedBy"`
}

type SubmitVoteRequest struct {
	VoterKey string   `json:"voterKey"`
	Nickname string   `json:"nickname"`
	Rankings []string `json:"rankings"`
}

// Response types

type CreatePollResponse struct {
	PollID         string `json:"pollId"`
	AdminToken     string `json:"adminToken"`
	Title          string `json:"title"`
	PollType       string `json:"pollType"`
	Method         string `json:"method"`
	Phase          string `json:"phase"`
	DailyPollCount int    `json:"dailyPollCount"`
}

type DailyLimitResponse struct {
	Error        string `json:"error"`
	DailyLimit   int    `json:"dailyLimit"`
	CurrentCount int    `json:"currentCount"`
}

type StatsResponse struct {
	DailyPollCount int    `json:"dailyPollCount"`
	DailyLimit     int    `json:"dailyLimit"`
	Date           string `json:"date"`
}

type UpdatePhaseResponse struct {
	Phase string `json:"phase"`
}

type DeleteCandidateResponse struct {
	Deleted bool `json:"deleted"`
}

type SubmitVoteResponse struct {
	VoteID   string   `json:"voteId"`
	Nickname string   `json:"nickname"`
	Rankings []string `json:"rankings"`
}

type ResultsResponse struct {
	PollID string       `json:"pollId"`
	Method tally.Method `json:"method"`
	Result tally.Result `json:"result"`
}

// PollView is the poll as returned by GET /polls/{id}
type PollView struct {
	PollID     string      `json:"pollId"`
	Title      string      `json:"title"`
	PollType   string      `json:"pollType"`
	Method     string      `json:"method"`
	Phase      string      `json:"phase"`
	CreatedAt  int64       `json:"createdAt"`
	Candidates []Candidate `json:"candidates"`
	VoteCount  int         `json:"voteCount"`
	IsAdmin    bool        `json:"isAdmin"`
	AdminToken string      `json:"adminToken,omitempty"`
	Votes      []Vote      `json:"votes,omitempty"`
}

// Domain types

type Poll struct {
	ID        string `json:"pollId"`
	Title     string `json:"title"`
	PollType  string `json:"pollType"`
	Method    string `json:"method"`
	Phase     string `json:"phase"`
	CreatedAt int64  `json:"createdAt"`
}

type Candidate struct {
	ID                     string `json:"candidateId"`
	PollID                 string `json:"-"`
	Title                  string `json:"title"`
	AddedBy                string `json:"addedBy"`
	AddedAt                int64  `json:"addedAt"`
	Description            string `json:"description,omitempty"`
	DescriptionFetchedAt   *int64 `json:"descriptionFetchedAt,omitempty"`
	DescriptionAttemptedAt *int64 `json:"descriptionAttemptedAt,omitempty"`
}

type Vote struct {
	ID          string   `json:"voteId"`
	VoterHash   string   `json:"-"` // Never expose in JSON
	Nickname    string   `json:"nickname"`
	Rankings    []string `json:"rankings"`
	SubmittedAt int64    `json:"submittedAt"`
}

// Device types

// Device role constants
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Platform constants
const (
	PlatformIOS     = "ios"
	PlatformMacOS   = "macos"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

// ValidPlatform reports whether p is a supported device platform
func ValidPlatform(p string) bool {
	switch p {
	case PlatformIOS, PlatformMacOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

type RegisterDeviceRequest struct {
	Platform string `json:"platform"`
}

type DeviceInfo struct {
	ID         string `json:"deviceId"`
	Platform   string `json:"platform"`
	CreatedAt  int64  `json:"createdAt"`
	LastSeenAt int64  `json:"lastSeenAt"`
}

type RegisterDeviceResponse struct {
	DeviceID string `json:"deviceId"`
	IsNew    bool   `json:"isNew"`
}

type DevicePollSummary struct {
	PollID    string `json:"pollId"`
	Title     string `json:"title"`
	Phase     string `json:"phase"`
	Role      string `json:"role"`
	LinkedAt  int64  `json:"linkedAt"`
	VoteCount int    `json:"voteCount"`
}

type GetMyPollsResponse struct {
	Polls []DevicePollSummary `json:"polls"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
