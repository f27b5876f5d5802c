package notify

import (
	"context"
	"time"
)

// QuestionPost is the payload handed to the chat connector when a question
// is published or previewed.
type QuestionPost struct {
	Num        int
	Date       string
	Weekday    string
	Links      string
	Creator    string
	Source     string
	Topic      string
	Difficulty string
	// Answer/Tolerance are set only on curator previews, never on the
	// public daily post.
	Answer    string
	Tolerance string
	Announce  bool
}

// StatsPost carries the live statistics display for one question.
type StatsPost struct {
	Num            int
	Creator        string
	Base           float64
	WeightedSolves float64
	Solves         int
	TotalAttempts  int
	UpdatedAt      time.Time
}

type LeaderboardEntry struct {
	UserID string
	Points float64
}

// LeaderboardPost is the rendered-ready leaderboard display: a header
// built from the season template plus ranked entries.
type LeaderboardPost struct {
	Header    string
	Entries   []LeaderboardEntry
	UpdatedAt time.Time
}

// SubmissionPost mirrors one submission to the audit channel. Counted is
// false for staff submissions, which are shown but never scored.
type SubmissionPost struct {
	UserID  string
	Num     int
	Answer  float64
	Correct bool
	Counted bool
}

// Notifier is the chat-platform connector. Implementations post and edit
// messages and manage the solver marker role; failures are logged by the
// caller and never roll back committed sheet state.
type Notifier interface {
	PostQuestion(ctx context.Context, p QuestionPost) error
	PostStats(ctx context.Context, p StatsPost) (ref string, err error)
	EditStats(ctx context.Context, ref string, p StatsPost) error
	PostLeaderboard(ctx context.Context, p LeaderboardPost) (ref string, err error)
	EditLeaderboard(ctx context.Context, ref string, p LeaderboardPost) error
	AnnounceSolve(ctx context.Context, userID string, num int) error
	GrantSolverRole(ctx context.Context, userID string) error
	ResetSolverRoles(ctx context.Context) error
	MirrorSubmission(ctx context.Context, p SubmissionPost) error
	// Alert raises an operational warning in the planning channel, e.g.
	// "rollover found no pending question".
	Alert(ctx context.Context, msg string) error
}
