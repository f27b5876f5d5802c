package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogNotifier is the connector used when no chat platform is wired: every
// post becomes a structured log line and message refs are generated IDs,
// so the lifecycle paths that store and edit refs still run end to end.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLog(log *logrus.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) PostQuestion(_ context.Context, p QuestionPost) error {
	n.log.WithFields(logrus.Fields{
		"qotd":     p.Num,
		"creator":  p.Creator,
		"announce": p.Announce,
	}).Info("post question")
	return nil
}

func (n *LogNotifier) PostStats(_ context.Context, p StatsPost) (string, error) {
	ref := uuid.NewString()
	n.log.WithFields(logrus.Fields{"qotd": p.Num, "ref": ref}).Info("post stats message")
	return ref, nil
}

func (n *LogNotifier) EditStats(_ context.Context, ref string, p StatsPost) error {
	n.log.WithFields(logrus.Fields{
		"qotd":     p.Num,
		"ref":      ref,
		"base":     p.Base,
		"weighted": p.WeightedSolves,
		"solves":   p.Solves,
		"attempts": p.TotalAttempts,
	}).Info("edit stats message")
	return nil
}

func (n *LogNotifier) PostLeaderboard(_ context.Context, p LeaderboardPost) (string, error) {
	ref := uuid.NewString()
	n.log.WithFields(logrus.Fields{"ref": ref, "entries": len(p.Entries)}).Info("post leaderboard message")
	return ref, nil
}

func (n *LogNotifier) EditLeaderboard(_ context.Context, ref string, p LeaderboardPost) error {
	n.log.WithFields(logrus.Fields{"ref": ref, "entries": len(p.Entries)}).Info("edit leaderboard message")
	return nil
}

func (n *LogNotifier) AnnounceSolve(_ context.Context, userID string, num int) error {
	n.log.WithFields(logrus.Fields{"user": userID, "qotd": num}).Info("announce solve")
	return nil
}

func (n *LogNotifier) GrantSolverRole(_ context.Context, userID string) error {
	n.log.WithField("user", userID).Info("grant solver role")
	return nil
}

func (n *LogNotifier) ResetSolverRoles(_ context.Context) error {
	n.log.Info("reset solver roles")
	return nil
}

func (n *LogNotifier) MirrorSubmission(_ context.Context, p SubmissionPost) error {
	n.log.WithFields(logrus.Fields{
		"user":    p.UserID,
		"qotd":    p.Num,
		"correct": p.Correct,
		"counted": p.Counted,
	}).Info("submission")
	return nil
}

func (n *LogNotifier) Alert(_ context.Context, msg string) error {
	n.log.Warn(msg)
	return nil
}
