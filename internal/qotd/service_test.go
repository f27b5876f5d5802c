package qotd

import (
	"context"
	"errors"
	"io"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phods-dev/qotd-service/internal/grading"
	"github.com/phods-dev/qotd-service/internal/notify"
	"github.com/phods-dev/qotd-service/internal/sheet"
)

type fakeNotifier struct {
	questions  []notify.QuestionPost
	statsPosts int
	lbPosts    int
	statsEdits []string
	lbEdits    []string
	lastLB     notify.LeaderboardPost
	solves     []string
	grants     []string
	resets     int
	mirrors    []notify.SubmissionPost
	alerts     []string
}

func (f *fakeNotifier) PostQuestion(_ context.Context, p notify.QuestionPost) error {
	f.questions = append(f.questions, p)
	return nil
}

func (f *fakeNotifier) PostStats(_ context.Context, _ notify.StatsPost) (string, error) {
	f.statsPosts++
	return "stats-ref", nil
}

func (f *fakeNotifier) EditStats(_ context.Context, ref string, _ notify.StatsPost) error {
	f.statsEdits = append(f.statsEdits, ref)
	return nil
}

func (f *fakeNotifier) PostLeaderboard(_ context.Context, p notify.LeaderboardPost) (string, error) {
	f.lbPosts++
	f.lastLB = p
	return "lb-ref", nil
}

func (f *fakeNotifier) EditLeaderboard(_ context.Context, ref string, p notify.LeaderboardPost) error {
	f.lbEdits = append(f.lbEdits, ref)
	f.lastLB = p
	return nil
}

func (f *fakeNotifier) AnnounceSolve(_ context.Context, userID string, _ int) error {
	f.solves = append(f.solves, userID)
	return nil
}

func (f *fakeNotifier) GrantSolverRole(_ context.Context, userID string) error {
	f.grants = append(f.grants, userID)
	return nil
}

func (f *fakeNotifier) ResetSolverRoles(_ context.Context) error {
	f.resets++
	return nil
}

func (f *fakeNotifier) MirrorSubmission(_ context.Context, p notify.SubmissionPost) error {
	f.mirrors = append(f.mirrors, p)
	return nil
}

func (f *fakeNotifier) Alert(_ context.Context, msg string) error {
	f.alerts = append(f.alerts, msg)
	return nil
}

var testClock = time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)

// newTestService seeds a memory store with a season mid-flight: question 1
// done, question 2 live (bob solved first try, carol second), questions 3
// and 4 pending, alice carrying 10 merged points.
func newTestService(t *testing.T) (*Service, sheet.RemoteStore, *fakeNotifier) {
	t.Helper()
	ctx := context.Background()
	store := sheet.NewMemoryStore()
	seed := map[string][][]string{
		"season": {
			{"template", "day", "season", "toggle"},
			{"QOTD {qotd} | Day {day} | Season {season}", "3", "2", "live"},
		},
		"questions": {
			{"num", "date", "weekday", "creator", "source", "points", "links", "topic", "difficulty", "solution", "answer", "tolerance", "status", "stats", "leaderboard"},
			{"1", "01 Mar 2025", "Saturday", "creator1", "", "", "https://q/1", "algebra", "easy", "https://s/1", "10", "1", "done", "", ""},
			{"2", "04 Mar 2025", "Tuesday", "creator2", "", "", "https://q/2", "geometry", "medium", "", "100", "1", "live", "stats-live", "lb-live"},
			{"3", "", "", "creator3", "", "", "https://q/3", "number theory", "hard", "", "42", "5", "pending", "", ""},
			{"4", "", "", "creator4", "", "", "https://q/4", "combinatorics", "easy", "", "7", "1", "pending", "", ""},
		},
		"leaderboard": {{"alice", "10"}},
		"qotd 2":      {{"bob", "100"}, {"carol", "1", "100"}},
	}
	for name, grid := range seed {
		if err := store.Put(ctx, name, grid); err != nil {
			t.Fatalf("seed %q: %v", name, err)
		}
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	n := &fakeNotifier{}
	svc := New(store, n, log, WithClock(func() time.Time { return testClock }))
	return svc, store, n
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// q2Base is the reward pool for the seeded live question: bob solved on
// attempt 0, carol on attempt 1, so W = 1 + 0.8.
var q2Base = grading.Base(1.8)

func TestRolloverPromotesLowestPending(t *testing.T) {
	ctx := context.Background()
	svc, store, n := newTestService(t)

	if err := svc.Rollover(ctx); err != nil {
		t.Fatalf("rollover: %v", err)
	}

	ms, err := store.Get(ctx, "questions")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if got := ms[2][colStatus]; got != "active" {
		t.Errorf("question 2 status = %q, want active", got)
	}
	if got := ms[3][colStatus]; got != "live" {
		t.Errorf("question 3 status = %q, want live", got)
	}
	if got := ms[3][colDate]; got != "05 Mar 2025" {
		t.Errorf("question 3 date = %q", got)
	}
	if got := ms[3][colWeekday]; got != "Wednesday" {
		t.Errorf("question 3 weekday = %q", got)
	}

	if _, err := store.Get(ctx, "qotd 3"); err != nil {
		t.Errorf("ledger sheet for question 3 missing: %v", err)
	}

	lb, err := store.Get(ctx, "leaderboard")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	totals := map[string]float64{}
	for _, row := range lb {
		v, _ := parseFloat(row[1])
		totals[row[0]] = v
	}
	if !approx(totals["bob"], q2Base) {
		t.Errorf("bob merged total = %v, want %v", totals["bob"], q2Base)
	}
	if !approx(totals["carol"], q2Base*0.8) {
		t.Errorf("carol merged total = %v, want %v", totals["carol"], q2Base*0.8)
	}
	if !approx(totals["alice"], 10) {
		t.Errorf("alice merged total = %v, want 10", totals["alice"])
	}

	ds, err := store.Get(ctx, "season")
	if err != nil {
		t.Fatalf("get season: %v", err)
	}
	if got := ds[seasonRow][colDay]; got != "4" {
		t.Errorf("day counter = %q, want 4", got)
	}

	var announced bool
	for _, p := range n.questions {
		if p.Announce && p.Num == 3 {
			announced = true
		}
	}
	if !announced {
		t.Error("question 3 was not announced")
	}
	if n.resets == 0 {
		t.Error("solver roles were not reset")
	}
}

func TestRolloverPausedSeasonSkips(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	ds, _ := store.Get(ctx, "season")
	ds[seasonRow][colToggle] = "paused"
	if err := store.Put(ctx, "season", ds); err != nil {
		t.Fatal(err)
	}

	if err := svc.Rollover(ctx); err != nil {
		t.Fatalf("rollover on paused season: %v", err)
	}
	ms, _ := store.Get(ctx, "questions")
	if got := ms[2][colStatus]; got != "live" {
		t.Errorf("question 2 status = %q, want live (untouched)", got)
	}
}

func TestRolloverNoPendingAlerts(t *testing.T) {
	ctx := context.Background()
	svc, store, n := newTestService(t)
	ms, _ := store.Get(ctx, "questions")
	ms[3][colStatus] = "done"
	ms[4][colStatus] = "done"
	if err := store.Put(ctx, "questions", ms); err != nil {
		t.Fatal(err)
	}

	err := svc.Rollover(ctx)
	if !errors.Is(err, ErrNoPending) {
		t.Fatalf("rollover err = %v, want ErrNoPending", err)
	}
	if len(n.alerts) == 0 {
		t.Error("no operational alert was raised")
	}
	ms, _ = store.Get(ctx, "questions")
	if got := ms[2][colStatus]; got != "live" {
		t.Errorf("question 2 status = %q, want live (stays up)", got)
	}
}

func TestSubmitRecordsAttempts(t *testing.T) {
	ctx := context.Background()
	svc, store, n := newTestService(t)
	dave := Caller{ID: "dave", Name: "Dave"}

	res, err := svc.Submit(ctx, dave, 0, "95")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Correct || !res.Counted || res.Num != 2 || res.Attempts != 1 {
		t.Fatalf("first submit result = %+v", res)
	}

	res, err = svc.Submit(ctx, dave, 0, "100")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct || !res.Counted || res.Attempts != 2 {
		t.Fatalf("second submit result = %+v", res)
	}

	lg, err := store.Get(ctx, "qotd 2")
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	var row []string
	for _, r := range lg {
		if r[0] == "dave" {
			row = r
		}
	}
	if len(row) != 3 || row[1] != "95" || row[2] != "100" {
		t.Errorf("dave's ledger row = %v", row)
	}

	if len(n.solves) != 1 || n.solves[0] != "dave" {
		t.Errorf("solve announcements = %v", n.solves)
	}
	if len(n.grants) != 1 || n.grants[0] != "dave" {
		t.Errorf("role grants = %v", n.grants)
	}
}

func TestSubmitWithinTolerance(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res, err := svc.Submit(ctx, Caller{ID: "erin"}, 0, "99")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct {
		t.Error("99 should be within 1% of 100")
	}
}

func TestSubmitStaffExcludedFromLedger(t *testing.T) {
	ctx := context.Background()
	svc, store, n := newTestService(t)

	res, err := svc.Submit(ctx, Caller{ID: "mod", Staff: true}, 0, "100")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct || res.Counted {
		t.Fatalf("staff submit result = %+v", res)
	}

	lg, _ := store.Get(ctx, "qotd 2")
	for _, r := range lg {
		if r[0] == "mod" {
			t.Fatal("staff submission reached the ledger")
		}
	}
	if len(n.mirrors) != 1 || n.mirrors[0].Counted {
		t.Errorf("mirrors = %+v, want one uncounted", n.mirrors)
	}
	if len(n.solves) != 0 {
		t.Error("staff solve was announced")
	}
}

func TestSubmitRejectsPendingAndGarbage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	if _, err := svc.Submit(ctx, Caller{ID: "x"}, 3, "42"); !errors.Is(err, ErrInvalid) {
		t.Errorf("submit to pending: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.Submit(ctx, Caller{ID: "x"}, 99, "42"); !errors.Is(err, ErrInvalid) {
		t.Errorf("submit out of range: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.Submit(ctx, Caller{ID: "x"}, 0, "not a number"); !errors.Is(err, ErrInvalid) {
		t.Errorf("non-numeric answer: err = %v, want ErrInvalid", err)
	}
}

func TestSubmitNoLiveQuestion(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	ms, _ := store.Get(ctx, "questions")
	ms[2][colStatus] = "done"
	if err := store.Put(ctx, "questions", ms); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Submit(ctx, Caller{ID: "x"}, 0, "1"); !errors.Is(err, ErrNoLive) {
		t.Errorf("err = %v, want ErrNoLive", err)
	}
}

func TestMergeUndoRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	if err := svc.MergeLeaderboard(ctx, 2, true); err != nil {
		t.Fatalf("merge add: %v", err)
	}
	if err := svc.MergeLeaderboard(ctx, 2, false); err != nil {
		t.Fatalf("merge undo: %v", err)
	}

	lb, _ := store.Get(ctx, "leaderboard")
	for _, row := range lb {
		v, _ := parseFloat(row[1])
		switch row[0] {
		case "alice":
			if !approx(v, 10) {
				t.Errorf("alice = %v, want 10", v)
			}
		default:
			if !approx(v, 0) {
				t.Errorf("%s = %v, want 0 after undo", row[0], v)
			}
		}
	}
}

func TestMergeMissingLedger(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	if err := svc.MergeLeaderboard(ctx, 1, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := svc.MergeLeaderboard(ctx, 0, true); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestUpdateLeaderboard(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newTestService(t)

	ok, err := svc.UpdateLeaderboard(ctx)
	if err != nil || !ok {
		t.Fatalf("update = %v, %v, want true, nil", ok, err)
	}
	if len(n.lbEdits) != 1 || n.lbEdits[0] != "lb-live" {
		t.Errorf("leaderboard edits = %v", n.lbEdits)
	}
	if len(n.statsEdits) != 1 || n.statsEdits[0] != "stats-live" {
		t.Errorf("stats edits = %v", n.statsEdits)
	}
	if got := n.lastLB.Header; got != "QOTD 2 | Day 3 | Season 2" {
		t.Errorf("header = %q", got)
	}
	// Display totals include the live question's provisional scores.
	var bob float64
	for _, e := range n.lastLB.Entries {
		if e.UserID == "bob" {
			bob = e.Points
		}
	}
	if !approx(bob, q2Base) {
		t.Errorf("bob display total = %v, want %v", bob, q2Base)
	}
}

func TestUpdateLeaderboardNoLive(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	ms, _ := store.Get(ctx, "questions")
	ms[2][colStatus] = "done"
	if err := store.Put(ctx, "questions", ms); err != nil {
		t.Fatal(err)
	}

	ok, err := svc.UpdateLeaderboard(ctx)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok {
		t.Error("update reported work with no live question")
	}
}

func TestEndSeasonTwoPhase(t *testing.T) {
	ctx := context.Background()
	svc, store, n := newTestService(t)

	executed, err := svc.EndSeason(ctx)
	if err != nil {
		t.Fatalf("arm: %v", err)
	}
	if executed {
		t.Fatal("first call executed instead of arming")
	}
	ds, _ := store.Get(ctx, "season")
	if ds[seasonRow][colSeason] != "2" {
		t.Fatal("arming changed the season counter")
	}

	executed, err = svc.EndSeason(ctx)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !executed {
		t.Fatal("second call did not execute")
	}

	ms, _ := store.Get(ctx, "questions")
	if got := ms[2][colStatus]; got != "done" {
		t.Errorf("question 2 status = %q, want done", got)
	}
	lb, _ := store.Get(ctx, "leaderboard")
	totals := map[string]float64{}
	for _, row := range lb {
		v, _ := parseFloat(row[1])
		totals[row[0]] = v
	}
	if !approx(totals["bob"], q2Base) {
		t.Errorf("bob total = %v, want %v (live question merged)", totals["bob"], q2Base)
	}
	if _, err := store.Get(ctx, "qotd 2"); !errors.Is(err, sheet.ErrNotFound) {
		t.Error("ledger sheet for question 2 survived season end")
	}
	ds, _ = store.Get(ctx, "season")
	if ds[seasonRow][colSeason] != "3" || ds[seasonRow][colDay] != "0" {
		t.Errorf("season row = %v, want season 3 day 0", ds[seasonRow])
	}
	if n.resets == 0 {
		t.Error("solver roles were not reset")
	}
}

func TestDeletePendingCompacts(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	if err := svc.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ms, _ := store.Get(ctx, "questions")
	if len(ms) != 4 {
		t.Fatalf("master has %d rows, want 4", len(ms))
	}
	if ms[3][colNum] != "3" || ms[3][colLinks] != "https://q/4" {
		t.Errorf("row 3 = %v, want old question 4 renumbered", ms[3])
	}
}

func TestDeleteNonPendingRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	if err := svc.Delete(ctx, 2); !errors.Is(err, ErrInvalid) {
		t.Errorf("delete live: err = %v, want ErrInvalid", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, ErrInvalid) {
		t.Errorf("delete done: err = %v, want ErrInvalid", err)
	}
}

func TestUploadAssignsNextNumber(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	num, err := svc.Upload(ctx, UploadInput{
		Creator: "creator5",
		Links:   "https://q/5",
		Answer:  "3.14",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if num != 5 {
		t.Fatalf("assigned number = %d, want 5", num)
	}
	ms, _ := store.Get(ctx, "questions")
	if got := ms[5][colStatus]; got != "pending" {
		t.Errorf("status = %q, want pending", got)
	}
	if got := ms[5][colTolerance]; got != "1" {
		t.Errorf("tolerance = %q, want default 1", got)
	}
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	if _, err := svc.Upload(ctx, UploadInput{Creator: "c", Links: "l"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing answer: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.Upload(ctx, UploadInput{Creator: "c", Links: "l", Answer: "abc"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("non-numeric answer: err = %v, want ErrInvalid", err)
	}
}

func TestEditKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	if err := svc.Edit(ctx, 3, EditInput{Topic: "geometry", Tolerance: "2"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	ms, _ := store.Get(ctx, "questions")
	if got := ms[3][colTopic]; got != "geometry" {
		t.Errorf("topic = %q", got)
	}
	if got := ms[3][colTolerance]; got != "2" {
		t.Errorf("tolerance = %q", got)
	}
	if got := ms[3][colAnswer]; got != "42" {
		t.Errorf("answer = %q, want untouched 42", got)
	}
}

func TestFetchStatuses(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	q, err := svc.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("fetch done: %v", err)
	}
	if q.Answer != "10" || q.Solution != "https://s/1" {
		t.Errorf("done question = %+v, want answer and solution", q)
	}

	if _, err := svc.Fetch(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch live: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Fetch(ctx, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch pending: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Fetch(ctx, 42); !errors.Is(err, ErrInvalid) {
		t.Errorf("fetch out of range: err = %v, want ErrInvalid", err)
	}
}

func TestFetchActiveWithholdsAnswer(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	ms, _ := store.Get(ctx, "questions")
	ms[1][colStatus] = "active"
	if err := store.Put(ctx, "questions", ms); err != nil {
		t.Fatal(err)
	}

	q, err := svc.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("fetch active: %v", err)
	}
	if q.Answer != "" || q.Solution != "" {
		t.Errorf("active question leaked answer/solution: %+v", q)
	}
}

func TestSolution(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	if _, err := svc.Solution(ctx, 2, "https://s/2"); err != nil {
		t.Fatalf("set solution: %v", err)
	}
	ms, _ := store.Get(ctx, "questions")
	if got := ms[2][colSolution]; got != "https://s/2" {
		t.Errorf("stored solution = %q", got)
	}

	q, err := svc.Solution(ctx, 1, "")
	if err != nil {
		t.Fatalf("get solution: %v", err)
	}
	if q.Solution != "https://s/1" {
		t.Errorf("solution = %q", q.Solution)
	}
	if _, err := svc.Solution(ctx, 3, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("pending solution: err = %v, want ErrNotFound", err)
	}
}

func TestPendingList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	all, err := svc.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(all) != 2 || all[0].Num != 3 || all[1].Num != 4 {
		t.Errorf("pending list = %+v", all)
	}

	one, err := svc.Pending(ctx, 4)
	if err != nil {
		t.Fatalf("pending detail: %v", err)
	}
	if len(one) != 1 || one[0].Answer != "7" {
		t.Errorf("pending detail = %+v", one)
	}
	if _, err := svc.Pending(ctx, 1); !errors.Is(err, ErrInvalid) {
		t.Errorf("pending on done: err = %v, want ErrInvalid", err)
	}
}

func TestRandomFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	q, err := svc.Random(ctx, RandomFilters{Topic: "algebra"})
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if q.Num != 1 {
		t.Errorf("random picked %d, want the only done question 1", q.Num)
	}
	if _, err := svc.Random(ctx, RandomFilters{Topic: "topology"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("no match: err = %v, want ErrNotFound", err)
	}
}

func TestVerifySubmissions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	rev, err := svc.VerifySubmissions(ctx, "carol", 2)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(rev.Attempts) != 2 {
		t.Fatalf("attempts = %+v", rev.Attempts)
	}
	if rev.Attempts[0].Correct || !rev.Attempts[1].Correct {
		t.Errorf("verdicts = %+v", rev.Attempts)
	}

	rev, err = svc.VerifySubmissions(ctx, "nobody", 2)
	if err != nil {
		t.Fatalf("verify non-participant: %v", err)
	}
	if len(rev.Attempts) != 0 {
		t.Errorf("non-participant attempts = %+v", rev.Attempts)
	}
	if _, err := svc.VerifySubmissions(ctx, "carol", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("done question: err = %v, want ErrNotFound", err)
	}
}

func TestScores(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	entries, err := svc.Scores(ctx, "carol")
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	want := q2Base * 0.8
	if entries[0].Label != "QOTD 2" || !approx(entries[0].Points, want) {
		t.Errorf("live entry = %+v, want %v", entries[0], want)
	}
	if entries[1].Label != "Total" || !approx(entries[1].Points, want) {
		t.Errorf("total = %+v, want %v", entries[1], want)
	}

	entries, err = svc.Scores(ctx, "alice")
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(entries) != 2 || entries[0].Label != "Merged" || !approx(entries[0].Points, 10) {
		t.Errorf("alice entries = %+v", entries)
	}
}

func TestResetInvalidatesGeneration(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	gen := svc.gen
	svc.Reset()
	if err := svc.commit(ctx, gen, masterSheet); !errors.Is(err, ErrStale) {
		t.Errorf("commit with stale generation: err = %v, want ErrStale", err)
	}

	// A fresh operation after reset sees store state again.
	if _, err := svc.Fetch(ctx, 1); err != nil {
		t.Errorf("fetch after reset: %v", err)
	}
}
