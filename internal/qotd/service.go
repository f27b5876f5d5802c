package qotd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/phods-dev/qotd-service/internal/audit"
	"github.com/phods-dev/qotd-service/internal/grading"
	"github.com/phods-dev/qotd-service/internal/metrics"
	"github.com/phods-dev/qotd-service/internal/notify"
	"github.com/phods-dev/qotd-service/internal/sheet"
)

// displayLimit caps the ranked entries handed to the leaderboard display.
const displayLimit = 30

var validate = validator.New()

// AuditLog receives every submission event, including staff submissions
// that are excluded from scoring.
type AuditLog interface {
	Append(ctx context.Context, e audit.Event) error
}

// Caller identifies the submitting participant. Staff marks elevated
// roles on the host server; their submissions are mirrored for audit but
// never enter the ledger.
type Caller struct {
	ID    string
	Name  string
	Staff bool
}

type SubmitResult struct {
	Num      int     `json:"num"`
	Answer   float64 `json:"answer"`
	Correct  bool    `json:"correct"`
	Counted  bool    `json:"counted"`
	Attempts int     `json:"attempts,omitempty"`
}

type UploadInput struct {
	Creator    string `json:"creator" validate:"required"`
	Links      string `json:"links" validate:"required"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Answer     string `json:"answer" validate:"required,numeric"`
	Tolerance  string `json:"tolerance" validate:"omitempty,numeric"`
	Source     string `json:"source"`
	Points     string `json:"points"`
}

// EditInput patches a question; empty fields keep the stored value.
type EditInput struct {
	Links      string `json:"links"`
	Creator    string `json:"creator"`
	Topic      string `json:"topic"`
	Source     string `json:"source"`
	Difficulty string `json:"difficulty"`
	Answer     string `json:"answer" validate:"omitempty,numeric"`
	Tolerance  string `json:"tolerance" validate:"omitempty,numeric"`
}

type RandomFilters struct {
	Topic      string
	Creator    string
	Difficulty string
}

type AttemptReview struct {
	Value   string `json:"value"`
	Correct bool   `json:"correct"`
}

type SubmissionReview struct {
	Num      int             `json:"num"`
	UserID   string          `json:"user_id"`
	Attempts []AttemptReview `json:"attempts"`
}

type ScoreEntry struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
}

// Service is the lifecycle manager: the only writer to the four sheet
// entities, serialized by one mutex. Network calls (remote store, chat
// connector) happen while the lock is held.
type Service struct {
	store    sheet.RemoteStore
	notifier notify.Notifier
	log      *logrus.Logger
	met      *metrics.Metrics
	audit    AuditLog
	now      func() time.Time

	mu      sync.Mutex // serializes every operation, including remote I/O
	gen     uint64
	wb      *sheet.Workbook
	liveNum int // memoized live question number; 0 = unknown
	armed   bool
}

type Option func(*Service)

func WithAudit(a AuditLog) Option { return func(s *Service) { s.audit = a } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.met = m } }

func New(store sheet.RemoteStore, n notify.Notifier, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: n,
		log:      log,
		met:      metrics.Default(),
		now:      time.Now,
		wb:       sheet.NewWorkbook(store),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reset swaps in a fresh workbook and bumps the generation so any stale
// holder of the old state no-ops on commit instead of writing through a
// discarded cache.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.wb = sheet.NewWorkbook(s.store)
	s.liveNum = 0
	s.armed = false
	s.log.WithField("generation", s.gen).Info("cache reset")
}

// commit flushes the named sheets, refusing to touch the store when the
// generation moved.
func (s *Service) commit(ctx context.Context, gen uint64, names ...string) error {
	if s.gen != gen {
		return ErrStale
	}
	for _, name := range names {
		if err := s.wb.Commit(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) master(ctx context.Context) (*sheet.Sheet, error) {
	return s.wb.Sheet(ctx, masterSheet)
}

func (s *Service) findLive(ms *sheet.Sheet) (int, bool) {
	if s.liveNum > 0 && statusAt(ms, s.liveNum) == StatusLive {
		return s.liveNum, true
	}
	for i := 1; i < ms.Rows(); i++ {
		if statusAt(ms, i) == StatusLive {
			s.liveNum = i
			return i, true
		}
	}
	s.liveNum = 0
	return 0, false
}

func validNum(ms *sheet.Sheet, num int) bool {
	return num >= 1 && num < ms.Rows()
}

// Rollover retires the current live question (merge into the leaderboard
// ledger, mark active) and promotes the lowest-numbered pending question
// to live. A paused season skips silently; an empty pending queue raises
// an operational alert instead of failing.
func (s *Service) Rollover(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	ds, err := s.wb.Sheet(ctx, seasonSheet)
	if err != nil {
		return err
	}
	cfg := seasonConfigFrom(ds)
	if cfg.Paused {
		s.log.Info("season paused, skipping rollover")
		return nil
	}

	ms, err := s.master(ctx)
	if err != nil {
		return err
	}
	next := 0
	for i := 1; i < ms.Rows(); i++ {
		if statusAt(ms, i) == StatusPending {
			next = i
			break
		}
	}
	if next == 0 {
		s.log.Warn("rollover found no pending question")
		if err := s.notifier.Alert(ctx, "no pending question to post; previous question stays live"); err != nil {
			s.log.WithError(err).Error("alert failed")
		}
		return ErrNoPending
	}

	if cur, ok := s.findLive(ms); ok {
		// Final display refresh for the outgoing question, then fold its
		// scores into the durable ledger.
		if err := s.refreshDisplays(ctx, gen, ms, ds); err != nil {
			s.log.WithError(err).Warn("pre-rollover display refresh failed")
		}
		if err := s.mergeInto(ctx, ms, cur, true); err != nil {
			return err
		}
		ms.SetCell(cur, colStatus, string(StatusActive))
		s.log.WithField("qotd", cur).Info("question retired to active")
	}

	ds.SetCell(seasonRow, colDay, strconv.Itoa(cfg.Day+1))
	if err := s.commit(ctx, gen, seasonSheet); err != nil {
		return err
	}

	if err := s.wb.Create(ctx, ledgerSheet(next)); err != nil {
		if !errors.Is(err, sheet.ErrExists) {
			return err
		}
		s.log.WithField("qotd", next).Error("ledger sheet already existed")
	}

	now := s.now().UTC()
	ms.SetCell(next, colStatus, string(StatusLive))
	ms.SetCell(next, colDate, now.Format("02 Jan 2006"))
	ms.SetCell(next, colWeekday, now.Format("Monday"))
	s.liveNum = next

	q := questionAt(ms, next)
	if err := s.notifier.PostQuestion(ctx, notify.QuestionPost{
		Num:        q.Num,
		Date:       q.Date,
		Weekday:    q.Weekday,
		Links:      q.Links,
		Creator:    q.Creator,
		Difficulty: q.Difficulty,
		Announce:   true,
	}); err != nil {
		s.log.WithError(err).Error("post question failed")
	}
	if err := s.notifier.ResetSolverRoles(ctx); err != nil {
		s.log.WithError(err).Error("reset solver roles failed")
	}

	if ref, err := s.notifier.PostStats(ctx, notify.StatsPost{
		Num: next, Creator: q.Creator, Base: grading.Base(0), UpdatedAt: now,
	}); err != nil {
		s.log.WithError(err).Error("post stats message failed")
	} else {
		ms.SetCell(next, colStatsRef, ref)
	}
	if ref, err := s.notifier.PostLeaderboard(ctx, notify.LeaderboardPost{UpdatedAt: now}); err != nil {
		s.log.WithError(err).Error("post leaderboard message failed")
	} else {
		ms.SetCell(next, colLeaderboardRef, ref)
	}

	if err := s.commit(ctx, gen, leaderboardSheet, masterSheet); err != nil {
		return err
	}
	s.met.Rollovers.Inc()
	s.log.WithField("qotd", next).Info("question is live")

	if err := s.refreshDisplays(ctx, gen, ms, ds); err != nil {
		s.log.WithError(err).Warn("post-rollover display refresh failed")
	}
	return nil
}

// Submit records an answer for the target question (the live one when num
// is 0). Attempts are append-only; nothing recorded is ever discarded by
// this path.
func (s *Service) Submit(ctx context.Context, caller Caller, num int, answer string) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	ms, err := s.master(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	if num == 0 {
		live, ok := s.findLive(ms)
		if !ok {
			return SubmitResult{}, ErrNoLive
		}
		num = live
	}
	if !validNum(ms, num) || statusAt(ms, num) == StatusPending {
		return SubmitResult{}, fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: answer must be numeric", ErrInvalid)
	}
	ans, tol, err := answerAndTolerance(ms, num)
	if err != nil {
		return SubmitResult{}, err
	}
	correct := grading.IsCorrect(ans, val, tol)
	counted := statusAt(ms, num) == StatusLive && !caller.Staff

	res := SubmitResult{Num: num, Answer: val, Correct: correct, Counted: counted}
	valStr := strconv.FormatFloat(val, 'g', -1, 64)

	if counted {
		lg, err := s.wb.Sheet(ctx, ledgerSheet(num))
		if err != nil {
			return SubmitResult{}, err
		}
		row := -1
		for i, r := range lg.Grid() {
			if len(r) > 0 && r[0] == caller.ID {
				row = i
				break
			}
		}
		if row >= 0 {
			lg.SetCell(row, len(lg.Grid()[row]), valStr)
			res.Attempts = len(lg.Grid()[row]) - 1
		} else {
			lg.AppendRow([]string{caller.ID, valStr})
			res.Attempts = 1
		}
		if err := s.commit(ctx, gen, ledgerSheet(num)); err != nil {
			return SubmitResult{}, err
		}
	}

	s.recordSubmission(ctx, caller, res)
	if err := s.notifier.MirrorSubmission(ctx, notify.SubmissionPost{
		UserID: caller.ID, Num: num, Answer: val, Correct: correct, Counted: counted,
	}); err != nil {
		s.log.WithError(err).Error("mirror submission failed")
	}

	verdict := "incorrect"
	if correct {
		verdict = "correct"
	}
	s.met.Submissions.WithLabelValues(verdict).Inc()

	if counted && correct {
		if err := s.notifier.AnnounceSolve(ctx, caller.ID, num); err != nil {
			s.log.WithError(err).Error("announce solve failed")
		}
		if err := s.notifier.GrantSolverRole(ctx, caller.ID); err != nil {
			s.log.WithError(err).Error("grant solver role failed")
		}
		ds, err := s.wb.Sheet(ctx, seasonSheet)
		if err == nil {
			if err := s.refreshDisplays(ctx, gen, ms, ds); err != nil {
				s.log.WithError(err).Warn("display refresh after solve failed")
			}
		}
	}
	return res, nil
}

func (s *Service) recordSubmission(ctx context.Context, caller Caller, res SubmitResult) {
	if s.audit == nil {
		return
	}
	typ := "SubmissionRecorded"
	if !res.Counted {
		typ = "SubmissionUncounted"
		if caller.Staff {
			typ = "SubmissionStaff"
		}
	}
	data, _ := json.Marshal(map[string]any{
		"answer":  res.Answer,
		"correct": res.Correct,
		"counted": res.Counted,
	})
	if err := s.audit.Append(ctx, audit.Event{
		Type: typ, UserID: caller.ID, QotdNum: res.Num, DataJSON: string(data),
	}); err != nil {
		s.log.WithError(err).Error("audit append failed")
	}
}

// MergeLeaderboard recomputes question num's full grading result and
// applies it (added or subtracted) to the durable leaderboard. add=false
// exactly undoes a prior add=true for an unchanged ledger; repeating
// add=true double-counts and is the caller's responsibility.
func (s *Service) MergeLeaderboard(ctx context.Context, num int, add bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	ms, err := s.master(ctx)
	if err != nil {
		return err
	}
	if !validNum(ms, num) {
		return fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	if err := s.mergeInto(ctx, ms, num, add); err != nil {
		return err
	}
	return s.commit(ctx, gen, leaderboardSheet)
}

func (s *Service) mergeInto(ctx context.Context, ms *sheet.Sheet, num int, add bool) error {
	ans, tol, err := answerAndTolerance(ms, num)
	if err != nil {
		return err
	}
	lg, err := s.wb.Sheet(ctx, ledgerSheet(num))
	if err != nil {
		if errors.Is(err, sheet.ErrNotFound) {
			return fmt.Errorf("%w: no ledger for question %d", ErrNotFound, num)
		}
		return err
	}
	scores, _ := grading.Grade(lg.Grid(), ans, tol)

	lb, err := s.wb.Sheet(ctx, leaderboardSheet)
	if err != nil {
		return err
	}
	totals := loadTotals(lb)
	for user, pts := range scores {
		if add {
			totals[user] += pts
		} else {
			totals[user] -= pts
		}
	}
	writeTotals(lb, totals)

	direction := "add"
	if !add {
		direction = "undo"
	}
	s.met.Merges.WithLabelValues(direction).Inc()
	s.log.WithFields(logrus.Fields{"qotd": num, "direction": direction}).Info("leaderboard merged")
	return nil
}

// UpdateLeaderboard republishes the stats and leaderboard displays for
// the live question. Totals are recomputed fresh from the durable ledger
// plus the live question's graded scores every call, so repeated manual
// triggers are idempotent. Returns false when no question is live.
func (s *Service) UpdateLeaderboard(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	ds, err := s.wb.Sheet(ctx, seasonSheet)
	if err != nil {
		return false, err
	}
	if seasonConfigFrom(ds).Paused {
		return false, nil
	}
	ms, err := s.master(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := s.findLive(ms); !ok {
		return false, nil
	}
	if err := s.refreshDisplays(ctx, gen, ms, ds); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) refreshDisplays(ctx context.Context, gen uint64, ms, ds *sheet.Sheet) error {
	live, ok := s.findLive(ms)
	if !ok {
		return ErrNoLive
	}
	ans, tol, err := answerAndTolerance(ms, live)
	if err != nil {
		return err
	}
	lg, err := s.wb.Sheet(ctx, ledgerSheet(live))
	if err != nil {
		return err
	}
	lb, err := s.wb.Sheet(ctx, leaderboardSheet)
	if err != nil {
		return err
	}

	scores, st := grading.Grade(lg.Grid(), ans, tol)
	totals := loadTotals(lb)
	for user, pts := range scores {
		totals[user] += pts
	}
	entries := rankedEntries(totals)
	if len(entries) > displayLimit {
		entries = entries[:displayLimit]
	}

	now := s.now().UTC()
	cfg := seasonConfigFrom(ds)
	header := strings.NewReplacer(
		"{qotd}", strconv.Itoa(live),
		"{day}", strconv.Itoa(cfg.Day),
		"{season}", strconv.Itoa(cfg.Season),
		"{time}", now.Format("03:04 PM UTC"),
	).Replace(cfg.Template)

	q := questionAt(ms, live)
	statsPost := notify.StatsPost{
		Num:            live,
		Creator:        q.Creator,
		Base:           st.Base,
		WeightedSolves: st.WeightedSolves,
		Solves:         st.Solves,
		TotalAttempts:  st.TotalAttempts,
		UpdatedAt:      now,
	}
	lbPost := notify.LeaderboardPost{Header: header, Entries: entries, UpdatedAt: now}

	if q.StatsRef == "" {
		if ref, err := s.notifier.PostStats(ctx, statsPost); err != nil {
			s.log.WithError(err).Error("post stats message failed")
		} else {
			ms.SetCell(live, colStatsRef, ref)
		}
	} else if err := s.notifier.EditStats(ctx, q.StatsRef, statsPost); err != nil {
		s.log.WithError(err).Error("edit stats message failed")
	}

	if q.LeaderboardRef == "" {
		if ref, err := s.notifier.PostLeaderboard(ctx, lbPost); err != nil {
			s.log.WithError(err).Error("post leaderboard message failed")
		} else {
			ms.SetCell(live, colLeaderboardRef, ref)
		}
	} else if err := s.notifier.EditLeaderboard(ctx, q.LeaderboardRef, lbPost); err != nil {
		s.log.WithError(err).Error("edit leaderboard message failed")
	}

	if ms.Dirty() {
		return s.commit(ctx, gen, masterSheet)
	}
	return nil
}

// EndSeason is two-phase: the first call arms and reports back, the
// second call within the same process lifetime executes. Executing merges
// remaining live questions, closes all live/active rows, deletes their
// ledger sheets and advances the season counters.
func (s *Service) EndSeason(ctx context.Context) (executed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	if !s.armed {
		s.armed = true
		s.log.Info("season end armed, awaiting confirmation")
		return false, nil
	}
	s.armed = false

	ms, err := s.master(ctx)
	if err != nil {
		return false, err
	}
	ds, err := s.wb.Sheet(ctx, seasonSheet)
	if err != nil {
		return false, err
	}

	var closed []int
	for i := 1; i < ms.Rows(); i++ {
		switch statusAt(ms, i) {
		case StatusLive:
			// Active questions were merged at their rollover; live ones
			// still owe their scores to the ledger.
			if err := s.mergeInto(ctx, ms, i, true); err != nil {
				return false, err
			}
			closed = append(closed, i)
			ms.SetCell(i, colStatus, string(StatusDone))
		case StatusActive:
			closed = append(closed, i)
			ms.SetCell(i, colStatus, string(StatusDone))
		}
	}
	if err := s.commit(ctx, gen, leaderboardSheet, masterSheet); err != nil {
		return false, err
	}

	for _, n := range closed {
		if err := s.wb.Delete(ctx, ledgerSheet(n)); err != nil {
			s.log.WithError(err).WithField("qotd", n).Error("ledger sheet delete failed")
		}
	}

	cfg := seasonConfigFrom(ds)
	ds.SetCell(seasonRow, colSeason, strconv.Itoa(cfg.Season+1))
	ds.SetCell(seasonRow, colDay, "0")
	ds.SetCell(seasonRow, colToggle, "live")
	if err := s.commit(ctx, gen, seasonSheet); err != nil {
		return false, err
	}

	if err := s.notifier.ResetSolverRoles(ctx); err != nil {
		s.log.WithError(err).Error("reset solver roles failed")
	}
	s.liveNum = 0
	s.log.WithField("closed", len(closed)).Info("season ended")
	return true, nil
}

// Fetch returns a question for re-display; only done and active questions
// are fetchable. The answer is withheld unless the question is done.
func (s *Service) Fetch(ctx context.Context, num int) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.master(ctx)
	if err != nil {
		return Question{}, err
	}
	if !validNum(ms, num) {
		return Question{}, fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	st := statusAt(ms, num)
	if st != StatusDone && st != StatusActive {
		return Question{}, fmt.Errorf("%w: question %d is not fetchable", ErrNotFound, num)
	}
	q := questionAt(ms, num)
	if err := s.notifier.PostQuestion(ctx, notify.QuestionPost{
		Num: q.Num, Date: q.Date, Weekday: q.Weekday, Links: q.Links,
		Creator: q.Creator, Difficulty: q.Difficulty,
	}); err != nil {
		s.log.WithError(err).Error("post question failed")
	}
	if st != StatusDone {
		q.Answer, q.Tolerance, q.Solution = "", "", ""
	}
	return q, nil
}

// Solution sets the solution link when link is non-empty, else returns
// the stored solution (done/active questions only).
func (s *Service) Solution(ctx context.Context, num int, link string) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	ms, err := s.master(ctx)
	if err != nil {
		return Question{}, err
	}
	if !validNum(ms, num) {
		return Question{}, fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	if link != "" {
		ms.SetCell(num, colSolution, link)
		if err := s.commit(ctx, gen, masterSheet); err != nil {
			return Question{}, err
		}
		s.log.WithField("qotd", num).Info("solution link updated")
		return questionAt(ms, num), nil
	}
	st := statusAt(ms, num)
	if st != StatusDone && st != StatusActive {
		return Question{}, fmt.Errorf("%w: solution for question %d not available yet", ErrNotFound, num)
	}
	return questionAt(ms, num), nil
}

// Upload appends a new pending question and returns its assigned number.
func (s *Service) Upload(ctx context.Context, in UploadInput) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	if err := validate.Struct(in); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if in.Tolerance == "" {
		in.Tolerance = "1"
	}

	ms, err := s.master(ctx)
	if err != nil {
		return 0, err
	}
	q := Question{
		Num:        ms.Rows(),
		Creator:    in.Creator,
		Source:     in.Source,
		Points:     in.Points,
		Links:      in.Links,
		Topic:      in.Topic,
		Difficulty: in.Difficulty,
		Answer:     in.Answer,
		Tolerance:  in.Tolerance,
		Status:     StatusPending,
	}
	ms.AppendRow(q.row())
	if err := s.commit(ctx, gen, masterSheet); err != nil {
		return 0, err
	}
	if err := s.notifier.PostQuestion(ctx, notify.QuestionPost{
		Num: q.Num, Links: q.Links, Creator: q.Creator, Source: q.Source,
		Topic: q.Topic, Difficulty: q.Difficulty, Answer: q.Answer, Tolerance: q.Tolerance,
	}); err != nil {
		s.log.WithError(err).Error("post question preview failed")
	}
	s.log.WithFields(logrus.Fields{"qotd": q.Num, "creator": q.Creator}).Info("question uploaded")
	return q.Num, nil
}

// Edit patches a question's metadata; empty fields keep prior values.
func (s *Service) Edit(ctx context.Context, num int, in EditInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	ms, err := s.master(ctx)
	if err != nil {
		return err
	}
	if !validNum(ms, num) {
		return fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	set := func(col int, v string) {
		if v != "" {
			ms.SetCell(num, col, v)
		}
	}
	set(colLinks, in.Links)
	set(colCreator, in.Creator)
	set(colTopic, in.Topic)
	set(colSource, in.Source)
	set(colDifficulty, in.Difficulty)
	set(colAnswer, in.Answer)
	set(colTolerance, in.Tolerance)
	if err := s.commit(ctx, gen, masterSheet); err != nil {
		return err
	}
	s.log.WithField("qotd", num).Info("question updated")
	return nil
}

// Delete removes a still-pending question and compacts subsequent row
// numbers by one. Any other status is rejected.
func (s *Service) Delete(ctx context.Context, num int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen

	ms, err := s.master(ctx)
	if err != nil {
		return err
	}
	if !validNum(ms, num) {
		return fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	if statusAt(ms, num) != StatusPending {
		return fmt.Errorf("%w: question %d is not pending", ErrInvalid, num)
	}

	grid := ms.Grid()
	next := make([][]string, 0, len(grid)-1)
	next = append(next, grid[:num]...)
	for i := num + 1; i < len(grid); i++ {
		row := append([]string(nil), grid[i]...)
		if len(row) > colNum {
			row[colNum] = strconv.Itoa(i - 1)
		}
		next = append(next, row)
	}
	ms.ReplaceAll(next)
	s.liveNum = 0
	if err := s.commit(ctx, gen, masterSheet); err != nil {
		return err
	}
	s.log.WithField("qotd", num).Info("pending question removed")
	return nil
}

// Pending lists pending questions, or the one requested when num > 0.
func (s *Service) Pending(ctx context.Context, num int) ([]Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.master(ctx)
	if err != nil {
		return nil, err
	}
	if num > 0 {
		if !validNum(ms, num) || statusAt(ms, num) != StatusPending {
			return nil, fmt.Errorf("%w: question %d is not pending", ErrInvalid, num)
		}
		return []Question{questionAt(ms, num)}, nil
	}
	var out []Question
	for i := 1; i < ms.Rows(); i++ {
		if statusAt(ms, i) == StatusPending {
			out = append(out, questionAt(ms, i))
		}
	}
	return out, nil
}

// Random picks a done question matching the filters.
func (s *Service) Random(ctx context.Context, f RandomFilters) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.master(ctx)
	if err != nil {
		return Question{}, err
	}
	var candidates []int
	for i := 1; i < ms.Rows(); i++ {
		if statusAt(ms, i) != StatusDone {
			continue
		}
		if f.Topic != "" && ms.Cell(i, colTopic) != f.Topic {
			continue
		}
		if f.Creator != "" && ms.Cell(i, colCreator) != f.Creator {
			continue
		}
		if f.Difficulty != "" && ms.Cell(i, colDifficulty) != f.Difficulty {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return Question{}, fmt.Errorf("%w: no done question matches", ErrNotFound)
	}
	num := candidates[rand.Intn(len(candidates))]
	q := questionAt(ms, num)
	if err := s.notifier.PostQuestion(ctx, notify.QuestionPost{
		Num: q.Num, Date: q.Date, Weekday: q.Weekday, Links: q.Links,
		Creator: q.Creator, Difficulty: q.Difficulty,
	}); err != nil {
		s.log.WithError(err).Error("post question failed")
	}
	return q, nil
}

// VerifySubmissions returns a user's recorded attempts with per-attempt
// verdicts for a live or active question.
func (s *Service) VerifySubmissions(ctx context.Context, userID string, num int) (SubmissionReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.master(ctx)
	if err != nil {
		return SubmissionReview{}, err
	}
	if !validNum(ms, num) {
		return SubmissionReview{}, fmt.Errorf("%w: invalid question number %d", ErrInvalid, num)
	}
	st := statusAt(ms, num)
	if st != StatusLive && st != StatusActive {
		return SubmissionReview{}, fmt.Errorf("%w: question %d has no open ledger", ErrNotFound, num)
	}
	ans, tol, err := answerAndTolerance(ms, num)
	if err != nil {
		return SubmissionReview{}, err
	}
	lg, err := s.wb.Sheet(ctx, ledgerSheet(num))
	if err != nil {
		return SubmissionReview{}, err
	}
	review := SubmissionReview{Num: num, UserID: userID}
	for _, row := range lg.Grid() {
		if len(row) == 0 || row[0] != userID {
			continue
		}
		for _, raw := range row[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			review.Attempts = append(review.Attempts, AttemptReview{
				Value:   raw,
				Correct: err == nil && grading.IsCorrect(ans, v, tol),
			})
		}
		break
	}
	return review, nil
}

// Scores returns a participant's score card: the merged ledger total
// (including any manual offset), the live question's provisional score,
// and the grand total.
func (s *Service) Scores(ctx context.Context, userID string) ([]ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, err := s.master(ctx)
	if err != nil {
		return nil, err
	}
	lb, err := s.wb.Sheet(ctx, leaderboardSheet)
	if err != nil {
		return nil, err
	}

	var out []ScoreEntry
	if v, ok := loadTotals(lb)[userID]; ok {
		out = append(out, ScoreEntry{Label: "Merged", Points: v})
	}
	if live, ok := s.findLive(ms); ok {
		ans, tol, err := answerAndTolerance(ms, live)
		if err != nil {
			return nil, err
		}
		lg, err := s.wb.Sheet(ctx, ledgerSheet(live))
		if err != nil {
			return nil, err
		}
		scores, _ := grading.Grade(lg.Grid(), ans, tol)
		if pts, ok := scores[userID]; ok {
			out = append(out, ScoreEntry{Label: fmt.Sprintf("QOTD %d", live), Points: pts})
		}
	}
	total := 0.0
	for _, e := range out {
		total += e.Points
	}
	out = append(out, ScoreEntry{Label: "Total", Points: total})
	return out, nil
}
