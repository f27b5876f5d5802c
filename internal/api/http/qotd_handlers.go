package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/phods-dev/qotd-service/internal/auth/middleware"
	"github.com/phods-dev/qotd-service/internal/qotd"
	"github.com/phods-dev/qotd-service/internal/rbac"
)

// writeErr maps service error kinds onto HTTP statuses. Anything outside
// the taxonomy is an internal error and stays opaque to the client.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, qotd.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, qotd.ErrNotFound),
		errors.Is(err, qotd.ErrNoLive),
		errors.Is(err, qotd.ErrNoPending):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, qotd.ErrStale):
		http.Error(w, "service state was reset, retry", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func numParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "num"))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("num must be a positive integer")
	}
	return n, nil
}

func callerFrom(r *http.Request) qotd.Caller {
	ctx := r.Context()
	return qotd.Caller{
		ID:    authmw.SubjectFromContext(ctx),
		Name:  authmw.DisplayNameFromContext(ctx),
		Staff: rbac.IsStaff(rbac.RoleFromContext(ctx)),
	}
}

// GET /qotd/{num}
func FetchQuestionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := svc.Fetch(r.Context(), num)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// GET /qotd/random?topic=&creator=&difficulty=
func RandomQuestionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Random(r.Context(), qotd.RandomFilters{
			Topic:      r.URL.Query().Get("topic"),
			Creator:    r.URL.Query().Get("creator"),
			Difficulty: r.URL.Query().Get("difficulty"),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

type submitReq struct {
	Num    int    `json:"num,omitempty"` // 0 targets the live question
	Answer string `json:"answer"`
}

// POST /qotd/submissions
func SubmitHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.Submit(r.Context(), callerFrom(r), req.Num, req.Answer)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /qotd/{num}/submissions?user=  (defaults to the caller)
func VerifySubmissionsHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user := r.URL.Query().Get("user")
		if user == "" {
			user = authmw.SubjectFromContext(r.Context())
		}
		rev, err := svc.VerifySubmissions(r.Context(), user, num)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(rev)
	}
}

// GET /scores
func ScoresHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := authmw.SubjectFromContext(r.Context())
		if user == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		entries, err := svc.Scores(r.Context(), user)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(entries)
	}
}

// POST /qotd
func UploadQuestionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req qotd.UploadInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		num, err := svc.Upload(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]int{"num": num})
	}
}

// PATCH /qotd/{num}
func EditQuestionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var req qotd.EditInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := svc.Edit(r.Context(), num, req); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /qotd/{num}
func DeleteQuestionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.Delete(r.Context(), num); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /qotd/pending and GET /qotd/pending/{num}
func PendingQuestionsHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num := 0
		if raw := chi.URLParam(r, "num"); raw != "" {
			var err error
			if num, err = numParam(r); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		list, err := svc.Pending(r.Context(), num)
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []qotd.Question{}
		}
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /qotd/{num}/solution
func GetSolutionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := svc.Solution(r.Context(), num, "")
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"solution": q.Solution})
	}
}

// PUT /qotd/{num}/solution  { "link": "..." }
func SetSolutionHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var req struct {
			Link string `json:"link"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Link == "" {
			http.Error(w, "link required", http.StatusBadRequest)
			return
		}
		if _, err := svc.Solution(r.Context(), num, req.Link); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /qotd/{num}/merge  { "undo": false }
func MergeLeaderboardHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := numParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var req struct {
			Undo bool `json:"undo,omitempty"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		if err := svc.MergeLeaderboard(r.Context(), num, !req.Undo); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /leaderboard/refresh
func RefreshLeaderboardHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := svc.UpdateLeaderboard(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"updated": ok})
	}
}

// POST /rollover
func RolloverHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Rollover(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /season/end. Call twice: the first arms, the second executes.
func EndSeasonHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		executed, err := svc.EndSeason(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"executed": executed})
	}
}

// POST /cache/reset
func CacheResetHandler(svc *qotd.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}
