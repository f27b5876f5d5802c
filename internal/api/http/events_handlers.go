package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/phods-dev/qotd-service/internal/auth/middleware"
	"github.com/phods-dev/qotd-service/internal/audit"
)

type eventView struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// GET /qotd/{num}/events?user=  (defaults to the caller)
//
// The audit trail, unlike the ledger, includes staff submissions.
func ListEventsHandler(repo *audit.EventRepo) http.HandlerFunc {
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
		events, err := repo.ListByUser(r.Context(), user, num)
		if err != nil {
			http.Error(w, "list events", http.StatusInternalServerError)
			return
		}
		out := make([]eventView, 0, len(events))
		for _, e := range events {
			out = append(out, eventView{
				Type:      e.Type,
				Data:      json.RawMessage(e.DataJSON),
				CreatedAt: e.CreatedAt,
			})
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
