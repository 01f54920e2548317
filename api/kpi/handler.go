// Package kpi exposes daily load KPIs over HTTP.
package kpi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/lineplan/auth"
	kpistore "github.com/kilianp07/lineplan/infra/kpi"
)

type day struct {
	Date            string  `json:"date"`
	Weekday         string  `json:"weekday"`
	RunID           string  `json:"run_id"`
	Week            string  `json:"week"`
	TotalBefore     float64 `json:"total_before"`
	TotalAfter      float64 `json:"total_after"`
	Change          float64 `json:"change"`
	ViolationBefore bool    `json:"violation_before"`
	ViolationAfter  bool    `json:"violation_after"`
}

// NewHandler exposes KPIs via GET /api/kpi/daily?start=2025-03-03&end=2025-03-07.
// Missing bounds are open.
func NewHandler(store kpistore.Store, token string) http.Handler {
	return auth.RequireBearer(token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start, err := parseDay(r.URL.Query().Get("start"))
		if err != nil {
			http.Error(w, "invalid start", http.StatusBadRequest)
			return
		}
		end, err := parseDay(r.URL.Query().Get("end"))
		if err != nil {
			http.Error(w, "invalid end", http.StatusBadRequest)
			return
		}
		recs, err := store.Query(start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]day, len(recs))
		for i, d := range recs {
			out[i] = day{
				Date:            d.Date.Format(time.DateOnly),
				Weekday:         string(d.Weekday),
				RunID:           d.RunID,
				Week:            d.Week,
				TotalBefore:     d.TotalBefore,
				TotalAfter:      d.TotalAfter,
				Change:          d.Change(),
				ViolationBefore: d.ViolationBefore,
				ViolationAfter:  d.ViolationAfter,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
