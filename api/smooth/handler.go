// Package smooth exposes the optimizer over HTTP.
package smooth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kilianp07/lineplan/auth"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/core/smoothing"
	"github.com/kilianp07/lineplan/pkg/planio"
)

// maxBody bounds the request size.
const maxBody = 8 << 20

// Smoother runs one optimization over a plan.
type Smoother interface {
	Smooth(ctx context.Context, rows []model.Row, maxTransfers int) (planio.Report, error)
}

// Row is the wire form of a plan row. Dates use the CSV formats. When the
// personnel flag is omitted it is resolved from the product name.
type Row struct {
	Date               string        `json:"date"`
	Weekday            model.Weekday `json:"weekday,omitempty"`
	Line               string        `json:"line"`
	Hours              float64       `json:"hours"`
	PersonnelIntensive *bool         `json:"personnel_intensive,omitempty"`
	Product            string        `json:"product,omitempty"`
}

// Request is the body of POST /api/smooth.
type Request struct {
	MaxTransfers *int  `json:"max_transfers,omitempty"`
	Rows         []Row `json:"rows"`
}

// Handler serves POST /api/smooth.
type Handler struct {
	svc        Smoother
	resolver   *personnel.Resolver
	defaultMax int
}

// NewHandler returns the handler wrapped in bearer authentication.
// defaultMax applies when the request omits max_transfers.
func NewHandler(svc Smoother, r *personnel.Resolver, defaultMax int, token string) http.Handler {
	return auth.RequireBearer(token, &Handler{svc: svc, resolver: r, defaultMax: defaultMax})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.rows(req.Rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	budget := h.defaultMax
	if req.MaxTransfers != nil {
		budget = *req.MaxTransfers
	}
	rep, err := h.svc.Smooth(r.Context(), rows, budget)
	switch {
	case errors.Is(err, model.ErrInvalidGrid), errors.Is(err, smoothing.ErrInvalidBudget):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep.Rounded()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) rows(in []Row) ([]model.Row, error) {
	out := make([]model.Row, 0, len(in))
	for i, r := range in {
		d, err := planio.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		row := model.Row{Date: d, Weekday: r.Weekday, Line: r.Line, Hours: r.Hours, Product: r.Product}
		if r.PersonnelIntensive != nil {
			row.PersonnelIntensive = *r.PersonnelIntensive
		} else {
			row.PersonnelIntensive = h.resolver.IsPersonnelIntensive(r.Product)
		}
		out = append(out, row)
	}
	return out, nil
}
