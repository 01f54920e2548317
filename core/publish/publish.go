// Package publish hands a smoothed weekly plan to the shop floor.
package publish

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/lineplan/core/model"
)

// ErrNotConnected is returned when the transport lost its connection.
var ErrNotConnected = errors.New("publish: not connected")

// Plan is the outcome of one run as published downstream.
type Plan struct {
	RunID       string
	Week        string
	Rows        []model.Row
	Transfers   []model.AppliedTransfer
	Improvement model.Improvement
	Time        time.Time
}

// Lines returns the rows grouped by line in first-seen order.
func (p Plan) Lines() ([]string, map[string][]model.Row) {
	var order []string
	byLine := make(map[string][]model.Row)
	for _, r := range p.Rows {
		if _, ok := byLine[r.Line]; !ok {
			order = append(order, r.Line)
		}
		byLine[r.Line] = append(byLine[r.Line], r)
	}
	return order, byLine
}

// Publisher sends plans to an external system.
type Publisher interface {
	PublishPlan(ctx context.Context, p Plan) error
	Close() error
}

// Nop discards plans. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishPlan(context.Context, Plan) error { return nil }
func (Nop) Close() error                            { return nil }
