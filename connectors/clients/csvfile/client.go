// Package csvfile reads history from a local CSV export.
package csvfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kilianp07/lineplan/connectors"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/pkg/planio"
)

// Client reads rows from Path on every Fetch.
type Client struct {
	Path     string
	Resolver *personnel.Resolver
}

var _ connectors.HistorySource = (*Client)(nil)

func (c *Client) Fetch(_ context.Context, start, end time.Time) ([]model.Row, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	rows, err := planio.ReadRows(f, c.Resolver)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if connectors.InRange(r.Date, start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}
