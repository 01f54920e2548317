// Package erp fetches history from the planning ERP's CSV export endpoint.
package erp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/lineplan/connectors"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/pkg/planio"
)

// Client issues GET <url>?start_date=..&end_date=.. and parses the CSV body.
type Client struct {
	baseURL  string
	http     *http.Client
	resolver *personnel.Resolver
}

var _ connectors.HistorySource = (*Client)(nil)

// New builds a client. hc carries authentication and timeouts.
func New(baseURL string, hc *http.Client, r *personnel.Resolver) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: hc, resolver: r}
}

// Fetch retrieves rows for the date range. The server filters; rows outside
// the range are dropped anyway.
func (c *Client) Fetch(ctx context.Context, start, end time.Time) ([]model.Row, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	if !start.IsZero() {
		q.Set("start_date", start.Format(time.DateOnly))
	}
	if !end.IsZero() {
		q.Set("end_date", end.Format(time.DateOnly))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	rows, err := planio.ReadRows(resp.Body, c.resolver)
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
