package factory

import (
	"context"
	"fmt"

	"github.com/kilianp07/lineplan/auth"
	"github.com/kilianp07/lineplan/connectors"
	"github.com/kilianp07/lineplan/connectors/clients/csvfile"
	"github.com/kilianp07/lineplan/connectors/clients/erp"
	"github.com/kilianp07/lineplan/core/personnel"
)

const (
	IDCSV = "csv"
	IDERP = "erp"
)

const errUnknownClient = "unknown history source: %s"

// NewHistorySource builds the source selected by cfg.Type.
func NewHistorySource(ctx context.Context, cfg connectors.Config, r *personnel.Resolver) (connectors.HistorySource, error) {
	switch cfg.Type {
	case IDCSV:
		return &csvfile.Client{Path: cfg.Path, Resolver: r}, nil
	case IDERP:
		hc := auth.HTTPClient(ctx, cfg.Auth)
		if cfg.Timeout > 0 {
			c := *hc
			c.Timeout = cfg.Timeout
			hc = &c
		}
		return erp.New(cfg.URL, hc, r), nil
	default:
		return nil, fmt.Errorf(errUnknownClient, cfg.Type)
	}
}
