// Package queryrunner fetches the reviews of a single place given as a free
// text query and a map center.
package queryrunner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/gmaps"
	"github.com/Vector/vector-reviews-scraper/runner"
	"github.com/Vector/vector-reviews-scraper/tlmt"
)

type queryRunner struct {
	cfg *runner.Config
	log *zap.Logger
}

func New(cfg *runner.Config, log *zap.Logger) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeQuery {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	return &queryRunner{cfg: cfg, log: log}, nil
}

func (r *queryRunner) Run(ctx context.Context) (err error) {
	var pages int

	t0 := time.Now().UTC()

	defer func() {
		params := map[string]any{
			"page_count": pages,
			"duration":   time.Now().UTC().Sub(t0).String(),
		}

		if err != nil {
			params["error"] = err.Error()
		}

		_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("query_runner", params))
	}()

	sess, err := runner.NewSession(ctx, r.cfg, "query", r.log)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, sess.Finish(ctx, err))
	}()

	q := gmaps.PlaceQuery{
		Query:     r.cfg.Query,
		Latitude:  r.cfg.Latitude,
		Longitude: r.cfg.Longitude,
	}

	log := r.log.With(zap.String("query", q.Query))

	dataID, ok, err := sess.Fetcher.ResolveDataID(ctx, q)
	if err != nil {
		return err
	}

	if !ok {
		log.Error("Data ID not found")

		return nil
	}

	pages, err = sess.Fetcher.FetchReviews(ctx, dataID, r.cfg.MaxPages)
	if err != nil {
		return err
	}

	log.Info("finished", zap.String("data_id", dataID), zap.Int("pages", pages))

	return nil
}

func (r *queryRunner) Close(context.Context) error {
	return nil
}
