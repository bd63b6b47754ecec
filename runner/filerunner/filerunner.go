package filerunner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/deduper"
	"github.com/Vector/vector-reviews-scraper/gmaps"
	"github.com/Vector/vector-reviews-scraper/runner"
	"github.com/Vector/vector-reviews-scraper/tlmt"
)

type fileRunner struct {
	cfg   *runner.Config
	log   *zap.Logger
	input io.ReadCloser
}

type stats struct {
	urls    int
	places  int
	pages   int
	missed  int
	skipped int
	invalid error
}

func New(cfg *runner.Config, log *zap.Logger) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeFile {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	ans := &fileRunner{
		cfg: cfg,
		log: log,
	}

	if err := ans.setInput(); err != nil {
		return nil, err
	}

	return ans, nil
}

func (r *fileRunner) Run(ctx context.Context) (err error) {
	var st stats

	t0 := time.Now().UTC()

	defer func() {
		elapsed := time.Now().UTC().Sub(t0)
		params := map[string]any{
			"url_count":   st.urls,
			"place_count": st.places,
			"page_count":  st.pages,
			"duration":    elapsed.String(),
		}

		if err != nil {
			params["error"] = err.Error()
		}

		evt := tlmt.NewEvent("file_runner", params)

		_ = runner.Telemetry().Send(ctx, evt)
	}()

	urls, err := runner.ReadURLs(r.input)
	if err != nil {
		return fmt.Errorf("read %s: %w", r.cfg.InputFile, err)
	}

	st.urls = len(urls)

	sess, err := runner.NewSession(ctx, r.cfg, "file", r.log)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, sess.Finish(ctx, err))
	}()

	dedup := deduper.New()

	for _, raw := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.process(ctx, sess, dedup, raw, &st); err != nil {
			return err
		}
	}

	invalid := multierr.Errors(st.invalid)

	r.log.Info("finished",
		zap.Int("urls", st.urls),
		zap.Int("places", st.places),
		zap.Int("pages", st.pages),
		zap.Int("not_found", st.missed),
		zap.Int("duplicates", st.skipped),
		zap.Int("invalid_urls", len(invalid)),
	)

	return nil
}

// process handles one URL start to finish. Only errors that must stop the
// batch are returned.
func (r *fileRunner) process(ctx context.Context, sess *runner.Session, dedup deduper.Deduper, raw string, st *stats) error {
	log := r.log.With(zap.String("url", raw))

	q, err := gmaps.ParsePlaceURL(raw)
	if err != nil {
		if r.cfg.Strict {
			return err
		}

		log.Error("skipping url", zap.Error(err))

		st.invalid = multierr.Append(st.invalid, err)

		return nil
	}

	dataID, ok, err := sess.Fetcher.ResolveDataID(ctx, q)
	if err != nil {
		return err
	}

	if !ok && r.cfg.URLDataIDFallback {
		if dataID = gmaps.ExtractDataIDFromURL(raw); dataID != "" {
			ok = true

			log.Info("using data id from url", zap.String("data_id", dataID))
		}
	}

	if !ok {
		log.Error("Data ID not found for " + raw)

		st.missed++

		return nil
	}

	if r.cfg.SkipDuplicates && !dedup.AddIfNotExists(ctx, dataID) {
		log.Info("skipping duplicate place", zap.String("data_id", dataID))

		st.skipped++

		return nil
	}

	pages, err := sess.Fetcher.FetchReviews(ctx, dataID, r.cfg.MaxPages)
	st.pages += pages

	if err != nil {
		return err
	}

	st.places++

	return nil
}

func (r *fileRunner) Close(context.Context) error {
	if r.input == nil {
		return nil
	}

	err := r.input.Close()
	r.input = nil

	return err
}

func (r *fileRunner) setInput() error {
	switch r.cfg.InputFile {
	case "-", "stdin":
		r.input = io.NopCloser(os.Stdin)
	default:
		f, err := os.Open(r.cfg.InputFile)
		if err != nil {
			return err
		}

		r.input = f
	}

	return nil
}
