package runner

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/gmaps"
	"github.com/Vector/vector-reviews-scraper/journal"
	"github.com/Vector/vector-reviews-scraper/s3uploader"
	"github.com/Vector/vector-reviews-scraper/serpapi"
	"github.com/Vector/vector-reviews-scraper/writers"
)

// Session holds what one run needs to fetch and persist reviews: the API
// client, the writer chain and, when configured, an open journal run.
type Session struct {
	Fetcher *gmaps.ReviewsFetcher

	writer  writers.PageWriter
	journal *journal.Journal
	runID   string
	log     *zap.Logger
}

func NewSession(ctx context.Context, cfg *Config, mode string, log *zap.Logger) (*Session, error) {
	clientOpts := []serpapi.Option{serpapi.WithLogger(log)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, serpapi.WithBaseURL(cfg.Endpoint))
	}

	client, err := serpapi.New(cfg.APIKey, clientOpts...)
	if err != nil {
		return nil, err
	}

	fileWriter, err := writers.NewFileWriter(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	ans := &Session{log: log}
	chain := []writers.PageWriter{fileWriter}

	if cfg.S3Bucket != "" {
		uploader := cfg.S3Uploader
		if uploader == nil {
			uploader, err = s3uploader.New(ctx, cfg.AwsAccessKey, cfg.AwsSecretKey, cfg.AwsRegion)
			if err != nil {
				return nil, err
			}
		}

		chain = append(chain, writers.NewS3Writer(uploader, cfg.S3Bucket, cfg.S3Prefix))
	}

	if cfg.JournalDSN != "" {
		ans.journal, err = journal.Open(ctx, cfg.JournalDSN)
		if err != nil {
			return nil, err
		}

		ans.runID, err = ans.journal.StartRun(ctx, mode)
		if err != nil {
			_ = ans.journal.Close()

			return nil, err
		}

		log.Info("journal run started", zap.String("run_id", ans.runID))

		chain = append(chain, writers.NewJournalWriter(ans.journal, ans.runID))
	}

	ans.writer = writers.NewMultiWriter(chain...)

	ans.Fetcher = gmaps.NewReviewsFetcher(client, ans.writer,
		gmaps.WithLogger(log),
		gmaps.WithLanguage(cfg.LangCode),
		gmaps.WithZoom(cfg.Zoom),
	)

	return ans, nil
}

// RunID is the journal run id, empty without a journal.
func (s *Session) RunID() string {
	return s.runID
}

// Finish closes the writers and marks the journal run finished with runErr.
func (s *Session) Finish(ctx context.Context, runErr error) error {
	err := s.writer.Close()

	if s.journal != nil {
		if ferr := s.journal.FinishRun(context.WithoutCancel(ctx), s.runID, runErr); ferr != nil {
			err = multierr.Append(err, fmt.Errorf("finish journal run: %w", ferr))
		}

		err = multierr.Append(err, s.journal.Close())
	}

	return err
}
