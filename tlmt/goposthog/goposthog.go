// Package goposthog sends telemetry events to PostHog.
package goposthog

import (
	"context"
	"errors"

	"github.com/posthog/posthog-go"
	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/tlmt"
)

const DefaultEndpoint = "https://eu.i.posthog.com"

var ErrMissingAPIKey = errors.New("posthog api key is required")

type service struct {
	client posthog.Client
	log    *zap.Logger
}

func New(apiKey, endpoint string, log *zap.Logger) (tlmt.Telemetry, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if log == nil {
		log = zap.NewNop()
	}

	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}

	return &service{client: client, log: log}, nil
}

func (s *service) Send(_ context.Context, event tlmt.Event) error {
	props := posthog.NewProperties()
	for k, v := range event.Properties {
		props.Set(k, v)
	}

	capture := posthog.Capture{
		DistinctId: event.AnonymousID,
		Event:      event.Name,
		Properties: props,
	}

	if err := capture.Validate(); err != nil {
		return err
	}

	s.log.Debug("sending telemetry event", zap.String("event", event.Name))

	return s.client.Enqueue(capture)
}

func (s *service) Close() error {
	return s.client.Close()
}
