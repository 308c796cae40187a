/*
Package app assembles the report pipeline and its upstream clients from
configuration. Both the web server and the CLI build their services here.
*/
package app

import (
	"context"
	"fmt"

	"github.com/shanehull/digmap/internal/aggregate"
	"github.com/shanehull/digmap/internal/ai"
	"github.com/shanehull/digmap/internal/config"
	"github.com/shanehull/digmap/internal/geo"
	"github.com/shanehull/digmap/internal/notify"
	"github.com/shanehull/digmap/internal/pipeline"
	"github.com/shanehull/digmap/internal/scrape"
	"github.com/shanehull/digmap/internal/weather"
)

type Services struct {
	Resolver  *geo.Resolver
	Generator *ai.Generator
	Pipeline  *pipeline.Pipeline
}

func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	provider, err := NewGeoProvider(cfg.Geocoder)
	if err != nil {
		return nil, err
	}

	backend, err := NewBackend(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	resolver := geo.NewResolver(provider, geo.Options{
		CacheSize: cfg.Geocoder.CacheSize,
		Fallback:  cfg.Geocoder.FallbackName,
	})
	generator := ai.NewGenerator(backend, cfg.AI.AnalysisTimeout, cfg.AI.ChatTimeout)

	catalog := scrape.DefaultCatalog(scrape.Options{
		UserAgent:       cfg.Scrape.UserAgent,
		Timeout:         cfg.Scrape.Timeout,
		PolitenessDelay: cfg.Scrape.PolitenessDelay,
	})

	p := pipeline.New(pipeline.Config{
		Resolver:  resolver,
		Generator: generator,
		Weather: &weather.Client{
			BaseURL: cfg.Weather.BaseURL,
			Timeout: cfg.Weather.Timeout,
		},
		Catalog:    catalog,
		Aggregator: aggregate.Aggregator{Concurrency: cfg.Scrape.Concurrency},
		RadiusKM:   cfg.Pipeline.RadiusKM,
	})

	return &Services{
		Resolver:  resolver,
		Generator: generator,
		Pipeline:  p,
	}, nil
}

// NewGeoProvider returns the geocoding backend named by cfg.Provider.
func NewGeoProvider(cfg config.GeocoderConfig) (geo.Provider, error) {
	switch cfg.Provider {
	case "google":
		g, err := geo.NewGoogle(cfg.GoogleAPIKey, cfg.CountryCodes, cfg.Language)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "nominatim", "":
		return &geo.Nominatim{
			BaseURL:      cfg.BaseURL,
			UserAgent:    cfg.UserAgent,
			CountryCodes: cfg.CountryCodes,
			Language:     cfg.Language,
			Timeout:      cfg.Timeout,
		}, nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}

// NewBackend returns the text generation backend named by cfg.Backend.
func NewBackend(ctx context.Context, cfg config.AIConfig) (ai.Backend, error) {
	switch cfg.Backend {
	case "gemini":
		g, err := ai.NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "chat", "":
		return &ai.ChatCompletions{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		}, nil
	default:
		return nil, fmt.Errorf("unknown ai backend %q", cfg.Backend)
	}
}

// EmailConfig maps SMTP settings onto the notifier's sender configuration.
func EmailConfig(s config.SMTPConfig) notify.EmailConfig {
	from := s.FromEmail
	if from == "" {
		from = s.User
	}
	return notify.EmailConfig{
		SMTPServer: s.Server,
		SMTPPort:   s.Port,
		SMTPUser:   s.User,
		SMTPPass:   s.Pass,
		FromEmail:  from,
		ToEmail:    s.ToEmail,
		Enabled:    s.Enabled(),
	}
}
