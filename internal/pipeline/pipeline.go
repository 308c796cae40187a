/*
Package pipeline chains place resolution, source aggregation and narrative
generation for one coordinate.
*/
package pipeline

import (
	"context"
	"sync"

	"github.com/shanehull/digmap/internal/aggregate"
	"github.com/shanehull/digmap/internal/ai"
	"github.com/shanehull/digmap/internal/scrape"
	"github.com/shanehull/digmap/internal/telemetry"
	"github.com/shanehull/digmap/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

const DefaultRadiusKM = 5

type PlaceResolver interface {
	ReverseResolve(ctx context.Context, coord types.Coordinate) string
}

type Generator interface {
	Summarize(ctx context.Context, mode ai.Mode, prompt string) string
}

type WeatherLookup interface {
	CurrentWeather(ctx context.Context, coord types.Coordinate) *types.WeatherReport
}

type Config struct {
	Resolver   PlaceResolver
	Generator  Generator
	Weather    WeatherLookup
	Catalog    scrape.Catalog
	Aggregator aggregate.Aggregator
	RadiusKM   int
}

type Pipeline struct {
	resolver   PlaceResolver
	generator  Generator
	weather    WeatherLookup
	catalog    scrape.Catalog
	aggregator aggregate.Aggregator
	radiusKM   int
}

func New(cfg Config) *Pipeline {
	if cfg.RadiusKM <= 0 {
		cfg.RadiusKM = DefaultRadiusKM
	}
	return &Pipeline{
		resolver:   cfg.Resolver,
		generator:  cfg.Generator,
		weather:    cfg.Weather,
		catalog:    cfg.Catalog,
		aggregator: cfg.Aggregator,
		radiusKM:   cfg.RadiusKM,
	}
}

// Report is everything shown for one coordinate.
type Report struct {
	Coordinate types.Coordinate
	Place      string
	Weather    *types.WeatherReport
	Region     string
	Historical string
}

// AnalyzeRegion resolves the place at coord, aggregates the forum group and
// generates a region analysis. It never fails; the generator supplies a fallback.
func (p *Pipeline) AnalyzeRegion(ctx context.Context, coord types.Coordinate) string {
	return p.analyzeRegion(ctx, coord, p.resolve(ctx, coord))
}

// HistoricalAnalysis aggregates the historical groups for the place at coord and
// generates from their combined text, even when every group is empty.
func (p *Pipeline) HistoricalAnalysis(ctx context.Context, coord types.Coordinate) string {
	return p.historicalAnalysis(ctx, coord, p.resolve(ctx, coord))
}

// Report resolves the place once, then fetches weather and both analyses concurrently.
func (p *Pipeline) Report(ctx context.Context, coord types.Coordinate) Report {
	return p.report(ctx, coord, true)
}

// RegionReport is Report without the historical analysis.
func (p *Pipeline) RegionReport(ctx context.Context, coord types.Coordinate) Report {
	return p.report(ctx, coord, false)
}

func (p *Pipeline) report(ctx context.Context, coord types.Coordinate, historical bool) Report {
	ctx, span := telemetry.Start(ctx, "pipeline.report", coordAttrs(coord)...)
	defer span.End()
	span.SetAttributes(attribute.Bool("historical", historical))

	r := Report{Coordinate: coord, Place: p.resolve(ctx, coord)}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.Weather = p.currentWeather(ctx, coord)
	}()
	go func() {
		defer wg.Done()
		r.Region = p.analyzeRegion(ctx, coord, r.Place)
	}()
	if historical {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Historical = p.historicalAnalysis(ctx, coord, r.Place)
		}()
	}
	wg.Wait()

	return r
}

func (p *Pipeline) resolve(ctx context.Context, coord types.Coordinate) string {
	ctx, span := telemetry.Start(ctx, "pipeline.reverse_resolve", coordAttrs(coord)...)
	defer span.End()

	place := p.resolver.ReverseResolve(ctx, coord)
	span.SetAttributes(attribute.String("place", place))
	return place
}

func (p *Pipeline) currentWeather(ctx context.Context, coord types.Coordinate) *types.WeatherReport {
	ctx, span := telemetry.Start(ctx, "pipeline.weather", coordAttrs(coord)...)
	defer span.End()

	return p.weather.CurrentWeather(ctx, coord)
}

func (p *Pipeline) analyzeRegion(ctx context.Context, coord types.Coordinate, place string) string {
	ctx, span := telemetry.Start(ctx, "pipeline.analyze_region", attribute.String("place", place))
	defer span.End()

	forum := p.catalog.Forum
	doc := p.aggregator.Aggregate(ctx, forum.Label, place, forum.Fetchers)
	span.SetAttributes(
		attribute.Int("snippets", len(doc.Snippets)),
		attribute.Int("failures", len(doc.Failures)),
	)

	prompt := ai.RegionPrompt(place, coord, p.radiusKM, aggregate.Render(doc))
	return p.generator.Summarize(ctx, ai.RegionAnalysis, prompt)
}

func (p *Pipeline) historicalAnalysis(ctx context.Context, coord types.Coordinate, place string) string {
	ctx, span := telemetry.Start(ctx, "pipeline.historical_analysis", attribute.String("place", place))
	defer span.End()

	docs := p.aggregator.AggregateGroups(ctx, place, p.catalog.Historical())

	empty := 0
	for _, d := range docs {
		if d.Empty {
			empty++
		}
	}
	span.SetAttributes(attribute.Int("groups", len(docs)), attribute.Int("empty_groups", empty))

	prompt := ai.HistoricalPrompt(place, coord, aggregate.Combine(docs...))
	return p.generator.Summarize(ctx, ai.HistoricalAnalysis, prompt)
}

func coordAttrs(coord types.Coordinate) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("lat", coord.Lat),
		attribute.Float64("lon", coord.Lon),
	}
}
