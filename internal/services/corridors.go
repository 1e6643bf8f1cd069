// Package services composes the reconciliation engine into the operations the
// server exposes: rebuilds, lookups, event matching, and exports.
package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/cache"
	"github.com/openroads/corridor/internal/config"
	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/corridor"
	"github.com/openroads/corridor/internal/lib/geo"
	"github.com/openroads/corridor/internal/lib/matching"
	"github.com/openroads/corridor/internal/metrics"
	"github.com/openroads/corridor/internal/store"
)

// RawSegmentSource is one upstream geometry provider. Adapters normalize
// whatever the provider publishes into raw segments for a single route.
type RawSegmentSource interface {
	Name() string
	Segments(ctx context.Context, routeRef string) ([]chain.RawSegment, error)
}

// CorridorService owns the rebuild pipeline and serves match requests against
// the published corridor snapshots.
type CorridorService struct {
	sources   []RawSegmentSource
	routes    []config.RouteConfig
	builder   *chain.Builder
	assembler *corridor.Assembler
	store     *store.Store
	matcher   *matching.Matcher
	matches   *cache.MatchCache
	metrics   *metrics.Provider
	log       zerolog.Logger
}

// NewCorridorService wires the pipeline together. metrics may be nil in
// tests.
func NewCorridorService(
	sources []RawSegmentSource,
	routes []config.RouteConfig,
	engine config.EngineConfig,
	st *store.Store,
	prov *metrics.Provider,
	log zerolog.Logger,
) *CorridorService {
	matchCfg := matching.Config{
		WindowMultiple: engine.WindowMultiple,
		RejectRatio:    engine.RejectRatio,
		MaxSnapMeters:  engine.MaxSnapMeters,
	}
	return &CorridorService{
		sources:   sources,
		routes:    routes,
		builder:   chain.NewBuilder(engine.MergeToleranceDeg, log),
		assembler: corridor.NewAssembler(engine.BridgeToleranceMeters, log),
		store:     st,
		matcher:   matching.NewMatcher(matchCfg, log),
		matches:   cache.NewMatchCache(engine.MatchCacheSize, engine.MatchCacheTTL),
		metrics:   prov,
		log:       log,
	}
}

// Routes returns the configured route set.
func (s *CorridorService) Routes() []config.RouteConfig {
	return s.routes
}

// RebuildRoute regenerates both directional corridors for one route from all
// configured sources and publishes them wholesale. Failing sources are logged
// and skipped; the rebuild proceeds on whatever geometry arrived.
func (s *CorridorService) RebuildRoute(ctx context.Context, route config.RouteConfig) error {
	started := time.Now()

	axis, err := route.Axis()
	if err != nil {
		return err
	}

	var segs []chain.RawSegment
	var failures int
	for _, src := range s.sources {
		got, err := src.Segments(ctx, route.Ref)
		if err != nil {
			failures++
			s.log.Warn().
				Err(err).
				Str("route", route.Ref).
				Str("source", src.Name()).
				Msg("source failed, continuing without it")
			continue
		}
		segs = append(segs, got...)
	}
	if len(s.sources) > 0 && failures == len(s.sources) {
		return fmt.Errorf("all %d sources failed for route %s", failures, route.Ref)
	}

	chains := s.builder.Build(segs)

	buckets := map[chain.Direction][]chain.Chain{}
	for _, ch := range chains {
		if chain.Disordered(ch.Points) {
			pts, report := chain.Resequence(ch.Points)
			ch.Points = pts
			s.log.Info().
				Str("route", route.Ref).
				Int("points", report.PointCount).
				Int("remaining_jumps", report.RemainingJumps).
				Msg("resequenced disordered chain")
		}
		dir, oriented := chain.Classify(ch, axis)
		buckets[dir] = append(buckets[dir], oriented)
	}

	for _, dir := range chain.DirectionsFor(axis) {
		c := s.assembler.Assemble(route.Ref, dir, buckets[dir])
		s.store.Publish(&c)
		s.matcher.Invalidate(c.ID)
		if s.metrics != nil {
			s.metrics.CorridorGaps.WithLabelValues(c.ID).Set(float64(len(c.Gaps)))
		}
		s.log.Info().
			Str("corridor", c.ID).
			Int("points", len(c.Points)).
			Float64("length_meters", c.LengthMeters).
			Int("gaps", len(c.Gaps)).
			Strs("sources", c.SourceSummary).
			Msg("published corridor")
	}

	s.matches.Purge()
	if s.metrics != nil {
		s.metrics.RebuildDuration.Observe(time.Since(started).Seconds())
	}
	return nil
}

// RebuildAll rebuilds every configured route concurrently. Route failures are
// collected, not fatal to the other routes.
func (s *CorridorService) RebuildAll(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(s.routes))

	for i, route := range s.routes {
		wg.Add(1)
		go func(i int, route config.RouteConfig) {
			defer wg.Done()
			if err := s.RebuildRoute(ctx, route); err != nil {
				s.log.Error().Err(err).Str("route", route.Ref).Msg("route rebuild failed")
				errs[i] = fmt.Errorf("route %s: %w", route.Ref, err)
			}
		}(i, route)
	}
	wg.Wait()

	var failed []string
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err.Error())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("rebuild incomplete: %s", strings.Join(failed, "; "))
	}
	return nil
}

// RouteByRef finds a configured route by any spelling of its ref.
func (s *CorridorService) RouteByRef(ref string) (config.RouteConfig, bool) {
	for _, r := range s.routes {
		if chain.SameRoute(r.Ref, ref) {
			return r, true
		}
	}
	return config.RouteConfig{}, false
}

// GetCorridor returns a published corridor snapshot by ID.
func (s *CorridorService) GetCorridor(corridorID string) (*corridor.Corridor, error) {
	return s.store.Get(corridorID)
}

// GapReport returns the recorded coverage gaps for every published corridor.
func (s *CorridorService) GapReport() map[string][]corridor.Gap {
	return s.store.GapReport()
}

// MatchEvent snaps an event onto its corridor. Resolution prefers an explicit
// corridor ID, then route ref plus direction. An unresolvable corridor yields
// the straight-line fallback rather than an error; only malformed events fail.
func (s *CorridorService) MatchEvent(ctx context.Context, ev matching.Event) (matching.MatchedGeometry, error) {
	if ev.ID == "" {
		return matching.MatchedGeometry{}, fmt.Errorf("event is missing an id")
	}
	if !geo.Valid(ev.Start) || !geo.Valid(ev.End) {
		return matching.MatchedGeometry{}, fmt.Errorf("event %s has out-of-range coordinates", ev.ID)
	}

	if mg, ok := s.matches.Get(ev); ok {
		return mg, nil
	}

	c, err := s.resolveCorridor(ev)
	if err != nil {
		s.log.Info().Err(err).Str("event", ev.ID).Msg("straight-line fallback")
		mg := matching.StraightLine(ev)
		s.record(mg)
		return mg, nil
	}

	mg := s.matcher.Match(ctx, c, ev)
	s.matches.Put(ev, mg)
	s.record(mg)
	return mg, nil
}

func (s *CorridorService) record(mg matching.MatchedGeometry) {
	if s.metrics == nil {
		return
	}
	s.metrics.MatchTotal.WithLabelValues(string(mg.Source)).Inc()
	if mg.Source == matching.SourceMatched {
		s.metrics.MatchRatio.Observe(mg.Ratio)
	}
}

// resolveCorridor maps an event's addressing fields to a published corridor.
func (s *CorridorService) resolveCorridor(ev matching.Event) (*corridor.Corridor, error) {
	if ev.CorridorID != "" {
		return s.store.Get(ev.CorridorID)
	}
	if ev.RouteRef == "" {
		return nil, fmt.Errorf("%w: event names neither corridor nor route", matching.ErrNoCorridor)
	}

	dir, ok := chain.ParseDirection(string(ev.Direction))
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized direction %q", matching.ErrNoCorridor, ev.Direction)
	}

	if c, err := s.store.Get(corridor.CorridorID(ev.RouteRef, dir)); err == nil {
		return c, nil
	}
	// The event's route spelling may differ from the configured one.
	if route, ok := s.RouteByRef(ev.RouteRef); ok {
		return s.store.Get(corridor.CorridorID(route.Ref, dir))
	}
	return nil, fmt.Errorf("%w: route %s %s", matching.ErrNoCorridor, ev.RouteRef, dir)
}

// Corridors returns every published corridor snapshot, ordered by ID.
func (s *CorridorService) Corridors() []*corridor.Corridor {
	ids := s.store.IDs()
	corridors := make([]*corridor.Corridor, 0, len(ids))
	for _, id := range ids {
		c, err := s.store.Get(id)
		if err != nil {
			continue
		}
		corridors = append(corridors, c)
	}
	return corridors
}

// WriteKML renders every published corridor as KML, ordered by ID.
func (s *CorridorService) WriteKML(w io.Writer) error {
	return corridor.WriteKML(w, s.Corridors())
}
