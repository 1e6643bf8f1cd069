// Package config loads service configuration from defaults, an optional YAML
// file, and CORRIDOR_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/corridor"
	"github.com/openroads/corridor/internal/lib/matching"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Engine  EngineConfig  `koanf:"engine"`
	Log     LogConfig     `koanf:"log"`
	Routes  []RouteConfig `koanf:"routes"`
	Sources SourcesConfig `koanf:"sources"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type EngineConfig struct {
	MergeToleranceDeg     float64       `koanf:"merge_tolerance_deg"`
	BridgeToleranceMeters float64       `koanf:"bridge_tolerance_meters"`
	WindowMultiple        float64       `koanf:"window_multiple"`
	RejectRatio           float64       `koanf:"reject_ratio"`
	MaxSnapMeters         float64       `koanf:"max_snap_meters"`
	AlignmentOffsetMeters float64       `koanf:"alignment_offset_meters"`
	MatchCacheTTL         time.Duration `koanf:"match_cache_ttl"`
	MatchCacheSize        int           `koanf:"match_cache_size"`
	RefreshInterval       time.Duration `koanf:"refresh_interval"`
}

type LogConfig struct {
	Level   string `koanf:"level"`
	Console bool   `koanf:"console"`
}

// RouteConfig names a route to manage. Orientation is normally derived from
// the route number's parity and only needs setting for routes that defy it.
type RouteConfig struct {
	Ref         string `koanf:"ref"`
	Orientation string `koanf:"orientation"`
}

// Axis resolves the route's axis, honoring an explicit override.
func (r RouteConfig) Axis() (chain.Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(r.Orientation)) {
	case "":
	case "ew", "east-west":
		return chain.EastWest, nil
	case "ns", "north-south":
		return chain.NorthSouth, nil
	default:
		return 0, fmt.Errorf("route %s: unknown orientation %q", r.Ref, r.Orientation)
	}
	o, ok := chain.RouteOrientation(r.Ref)
	if !ok {
		return 0, fmt.Errorf("route %s: cannot derive orientation, set it explicitly", r.Ref)
	}
	return o, nil
}

type SourcesConfig struct {
	KMLFeeds   []FeedConfig `koanf:"kml_feeds"`
	LinearRefs []FeedConfig `koanf:"linear_refs"`
	OSMExtract string       `koanf:"osm_extract"`
}

type FeedConfig struct {
	ID  string `koanf:"id"`
	URL string `koanf:"url"`
}

func defaults() map[string]interface{} {
	m := matching.DefaultConfig()
	return map[string]interface{}{
		"server.addr":                    ":8080",
		"engine.merge_tolerance_deg":     chain.DefaultMergeToleranceDeg,
		"engine.bridge_tolerance_meters": corridor.DefaultBridgeToleranceMeters,
		"engine.window_multiple":         m.WindowMultiple,
		"engine.reject_ratio":            m.RejectRatio,
		"engine.max_snap_meters":         m.MaxSnapMeters,
		"engine.alignment_offset_meters": matching.DefaultAlignmentOffsetMeters,
		"engine.match_cache_ttl":         time.Minute,
		"engine.match_cache_size":        4096,
		"engine.refresh_interval":        6 * time.Hour,
		"log.level":                      "info",
		"log.console":                    false,
	}
}

// Load builds the configuration. path may be empty to run on defaults and
// environment alone.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("CORRIDOR_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CORRIDOR_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
