package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openroads/corridor/internal/clients/kmlfeed"
	"github.com/openroads/corridor/internal/clients/linearref"
	"github.com/openroads/corridor/internal/clients/osmways"
	"github.com/openroads/corridor/internal/config"
	"github.com/openroads/corridor/internal/logging"
	"github.com/openroads/corridor/internal/metrics"
	"github.com/openroads/corridor/internal/server"
	"github.com/openroads/corridor/internal/services"
	"github.com/openroads/corridor/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Build(logging.Config{Level: cfg.Log.Level, Console: cfg.Log.Console}, os.Stdout)

	var sources []services.RawSegmentSource
	for _, feed := range cfg.Sources.KMLFeeds {
		sources = append(sources, kmlfeed.NewClient(feed.URL, feed.ID, log))
	}
	for _, feed := range cfg.Sources.LinearRefs {
		sources = append(sources, linearref.NewClient(feed.URL, feed.ID, log))
	}
	if cfg.Sources.OSMExtract != "" {
		sources = append(sources, osmways.NewExtractor(cfg.Sources.OSMExtract, "osm", log))
	}
	if len(sources) == 0 {
		log.Warn().Msg("no geometry sources configured; corridors will publish empty")
	}

	prov := metrics.Init()
	svc := services.NewCorridorService(sources, cfg.Routes, cfg.Engine, store.NewStore(), prov, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("routes", len(cfg.Routes)).
		Int("sources", len(sources)).
		Msg("corridor engine starting")

	refresh := services.NewPeriodicRefresh(svc, cfg.Engine.RefreshInterval, log)
	refresh.Start(ctx)
	defer refresh.Stop()

	srv := server.New(svc, prov, log)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}
