package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/physync/internal/config"
	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/internal/injector"
	"github.com/zeusync/physync/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "simd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	frames := flag.Uint64("frames", 0, "stop after this many frames, overrides the config when set")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return err
		}
	}
	if *frames > 0 {
		cfg.Simulation.Frames = *frames
	}

	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.Log.Error("shutdown failed", log.Error(err))
		}
	}()

	if err = rt.SpawnDemo(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *server.HTTPServer
	if cfg.Feed.Enabled {
		if srv, err = server.NewHTTPServer(cfg.Feed.Addr, cfg.Feed.Path, rt.Feed, rt.Log); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the frame limit ends the whole run, feed included
		defer stop()
		return rt.Run(ctx)
	})
	if srv != nil {
		g.Go(func() error { return srv.Serve(ctx) })
	}

	rt.Log.Info("simulation started",
		log.Int("frame_rate", cfg.Simulation.FrameRate),
		log.Uint64("frames", cfg.Simulation.Frames),
		log.Bool("feed", cfg.Feed.Enabled),
	)
	return g.Wait()
}
