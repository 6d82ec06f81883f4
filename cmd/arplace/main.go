// Package main is the entry point for the headless AR placement runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/app"
	"github.com/Faultbox/midgard-ar/internal/config"
	"github.com/Faultbox/midgard-ar/internal/logger"
	"github.com/Faultbox/midgard-ar/internal/metrics"
	"github.com/Faultbox/midgard-ar/internal/sim"
	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/ui"
)

// demoScenario runs when no scenario file is given: tracking converges,
// one chair is placed, then the user switches to a model that loads late.
const demoScenario = `
hit_test_source:
  after_frames: 2
loads:
  "./4.glb":
    after_frames: 10
steps:
  - action: session_start
  - action: no_frame
    repeat: 2
  - action: frame
    repeat: 3
  - action: frame
    at: [0, -1.2, -1.5]
  - action: trigger
  - action: select
    index: 3
  - action: trigger
  - action: frame
    at: [0.6, -1.2, -2]
    repeat: 8
  - action: trigger
  - action: session_end
`

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard AR placement ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	sc, err := loadScenario(cfg.Sim.Scenario)
	if err != nil {
		return err
	}

	m := metrics.New()
	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Addr, m)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	q := task.NewQueue()
	rt := sim.NewRuntime(q)
	sc.Apply(rt)

	rec := &ui.Recorder{}
	a, err := app.New(cfg, rt, rt, q, ui.Multi{ui.LogSink{}, rec}, m)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}
	defer a.Close()

	a.Start()
	if err := sim.Run(a, rt, sc, a.Catalog().Len()); err != nil {
		return fmt.Errorf("running scenario: %w", err)
	}

	printSummary(a, rt, rec)
	return nil
}

func loadScenario(path string) (*sim.Scenario, error) {
	if path == "" {
		logger.Info("no scenario given, running the built-in demo")
		return sim.ParseScenario([]byte(demoScenario))
	}
	sc, err := sim.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	logger.Info("scenario loaded", zap.String("path", path), zap.Int("steps", len(sc.Steps)))
	return sc, nil
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func printSummary(a *app.App, rt *sim.Runtime, rec *ui.Recorder) {
	placed := a.Placed()
	for _, p := range placed {
		tmpl, _ := a.Catalog().Resolve(p.Index)
		fmt.Printf("%s  model=%d (%s)  scale=%.3f  position=(%.3f, %.3f, %.3f)\n",
			p.ID, p.Index, tmpl.Source, p.Scale.X, p.Position.X, p.Position.Y, p.Position.Z)
	}

	fmt.Printf("\nframes: %d  ticks: %d  placed: %d  models loaded: %d/%d\n",
		rt.Frames(), a.Ticks(), len(placed), a.Catalog().LoadedCount(), a.Catalog().Len())
	if rec.FailureReason != "" {
		fmt.Printf("failure: %s\n", rec.FailureReason)
	}
}
