package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/vertexfoundry/cadviewer-bridge/attrsync"
	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
	"github.com/vertexfoundry/cadviewer-bridge/internal/observability"
	"github.com/vertexfoundry/cadviewer-bridge/internal/pacing"
	"github.com/vertexfoundry/cadviewer-bridge/internal/script"
	"github.com/vertexfoundry/cadviewer-bridge/viewer"
)

func main() {
	scriptPath := flag.String("script", "configs/sample_session.yaml", "Path to a YAML session script")
	scenePath := flag.String("scene", "", "Path to a JSON shapes payload overriding the script's scene shapes")
	recordPath := flag.String("record", "", "Path for the JSONL transcript (default stdout)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables the listener")
	speed := flag.Float64("speed", 1.0, "Playback speed multiplier for scripted delays")
	immediate := flag.Bool("immediate", false, "Ignore scripted delays entirely")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	viewerMetrics, err := observability.NewViewerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise viewer metrics", logging.Err(err))
		os.Exit(1)
	}
	runnerMetrics, err := observability.NewRunnerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise runner metrics", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, viewerMetrics, log)

	sc, err := script.Load(*scriptPath)
	if err != nil {
		log.Error(ctx, "failed to load session script", logging.String("path", *scriptPath), logging.Err(err))
		os.Exit(1)
	}

	out := os.Stdout
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			log.Error(ctx, "failed to open transcript", logging.String("path", *recordPath), logging.Err(err))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	v, err := viewer.New(viewer.WithLogger(log), viewer.WithMetrics(viewerMetrics))
	if err != nil {
		log.Error(ctx, "failed to construct viewer", logging.Err(err))
		os.Exit(1)
	}
	if err := v.Attach(ctx, attrsync.NewRecorder(out)); err != nil {
		log.Error(ctx, "failed to attach recorder channel", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "viewer attached",
		logging.String("viewer_id", v.ID()),
		logging.Int("steps", len(sc.Steps)),
	)

	if sc.Scene != nil {
		shapes, err := sceneShapes(sc.Scene, *scenePath)
		if err != nil {
			log.Error(ctx, "failed to resolve scene shapes", logging.Err(err))
			os.Exit(1)
		}
		opts := sc.Scene.Options
		if err := v.SubmitScene(ctx, shapes, sc.Scene.States, &opts); err != nil {
			log.Error(ctx, "scene submission failed", logging.Err(err))
			os.Exit(1)
		}
	}

	mode := pacing.Paced
	if *immediate {
		mode = pacing.Immediate
	}
	pacer := pacing.NewPacer(*speed, mode)

	if err := runScript(ctx, v, sc.Steps, pacer, runnerMetrics, log); err != nil {
		log.Error(ctx, "script failed", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "script complete",
		logging.Int("steps", len(sc.Steps)),
		logging.String("script_time", pacer.Elapsed().String()),
	)

	if metricsSrv != nil {
		log.Info(ctx, "serving metrics until interrupted", logging.String("addr", *metricsAddr))
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.ViewerCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// sceneShapes resolves the scene's shapes payload: the -scene override wins,
// then the script's shapes_file, then its inline shapes value.
func sceneShapes(scene *script.Scene, override string) (any, error) {
	path := scene.ShapesFile
	if override != "" {
		path = override
	}
	if path == "" {
		return scene.Shapes, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shapes payload: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("shapes payload %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}
