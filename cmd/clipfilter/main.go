package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipfilter/internal/engine"
	"clipfilter/internal/handlers"
	"clipfilter/internal/logging"
	"clipfilter/internal/memory"
	"clipfilter/internal/metrics"
	"clipfilter/internal/middleware"
	"clipfilter/internal/pipeline"
	"clipfilter/internal/preview"
	"clipfilter/internal/session"
	"clipfilter/internal/startup"
	"clipfilter/internal/web"

	"github.com/gorilla/mux"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectorInterval = 15 * time.Second
)

// app holds the long-lived components shared by the HTTP handlers.
type app struct {
	previews   *preview.Registry
	session    *session.Session
	controller *pipeline.Controller
	monitor    *memory.Monitor
	collector  *metrics.Collector
	handlers   *handlers.Handlers
	cancelJobs context.CancelFunc
}

func newApp(config *startup.Config, newEngine session.Factory) *app {
	previews := preview.NewRegistry(metrics.NewPreviewObserver())
	sess := session.New(newEngine, config.Resources(),
		session.WithTimeout(config.EngineTimeout),
		session.WithObserver(metrics.NewSessionObserver()),
	)
	ctrl := pipeline.New(sess, previews,
		pipeline.WithObserver(metrics.NewPipelineObserver()),
		pipeline.WithPosters(config.Posters),
	)
	monitor := memory.NewMonitor(memory.DefaultConfig())
	collector := metrics.NewCollector(metrics.StatsFunc(func() metrics.Stats {
		return metrics.Stats{EngineReady: sess.Ready(), LivePreviews: previews.Live()}
	}), collectorInterval)

	jobCtx, cancelJobs := context.WithCancel(context.Background())

	return &app{
		previews:   previews,
		session:    sess,
		controller: ctrl,
		monitor:    monitor,
		collector:  collector,
		handlers:   handlers.New(jobCtx, ctrl, previews, sess, monitor, config),
		cancelJobs: cancelJobs,
	}
}

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()

	statuses := startup.CheckEngine(context.Background(), config.Resources())
	var engineVersion string
	if statuses[0].Available {
		engineVersion = statuses[0].Version
	}
	build := startup.GetBuildInfo()
	metrics.SetAppInfo(build.Version, build.Commit, build.GoVersion, engineVersion)

	a := newApp(config, func() engine.Engine { return engine.NewFFmpeg() })
	a.handlers.SetEngineVersion(engineVersion)
	a.monitor.Start()
	a.collector.Start()

	router := setupRouter(a.handlers)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(
		middleware.Metrics(middleware.DefaultMetricsConfig())(router),
	)

	srv := newServer(":"+config.Port, handler)
	srv.RegisterOnShutdown(a.handlers.CloseStreams)

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(":"+config.MetricsPort, a.handlers)
		go func() {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, a, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		MaxUploadMB:     config.MaxUploadMB,
		EngineAvailable: statuses[0].Available && statuses[1].Available,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	h.RegisterHealth(r)
	h.RegisterAPI(r)

	r.PathPrefix("/").Handler(web.Handler())

	return r
}

// newServer leaves WriteTimeout unset so previews and the event stream are
// not cut off.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}
}

func newMetricsServer(addr string, h *handlers.Handlers) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, a *app, done chan<- struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	shutdown(srv, metricsSrv, a)
	close(done)
}

func shutdown(srv, metricsSrv *http.Server, a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Waiting for running conversion")
	if err := a.controller.Close(ctx); err != nil {
		logging.Warn("Conversion did not finish in time, cancelling: %v", err)
		a.cancelJobs()
		cancelCtx, cancelDone := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.controller.Close(cancelCtx); err != nil {
			logging.Warn("Cancelled conversion did not stop: %v", err)
		}
		cancelDone()
	} else {
		startup.LogShutdownStepComplete("Previews released")
	}
	a.cancelJobs()

	startup.LogShutdownStep("Closing video engine")
	if err := a.session.Close(); err != nil {
		logging.Warn("Engine close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Video engine closed")
	}

	a.collector.Stop()
	a.monitor.Stop()

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
