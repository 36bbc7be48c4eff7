package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docvault/internal/blob"
	"docvault/internal/database"
	"docvault/internal/docs"
	"docvault/internal/handlers"
	"docvault/internal/logging"
	"docvault/internal/middleware"
	"docvault/internal/render"
	"docvault/internal/startup"
	"docvault/internal/tempdir"
	"docvault/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error("Failed to close database: %v", err)
		}
	}()

	blobs, err := blob.NewStore(config.DataDir)
	if err != nil {
		logging.Fatal("Failed to initialize blob storage: %v", err)
	}

	scopes, err := tempdir.NewManager(config.TempDir)
	if err != nil {
		logging.Fatal("Failed to initialize render scopes: %v", err)
	}

	if err := render.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using native image decoding: %v", err)
	}
	defer render.ShutdownVips()

	pipeline, err := render.NewPipeline(scopes, render.Config{
		Width:      config.ThumbWidth,
		Height:     config.ThumbHeight,
		PDFTool:    config.PDFTool,
		PDFTimeout: config.PDFTimeout,
	})
	if err != nil {
		logging.Fatal("Failed to initialize render pipeline: %v", err)
	}

	svc := docs.New(db, blobs, pipeline, docs.Options{
		MaxUploadSize: config.MaxUploadSize,
		RenderWorkers: workers.ForRender(config.RenderWorkers),
	})

	h := handlers.New(svc, blobs)
	router := setupRouter(h)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	if config.MetricsEnabled {
		go serveMetrics(config.MetricsPort)
	}

	go handleShutdown(srv, svc)

	logging.Info("Server started on :%s in %v", config.Port, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Document API; the fronting layer authenticates and sets X-User-ID.
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/documents", h.ListDocuments).Methods("GET")
	api.HandleFunc("/documents", h.UploadDocument).Methods("POST")
	api.HandleFunc("/documents/reorder", h.ReorderDocuments).Methods("POST")
	api.HandleFunc("/documents/{id}", h.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", h.UpdateDocument).Methods("PATCH")
	api.HandleFunc("/documents/{id}", h.DeleteDocument).Methods("DELETE")
	api.HandleFunc("/documents/{id}/file", h.GetFile).Methods("GET")
	api.HandleFunc("/documents/{id}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/documents/{id}/thumbnail", h.SubmitThumbnail).Methods("PUT")

	return r
}

func serveMetrics(port string) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	logging.Info("Metrics listening on :%s", port)
	if err := http.ListenAndServe(":"+port, m); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, svc *docs.Service) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Shutdown initiated (%s)", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	// Let in-flight background renders land (or drop as stale no-ops)
	// before the process exits.
	done := make(chan struct{})
	go func() {
		svc.WaitForRenders()
		close(done)
	}()
	select {
	case <-done:
		logging.Info("Background renders drained")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout waiting for background renders")
	}
}
