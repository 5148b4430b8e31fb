package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/dvloznov/receipt-tracker/internal/api/handlers"
	"github.com/dvloznov/receipt-tracker/internal/api/middleware"
	"github.com/dvloznov/receipt-tracker/internal/blobstore"
	"github.com/dvloznov/receipt-tracker/internal/config"
	"github.com/dvloznov/receipt-tracker/internal/extract"
	"github.com/dvloznov/receipt-tracker/internal/logger"
	"github.com/dvloznov/receipt-tracker/internal/store"
	"github.com/dvloznov/receipt-tracker/internal/syncbridge"
)

func main() {
	var (
		port   = flag.String("port", "", "HTTP server port (overrides config)")
		bucket = flag.String("bucket", "", "GCS bucket for capture retention (overrides config)")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *bucket != "" {
		cfg.Google.Bucket = *bucket
	}

	ctx := context.Background()

	// Record store
	var recordStore store.RecordStore
	var closeStore func() error
	if cfg.Google.ProjectID == "" {
		log.Warn().Msg("No GCP project configured - using in-memory record store, data will not survive restarts")
		recordStore = store.NewMemoryStore()
		closeStore = func() error { return nil }
	} else {
		fs, err := store.NewFirestoreStore(ctx, cfg.Google.ProjectID, logger.Component(log, "store"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create record store")
		}
		recordStore = fs
		closeStore = fs.Close
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Failed to close record store")
		}
	}()

	// AI extraction is optional too: without model credentials the record
	// keeping endpoints still work, the assistant ones respond 503.
	var extractor handlers.Extractor
	if ex, err := extract.New(ctx, cfg.AI.Model); err != nil {
		log.Warn().Err(err).Msg("No extraction client - AI assistant endpoints disabled")
	} else {
		extractor = ex
	}

	// Capture retention is optional; extraction works without it.
	var blobs handlers.BlobKeeper
	if cfg.Google.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - capture retention disabled")
	} else {
		bs, err := blobstore.New(ctx, cfg.Google.Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create blob store")
		}
		defer bs.Close()
		blobs = bs
	}

	// Spreadsheet webhook bridge
	if cfg.Sync.WebhookURL == "" {
		log.Warn().Msg("No sync webhook configured - spreadsheet sync will report failure")
	}
	bridge := syncbridge.New(cfg.Sync.WebhookURL, cfg.Sync.RevertDelay, cfg.Sync.PushTimeout, logger.Component(log, "syncbridge"))

	// Handlers
	recordsHandler := handlers.NewRecordsHandler(recordStore, logger.Component(log, "records"))
	reportsHandler := handlers.NewReportsHandler(recordStore, logger.Component(log, "reports"))
	assistantHandler := handlers.NewAssistantHandler(extractor, recordStore, blobs, logger.Component(log, "assistant"))
	syncHandler := handlers.NewSyncHandler(bridge, recordStore, logger.Component(log, "sync"))
	categoriesHandler := &handlers.CategoriesHandler{}

	// Router
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.Auth.Secret))

	api.HandleFunc("/extract/receipt", assistantHandler.ExtractReceipt).Methods(http.MethodPost)
	api.HandleFunc("/extract/voice", assistantHandler.ExtractVoice).Methods(http.MethodPost)
	api.HandleFunc("/assistant/ask", assistantHandler.Ask).Methods(http.MethodPost)
	api.HandleFunc("/assistant/leaks", assistantHandler.FindLeaks).Methods(http.MethodPost)

	api.HandleFunc("/records", recordsHandler.ListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", recordsHandler.CreateRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/watch", recordsHandler.WatchRecords).Methods(http.MethodGet)
	api.HandleFunc("/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		recordsHandler.UpdateRecord(w, r, mux.Vars(r)["id"])
	}).Methods(http.MethodPut)
	api.HandleFunc("/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		recordsHandler.DeleteRecord(w, r, mux.Vars(r)["id"])
	}).Methods(http.MethodDelete)

	api.HandleFunc("/summary", reportsHandler.Summary).Methods(http.MethodGet)
	api.HandleFunc("/export", reportsHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/categories", categoriesHandler.ListCategories).Methods(http.MethodGet)

	api.HandleFunc("/sync", syncHandler.Push).Methods(http.MethodPost)
	api.HandleFunc("/sync/status", syncHandler.Status).Methods(http.MethodGet)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(r),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
