package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partyfm/cache"
	"partyfm/config"
	"partyfm/core/indexer"
	"partyfm/core/notify"
	"partyfm/core/ollama"
	"partyfm/core/search"
	"partyfm/core/youtube"
	"partyfm/db"
	"partyfm/logger"
	"partyfm/repository"

	"github.com/gorilla/mux"
)

// Start wires the whole engine together and runs the HTTP server until an
// interrupt arrives.
func Start() {
	cfg := config.Load()

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("[Server] Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.MigrateModels(); err != nil {
		logger.Fatal("[Server] Failed to migrate database", logger.ErrorField(err))
	}

	// Redis is an accelerator only; the server runs without it.
	var searchCache *cache.SearchCache
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("[Server] Redis unavailable, search caching disabled", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
		searchCache = cache.NewSearchCache(cache.RedisClient, cfg.SearchCacheTTL)
	}

	libraryRepo := repository.NewMySQLLibraryRepository()
	searchRepo := repository.NewMySQLSearchLogRepository()
	patternRepo := repository.NewMySQLPatternRepository()
	queueRepo := repository.NewMySQLQueueRepository()

	ollamaClient := ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel)
	youtubeClient := youtube.NewClient(cfg.YouTubeAPIURL)

	engine := search.NewService(cfg, libraryRepo, searchRepo, patternRepo, queueRepo,
		youtubeClient, ollamaClient, searchCache)

	hub := notify.NewHub()
	go hub.Run()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := indexer.New(cfg, libraryRepo, ollamaClient)
	if cfg.WatchLibrary {
		watcher := indexer.NewWatcher(ix, func(path string) {
			searchCache.InvalidateAll(context.Background())
			hub.Broadcast(notify.MsgTypeLibraryUpdate, map[string]interface{}{
				"file": path,
			})
		})
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("[Server] Library watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	apiHandler := NewAPIHandler(cfg, engine, ix, ollamaClient, libraryRepo, searchCache, hub)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Music discovery endpoints.
	router.HandleFunc("/api/music/search", apiHandler.SearchHandler).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/music/recommendations", apiHandler.RecommendationsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/patterns", apiHandler.PatternsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/ai-dj-status", apiHandler.AIDJStatusHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/add-to-queue", apiHandler.AddToQueueHandler).Methods(http.MethodPost, http.MethodOptions)

	// Library administration.
	router.HandleFunc("/api/admin/index", apiHandler.IndexLibraryHandler).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/admin/stats", apiHandler.LibraryStatsHandler).Methods(http.MethodGet)

	// Language model management.
	router.HandleFunc("/api/ollama/models", apiHandler.ListModelsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/ollama/select-model", apiHandler.SelectModelHandler).Methods(http.MethodPost, http.MethodOptions)

	// Realtime notifications.
	router.HandleFunc("/ws", apiHandler.WebSocketHandler)

	// Library playback: tracks are addressed by bare file name.
	router.HandleFunc(cfg.MediaRoutePrefix+"/{filename}", apiHandler.MediaHandler).Methods(http.MethodGet, http.MethodHead)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("[Server] Starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Server] Failed to start", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("[Server] Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("[Server] Forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("[Server] Stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
