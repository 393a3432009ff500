package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"partyfm/cache"
	"partyfm/config"
	"partyfm/core/indexer"
	"partyfm/core/notify"
	"partyfm/core/ollama"
	"partyfm/core/search"
	"partyfm/logger"
	"partyfm/model"
	"partyfm/repository"
)

// APIHandler holds the collaborators every HTTP handler needs.
type APIHandler struct {
	cfg         *config.Config
	engine      *search.Service
	indexer     *indexer.Indexer
	ollama      *ollama.Client
	libraryRepo repository.LibraryRepository
	searchCache *cache.SearchCache
	hub         *notify.Hub
}

// NewAPIHandler creates the API handler set.
func NewAPIHandler(
	cfg *config.Config,
	engine *search.Service,
	ix *indexer.Indexer,
	ollamaClient *ollama.Client,
	libraryRepo repository.LibraryRepository,
	searchCache *cache.SearchCache,
	hub *notify.Hub,
) *APIHandler {
	return &APIHandler{
		cfg:         cfg,
		engine:      engine,
		indexer:     ix,
		ollama:      ollamaClient,
		libraryRepo: libraryRepo,
		searchCache: searchCache,
		hub:         hub,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("[API] Failed to write response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

// queryInt reads an integer query parameter, falling back when absent or
// malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

type searchRequest struct {
	Query        string `json:"query"`
	LocalLimit   int    `json:"local_limit"`
	YouTubeLimit int    `json:"youtube_limit"`
}

// SearchHandler runs a combined local + external search for a guest query.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query must not be empty")
		return
	}

	bundle := h.engine.CombinedSearch(r.Context(), query, req.LocalLimit, req.YouTubeLimit)

	h.hub.Broadcast(notify.MsgTypeSearchActivity, map[string]interface{}{
		"query":         query,
		"total_results": bundle.TotalResults,
	})

	writeJSON(w, http.StatusOK, bundle)
}

// RecommendationsHandler returns tracks matching the learned party taste.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	tracks := h.engine.Recommendations(r.Context(), limit)
	if tracks == nil {
		tracks = []model.TrackResult{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": tracks,
		"count":           len(tracks),
	})
}

// PatternsHandler exposes the learned selection patterns.
func (h *APIHandler) PatternsHandler(w http.ResponseWriter, r *http.Request) {
	patternType := r.URL.Query().Get("type")
	limit := queryInt(r, "limit", 50)

	patterns, err := h.engine.Patterns(patternType, limit)
	if err != nil {
		logger.Error("[API] Failed to load patterns", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load patterns")
		return
	}
	if patterns == nil {
		patterns = []*model.MusicPattern{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patterns": patterns,
		"count":    len(patterns),
	})
}

// AIDJStatusHandler reports progress toward the AI DJ unlock.
func (h *APIHandler) AIDJStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.engine.AIDJStatus()
	if err != nil {
		logger.Error("[API] Failed to compute AI DJ status", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute AI DJ status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type addToQueueRequest struct {
	Source        string `json:"source"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Genre         string `json:"genre"`
	FilePath      string `json:"file_path"`
	URL           string `json:"url"`
	Duration      *int   `json:"duration"`
	GuestName     string `json:"guest_name"`
	DeviceID      string `json:"device_id"`
	OriginalQuery string `json:"original_query"`
}

// AddToQueueHandler queues a local search result for playback. External
// results cannot be queued directly; they need a download step this engine
// does not perform.
func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	var req addToQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	switch req.Source {
	case model.SourceLocal:
		// Handled below.
	case model.SourceYouTube:
		// Logged for the record, but the pattern learner only sees picks
		// that reach the queue; an unplayable one must not skew it.
		h.engine.LogSelection(search.Selection{
			Source:        req.Source,
			GuestName:     req.GuestName,
			OriginalQuery: req.OriginalQuery,
			Title:         req.Title,
			Artist:        req.Artist,
			Genre:         req.Genre,
			URL:           req.URL,
		})
		writeError(w, http.StatusBadRequest, "YouTube results must be downloaded before queueing")
		return
	default:
		writeError(w, http.StatusBadRequest, "Unknown source")
		return
	}

	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "Missing file_path for local selection")
		return
	}

	queueID, uploadID, err := h.engine.QueueLocalSelection(search.Selection{
		Source:        model.SourceLocal,
		GuestName:     req.GuestName,
		DeviceID:      req.DeviceID,
		OriginalQuery: req.OriginalQuery,
		Title:         req.Title,
		Artist:        req.Artist,
		Genre:         req.Genre,
		FilePath:      req.FilePath,
		Duration:      req.Duration,
	})
	if err != nil {
		logger.Error("[API] Failed to queue selection", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to queue selection")
		return
	}

	h.hub.Broadcast(notify.MsgTypeMusicUpdate, map[string]interface{}{
		"action":     "queued",
		"queue_id":   queueID,
		"title":      req.Title,
		"artist":     req.Artist,
		"guest_name": req.GuestName,
	})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Added to queue",
		"queueId":  queueID,
		"uploadId": uploadID,
	})
}
