package server

import (
	"context"
	"encoding/json"
	"net/http"

	"partyfm/core/indexer"
	"partyfm/core/notify"
	"partyfm/logger"
)

type indexRequest struct {
	MaxFiles       int  `json:"max_files"`
	SkipEmbeddings bool `json:"skip_embeddings"`
}

// IndexLibraryHandler runs a full library index in the background and
// returns immediately. Progress lands in the log; completion is broadcast
// to connected screens.
func (h *APIHandler) IndexLibraryHandler(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if r.Body != nil {
		// An empty body means a full run with defaults.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	go func() {
		stats, err := h.indexer.IndexLibrary(context.Background(), indexer.Options{
			MaxFiles:       req.MaxFiles,
			SkipEmbeddings: req.SkipEmbeddings,
		})
		if err != nil {
			logger.Error("[API] Library index run failed", logger.ErrorField(err))
			return
		}

		h.searchCache.InvalidateAll(context.Background())
		h.hub.Broadcast(notify.MsgTypeLibraryUpdate, map[string]interface{}{
			"action": "indexed",
			"stats":  stats,
		})
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Library index started",
	})
}

// LibraryStatsHandler reports library size and connected screens.
func (h *APIHandler) LibraryStatsHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.libraryRepo.Count()
	if err != nil {
		logger.Error("[API] Failed to count library", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to count library")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indexed_tracks":    count,
		"connected_clients": h.hub.ClientCount(),
	})
}
