package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"partyfm/logger"
)

// ListModelsHandler returns the models the Ollama host offers and which one
// is active.
func (h *APIHandler) ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	models, err := h.ollama.ListModels(r.Context())
	if err != nil {
		logger.Warn("[API] Failed to list Ollama models", logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Ollama host unreachable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":       models,
		"active_model": h.ollama.Model(),
	})
}

type selectModelRequest struct {
	Model string `json:"model"`
}

// SelectModelHandler switches the model used for query enhancement and
// embeddings, verifying first that the Ollama host actually offers it.
func (h *APIHandler) SelectModelHandler(w http.ResponseWriter, r *http.Request) {
	var req selectModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Model)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Model must not be empty")
		return
	}

	models, err := h.ollama.ListModels(r.Context())
	if err != nil {
		logger.Warn("[API] Failed to list Ollama models", logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Ollama host unreachable")
		return
	}

	known := false
	for _, m := range models {
		if m.Name == name {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusBadRequest, "Model not available on the Ollama host")
		return
	}

	h.ollama.SetModel(name)
	h.engine.RefreshOllama(r.Context())
	logger.Info("[API] Switched Ollama model", logger.String("model", name))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Model selected",
		"model":   name,
	})
}
