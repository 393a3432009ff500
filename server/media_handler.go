package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"partyfm/logger"

	"github.com/gorilla/mux"
)

// MediaHandler serves an indexed library track by its bare file name. The
// name is resolved through the index, never joined into the filesystem
// directly, so path traversal cannot escape the library.
func (h *APIHandler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	track, err := h.libraryRepo.FindByBasename(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	logger.Debug("[API] Serving library track",
		logger.String("file", track.FilePath))
	http.ServeFile(w, r, track.FilePath)
}
