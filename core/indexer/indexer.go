package indexer

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"partyfm/config"
	"partyfm/core/metadata"
	"partyfm/logger"
	"partyfm/model"
	"partyfm/repository"
)

// Audio container extensions the indexer accepts.
var supportedFormats = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".wav":  {},
	".flac": {},
	".ogg":  {},
}

// Embedder computes semantic embeddings for track search text.
type Embedder interface {
	Ping(ctx context.Context) bool
	Embedding(ctx context.Context, text string) ([]float64, error)
}

// Indexer walks the music library, extracts metadata, and upserts tracks
// into the library store.
type Indexer struct {
	cfg       *config.Config
	extractor *metadata.Extractor
	repo      repository.LibraryRepository
	embedder  Embedder // May be nil; embeddings are then skipped entirely
}

// Options controls a bulk index run.
type Options struct {
	MaxFiles       int  // Cap the number of files processed; 0 means no cap
	SkipEmbeddings bool // Skip embedding generation for the whole run
}

// Stats summarizes a bulk index run. Per-file failures are counted here,
// never fatal.
type Stats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// New creates an indexer over the configured library root.
func New(cfg *config.Config, repo repository.LibraryRepository, embedder Embedder) *Indexer {
	return &Indexer{
		cfg:       cfg,
		extractor: metadata.NewExtractor(cfg.LibraryPath),
		repo:      repo,
		embedder:  embedder,
	}
}

// IsSupported reports whether path has a supported audio extension.
func IsSupported(path string) bool {
	_, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scan enumerates supported audio files under the library root in traversal
// order. A missing root logs and returns an empty list.
func (ix *Indexer) Scan() []string {
	root := ix.cfg.LibraryPath
	if _, err := os.Stat(root); err != nil {
		logger.Error("[Indexer] Library path does not exist",
			logger.String("path", root),
			logger.ErrorField(err))
		return nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("[Indexer] Skipping unreadable entry",
				logger.String("path", path),
				logger.ErrorField(err))
			return nil
		}
		if !d.IsDir() && IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		logger.Warn("[Indexer] Library scan ended early", logger.ErrorField(err))
	}

	logger.Info("[Indexer] Library scan complete",
		logger.String("path", root),
		logger.Int("files", len(files)))
	return files
}

// IndexFile extracts metadata for one file, computes its embedding when a
// provider is available, and upserts the track. Embedding failure never
// fails the index; only a store write error does.
func (ix *Indexer) IndexFile(ctx context.Context, path string) error {
	return ix.indexFile(ctx, path, false)
}

func (ix *Indexer) indexFile(ctx context.Context, path string, skipEmbeddings bool) error {
	md := ix.extractor.Extract(path)

	var embedding *string
	if !skipEmbeddings {
		embedding = ix.generateEmbedding(ctx, md)
	}

	track := &model.LibraryTrack{
		FilePath:   md.FilePath,
		Artist:     md.Artist,
		Album:      md.Album,
		Title:      md.Title,
		Year:       md.Year,
		Genre:      md.Genre,
		Duration:   md.Duration,
		FileSize:   md.FileSize,
		Embedding:  embedding,
		SearchText: SearchText(md),
		IndexedAt:  time.Now(),
	}

	id, err := ix.repo.UpsertTrack(track)
	if err != nil {
		logger.Error("[Indexer] Failed to index file",
			logger.String("path", path),
			logger.ErrorField(err))
		return err
	}

	logger.Info("[Indexer] Indexed track",
		logger.Int64("id", id),
		logger.String("artist", stringOr(md.Artist, "Unknown")),
		logger.String("title", stringOr(md.Title, "Unknown")))
	return nil
}

// IndexLibrary runs a bulk index over the whole library. The embedding
// provider is probed once up front; if it is unreachable the run proceeds
// without embeddings rather than failing. Cancellation is honored between
// files.
func (ix *Indexer) IndexLibrary(ctx context.Context, opts Options) (Stats, error) {
	logger.Info("[Indexer] Starting music library indexing")

	skipEmbeddings := opts.SkipEmbeddings
	if !skipEmbeddings {
		if ix.embedder == nil || !ix.embedder.Ping(ctx) {
			logger.Warn("[Indexer] Embedding provider not available, indexing without embeddings")
			skipEmbeddings = true
		}
	}

	files := ix.Scan()
	if opts.MaxFiles > 0 && len(files) > opts.MaxFiles {
		files = files[:opts.MaxFiles]
		logger.Info("[Indexer] Limiting run", logger.Int("maxFiles", opts.MaxFiles))
	}

	stats := Stats{Total: len(files)}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("[Indexer] Index run cancelled",
				logger.Int("processed", i),
				logger.Int("total", stats.Total))
			return stats, err
		}

		if err := ix.indexFile(ctx, path, skipEmbeddings); err != nil {
			stats.Failed++
		} else {
			stats.Success++
		}

		// Pace the run so the embedding provider is not saturated.
		if ix.cfg.IndexDelay > 0 && i < len(files)-1 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(ix.cfg.IndexDelay):
			}
		}
	}

	logger.Info("[Indexer] Indexing complete",
		logger.Int("total", stats.Total),
		logger.Int("success", stats.Success),
		logger.Int("failed", stats.Failed))
	return stats, nil
}

// SearchText builds the searchable text for a track: the non-empty metadata
// fields in artist, album, title, genre order, space-joined. This is both
// the lexical index content and the embedding prompt.
func SearchText(md *metadata.Metadata) string {
	parts := make([]string, 0, 4)
	for _, field := range []*string{md.Artist, md.Album, md.Title, md.Genre} {
		if field != nil {
			parts = append(parts, *field)
		}
	}
	return strings.Join(parts, " ")
}

// generateEmbedding computes the JSON-encoded embedding for a track, or nil
// when there is no searchable text, no provider, or the provider failed.
func (ix *Indexer) generateEmbedding(ctx context.Context, md *metadata.Metadata) *string {
	if ix.embedder == nil {
		return nil
	}

	text := SearchText(md)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	vector, err := ix.embedder.Embedding(ctx, text)
	if err != nil {
		logger.Warn("[Indexer] Embedding failed, indexing without it",
			logger.String("searchText", text),
			logger.ErrorField(err))
		return nil
	}

	encoded, err := json.Marshal(vector)
	if err != nil {
		logger.Warn("[Indexer] Failed to encode embedding", logger.ErrorField(err))
		return nil
	}

	s := string(encoded)
	return &s
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
