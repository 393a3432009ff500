package search

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"partyfm/logger"
	"partyfm/model"
)

// SearchLocal queries the library: lexical full-text first, then a fuzzy
// pass over all tracks to fill remaining slots when the index came up short.
// Results are ordered lexical relevance first, fuzzy score second.
func (s *Service) SearchLocal(query string, limit int) []model.TrackResult {
	if limit <= 0 {
		limit = 10
	}

	tracks, err := s.library.SearchLexical(query, limit)
	if err != nil {
		logger.Warn("[Search] Lexical search failed",
			logger.String("query", query),
			logger.ErrorField(err))
		tracks = nil
	}

	results := s.toTrackResults(tracks)
	if len(results) >= limit {
		return results
	}

	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r.FilePath] = true
	}

	for _, t := range s.fuzzyMatch(query, seen, limit-len(results)) {
		results = append(results, s.toTrackResult(t))
	}
	return results
}

type fuzzyHit struct {
	track *model.LibraryTrack
	score int
}

// fuzzyMatch scans the whole library for tracks whose search text partially
// matches the query above the configured threshold, best scores first.
// Tracks in skip (already found lexically) are excluded.
func (s *Service) fuzzyMatch(query string, skip map[string]bool, limit int) []*model.LibraryTrack {
	if limit <= 0 {
		return nil
	}

	all, err := s.library.ListAll()
	if err != nil {
		logger.Warn("[Search] Fuzzy scan failed", logger.ErrorField(err))
		return nil
	}

	lowered := strings.ToLower(query)
	var hits []fuzzyHit
	for _, t := range all {
		if skip[t.FilePath] {
			continue
		}
		score := PartialRatio(lowered, strings.ToLower(t.SearchText))
		if score > s.cfg.FuzzyThreshold {
			hits = append(hits, fuzzyHit{track: t, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	tracks := make([]*model.LibraryTrack, len(hits))
	for i, h := range hits {
		tracks[i] = h.track
	}
	return tracks
}

// toTrackResult tags a library track with its origin and a playback URL
// under the media route.
func (s *Service) toTrackResult(t *model.LibraryTrack) model.TrackResult {
	return model.TrackResult{
		ID:       t.ID,
		FilePath: t.FilePath,
		Artist:   t.Artist,
		Album:    t.Album,
		Title:    t.Title,
		Year:     t.Year,
		Genre:    t.Genre,
		Duration: t.Duration,
		FileSize: t.FileSize,
		Source:   model.SourceLocal,
		URL:      path.Join(s.cfg.MediaRoutePrefix, baseName(t.FilePath)),
	}
}

func (s *Service) toTrackResults(tracks []*model.LibraryTrack) []model.TrackResult {
	results := make([]model.TrackResult, 0, len(tracks))
	for _, t := range tracks {
		results = append(results, s.toTrackResult(t))
	}
	return results
}

func baseName(p string) string {
	return filepath.Base(p)
}
