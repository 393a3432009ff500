package search

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"partyfm/cache"
	"partyfm/config"
	"partyfm/logger"
	"partyfm/model"
	"partyfm/repository"
)

// External search is only consulted when local search found fewer hits than
// this; a library that satisfies the query is trusted over the network.
const externalSearchThreshold = 3

// ExternalSearcher finds candidate tracks on the external video platform.
type ExternalSearcher interface {
	Search(ctx context.Context, query string, limit int) []model.YouTubeResult
}

// LanguageModel is the backend used for query enhancement.
type LanguageModel interface {
	Ping(ctx context.Context) bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service is the music discovery engine: it blends local lexical/fuzzy
// search with external results, learns selection patterns, and serves
// recommendations.
type Service struct {
	cfg      *config.Config
	library  repository.LibraryRepository
	searches repository.SearchLogRepository
	patterns repository.PatternRepository
	queue    repository.QueueRepository
	external ExternalSearcher
	llm      LanguageModel // May be nil

	searchCache *cache.SearchCache // May be nil

	// Reachability of the language model, probed at construction and on
	// explicit refresh; never mutated implicitly in the hot path.
	llmAvailable atomic.Bool
}

// NewService wires the engine together and probes the language model once.
func NewService(
	cfg *config.Config,
	library repository.LibraryRepository,
	searches repository.SearchLogRepository,
	patterns repository.PatternRepository,
	queue repository.QueueRepository,
	external ExternalSearcher,
	llm LanguageModel,
	searchCache *cache.SearchCache,
) *Service {
	s := &Service{
		cfg:         cfg,
		library:     library,
		searches:    searches,
		patterns:    patterns,
		queue:       queue,
		external:    external,
		llm:         llm,
		searchCache: searchCache,
	}
	s.RefreshOllama(context.Background())
	return s
}

// RefreshOllama re-probes the language model and returns its reachability.
func (s *Service) RefreshOllama(ctx context.Context) bool {
	available := s.llm != nil && s.llm.Ping(ctx)
	s.llmAvailable.Store(available)
	logger.Info("[Search] Language model reachability refreshed",
		logger.Bool("available", available))
	return available
}

// CombinedSearch runs the two-tier search: local first, external only when
// the library came up short. Every query is logged for pattern learning;
// logging failure never blocks the result.
func (s *Service) CombinedSearch(ctx context.Context, query string, localLimit, youtubeLimit int) *model.SearchBundle {
	if localLimit <= 0 {
		localLimit = 10
	}
	if youtubeLimit <= 0 {
		youtubeLimit = 5
	}

	// Every guest query is an observation, cache hit or not.
	s.logQuery(query)

	if cached := s.searchCache.GetBundle(ctx, query, localLimit, youtubeLimit); cached != nil {
		logger.Debug("[Search] Served combined search from cache",
			logger.String("query", query))
		return cached
	}

	enhanced := s.EnhanceQuery(ctx, query)

	// Local search stays literal; only the external search sees the
	// enhanced query.
	local := s.SearchLocal(query, localLimit)

	var external []model.YouTubeResult
	if len(local) < externalSearchThreshold && s.external != nil {
		external = s.external.Search(ctx, enhanced, youtubeLimit)
	}

	bundle := &model.SearchBundle{
		Query:        query,
		Local:        local,
		YouTube:      external,
		TotalResults: len(local) + len(external),
	}
	if enhanced != query {
		bundle.EnhancedQuery = &enhanced
	}

	s.searchCache.SetBundle(ctx, query, localLimit, youtubeLimit, bundle)
	return bundle
}

// logQuery appends the query to the search log. Failures are swallowed: a
// broken log must not break a user-visible search.
func (s *Service) logQuery(query string) {
	if _, err := s.searches.Create(&model.MusicSearch{Query: query}); err != nil {
		logger.Warn("[Search] Failed to log search query",
			logger.String("query", query),
			logger.ErrorField(err))
	}
}

// Selection describes a guest queuing one search result.
type Selection struct {
	Source        string
	GuestName     string
	DeviceID      string
	OriginalQuery string

	Title    string
	Artist   string
	Genre    string
	FilePath string // Local selections
	URL      string // External selections
	Duration *int
}

// QueueLocalSelection records a guest's local pick: queue attribution
// through the store, a selection entry in the search log, and pattern
// updates for the learner.
func (s *Service) QueueLocalSelection(sel Selection) (queueID, uploadID int64, err error) {
	uploadID, err = s.queue.CreateUpload(&model.UploadRecord{
		DeviceID:         sel.DeviceID,
		GuestName:        sel.GuestName,
		FilePath:         sel.FilePath,
		FileType:         "music",
		OriginalFilename: baseName(sel.FilePath),
	})
	if err != nil {
		return 0, 0, err
	}

	queueID, err = s.queue.Enqueue(&model.QueueEntry{
		UploadID:  uploadID,
		SongTitle: sel.Title,
		Artist:    sel.Artist,
		Duration:  sel.Duration,
	})
	if err != nil {
		return 0, uploadID, err
	}

	s.LogSelection(sel)
	s.learnSelection(sel)
	return queueID, uploadID, nil
}

// LogSelection appends the selection to the search log. Best-effort; a
// broken log must not block the guest. Pattern learning is separate: only
// selections that actually reach the queue train the recommender, so a
// rejected pick cannot skew it.
func (s *Service) LogSelection(sel Selection) {
	selected := model.SelectedResult{
		Title:    sel.Title,
		Artist:   sel.Artist,
		FilePath: sel.FilePath,
		URL:      sel.URL,
		Source:   sel.Source,
	}
	selectedJSON, err := json.Marshal(selected)
	if err == nil {
		encoded := string(selectedJSON)
		entry := &model.MusicSearch{
			Query:          sel.OriginalQuery,
			SelectedResult: &encoded,
			Source:         &sel.Source,
		}
		if sel.GuestName != "" {
			entry.GuestName = &sel.GuestName
		}
		if _, err := s.searches.Create(entry); err != nil {
			logger.Warn("[Search] Failed to log selection", logger.ErrorField(err))
		}
	}
}

// learnSelection feeds the pattern learner. Failures are logged and dropped.
func (s *Service) learnSelection(sel Selection) {
	if sel.Artist != "" {
		if err := s.patterns.Increment(model.PatternArtist, sel.Artist); err != nil {
			logger.Warn("[Search] Failed to update artist pattern", logger.ErrorField(err))
		}
	}
	if sel.Genre != "" {
		if err := s.patterns.Increment(model.PatternGenre, sel.Genre); err != nil {
			logger.Warn("[Search] Failed to update genre pattern", logger.ErrorField(err))
		}
	}
}

// Recommendations returns tracks the party is likely to want next. With no
// learned patterns it falls back to random library tracks; with patterns it
// draws random tracks by the most frequent artists, and returns nothing when
// none of those artists are in the library. Results are cached briefly so a
// wall of party screens polling together hits the database once.
func (s *Service) Recommendations(ctx context.Context, limit int) []model.TrackResult {
	if limit <= 0 {
		limit = 10
	}

	if cached := s.searchCache.GetRecommendations(ctx, limit); cached != nil {
		return cached
	}

	patterns, err := s.patterns.List("", 20)
	if err != nil {
		logger.Warn("[Search] Failed to load patterns", logger.ErrorField(err))
		patterns = nil
	}

	if len(patterns) == 0 {
		// Cold start: nothing learned yet.
		tracks, err := s.library.ListRandom(limit)
		if err != nil {
			logger.Warn("[Search] Failed to load random tracks", logger.ErrorField(err))
			return nil
		}
		results := s.toTrackResults(tracks)
		s.searchCache.SetRecommendations(ctx, limit, results)
		return results
	}

	var artists []string
	for _, p := range patterns {
		if p.PatternType == model.PatternArtist {
			artists = append(artists, p.PatternValue)
			if len(artists) == 5 {
				break
			}
		}
	}

	if len(artists) == 0 {
		return []model.TrackResult{}
	}

	tracks, err := s.library.ListRandomByArtists(artists, limit)
	if err != nil {
		logger.Warn("[Search] Failed to load tracks by artists", logger.ErrorField(err))
		return nil
	}
	// No further fallback: recommending unrelated content is worse than
	// recommending nothing.
	results := s.toTrackResults(tracks)
	s.searchCache.SetRecommendations(ctx, limit, results)
	return results
}

// Patterns exposes the learned patterns, optionally filtered by type.
func (s *Service) Patterns(patternType string, limit int) ([]*model.MusicPattern, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.patterns.List(patternType, limit)
}

// AIDJStatus reports whether enough searches have accumulated for the AI DJ
// mode to be offered.
func (s *Service) AIDJStatus() (*model.AIDJStatus, error) {
	count, err := s.searches.Count()
	if err != nil {
		return nil, err
	}

	threshold := s.cfg.AIDJThreshold
	remaining := threshold - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &model.AIDJStatus{
		TotalSearches:     int(count),
		Threshold:         threshold,
		ReadyForAIDJ:      int(count) >= threshold,
		SearchesRemaining: remaining,
	}, nil
}
