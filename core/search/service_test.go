package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"partyfm/config"
	"partyfm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeLibrary struct {
	tracks  []*model.LibraryTrack
	lexical []*model.LibraryTrack // What SearchLexical returns
	lexErr  error
}

func (f *fakeLibrary) UpsertTrack(track *model.LibraryTrack) (int64, error) { return track.ID, nil }

func (f *fakeLibrary) SearchLexical(query string, limit int) ([]*model.LibraryTrack, error) {
	if f.lexErr != nil {
		return nil, f.lexErr
	}
	if len(f.lexical) > limit {
		return f.lexical[:limit], nil
	}
	return f.lexical, nil
}

func (f *fakeLibrary) ListAll() ([]*model.LibraryTrack, error) { return f.tracks, nil }

func (f *fakeLibrary) ListRandom(limit int) ([]*model.LibraryTrack, error) {
	if len(f.tracks) > limit {
		return f.tracks[:limit], nil
	}
	return f.tracks, nil
}

func (f *fakeLibrary) ListRandomByArtists(artists []string, limit int) ([]*model.LibraryTrack, error) {
	wanted := make(map[string]bool, len(artists))
	for _, a := range artists {
		wanted[a] = true
	}
	var out []*model.LibraryTrack
	for _, t := range f.tracks {
		if t.Artist != nil && wanted[*t.Artist] && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeLibrary) FindByBasename(name string) (*model.LibraryTrack, error) {
	return nil, fmt.Errorf("not found: %s", name)
}

func (f *fakeLibrary) Count() (int64, error) { return int64(len(f.tracks)), nil }

type fakeSearchLog struct {
	entries []*model.MusicSearch
}

func (f *fakeSearchLog) Create(entry *model.MusicSearch) (int64, error) {
	f.entries = append(f.entries, entry)
	return int64(len(f.entries)), nil
}

func (f *fakeSearchLog) Count() (int64, error) { return int64(len(f.entries)), nil }

type fakePatterns struct {
	counts map[string]int
}

func newFakePatterns() *fakePatterns {
	return &fakePatterns{counts: make(map[string]int)}
}

func (f *fakePatterns) Increment(patternType, patternValue string) error {
	f.counts[patternType+"|"+patternValue]++
	return nil
}

func (f *fakePatterns) List(patternType string, limit int) ([]*model.MusicPattern, error) {
	var out []*model.MusicPattern
	for key, freq := range f.counts {
		var pt, pv string
		for i := 0; i < len(key); i++ {
			if key[i] == '|' {
				pt, pv = key[:i], key[i+1:]
				break
			}
		}
		if patternType != "" && pt != patternType {
			continue
		}
		out = append(out, &model.MusicPattern{
			PatternType:  pt,
			PatternValue: pv,
			Frequency:    freq,
			LastSeen:     time.Now(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Frequency > out[j].Frequency })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeQueue struct {
	uploads []*model.UploadRecord
	entries []*model.QueueEntry
}

func (f *fakeQueue) CreateUpload(rec *model.UploadRecord) (int64, error) {
	f.uploads = append(f.uploads, rec)
	return int64(len(f.uploads)), nil
}

func (f *fakeQueue) Enqueue(entry *model.QueueEntry) (int64, error) {
	f.entries = append(f.entries, entry)
	return int64(len(f.entries)), nil
}

func (f *fakeQueue) UnplayedCount() (int64, error) { return int64(len(f.entries)), nil }

type fakeExternal struct {
	queries []string
	results []model.YouTubeResult
}

func (f *fakeExternal) Search(ctx context.Context, query string, limit int) []model.YouTubeResult {
	f.queries = append(f.queries, query)
	if len(f.results) > limit {
		return f.results[:limit]
	}
	return f.results
}

type fakeLLM struct {
	reachable bool
	response  string
	err       error
}

func (f *fakeLLM) Ping(ctx context.Context) bool { return f.reachable }

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

// ---- helpers ----

func strPtr(s string) *string { return &s }

func testConfig() *config.Config {
	return &config.Config{
		MediaRoutePrefix: "/media/music",
		AIDJThreshold:    25,
		FuzzyThreshold:   60,
	}
}

func track(id int64, path, artist, title string) *model.LibraryTrack {
	return &model.LibraryTrack{
		ID:         id,
		FilePath:   path,
		Artist:     strPtr(artist),
		Title:      strPtr(title),
		SearchText: artist + " " + title,
	}
}

type deps struct {
	library  *fakeLibrary
	searches *fakeSearchLog
	patterns *fakePatterns
	queue    *fakeQueue
	external *fakeExternal
	llm      *fakeLLM
}

func newTestService(d *deps) *Service {
	if d.library == nil {
		d.library = &fakeLibrary{}
	}
	if d.searches == nil {
		d.searches = &fakeSearchLog{}
	}
	if d.patterns == nil {
		d.patterns = newFakePatterns()
	}
	if d.queue == nil {
		d.queue = &fakeQueue{}
	}

	var external ExternalSearcher
	if d.external != nil {
		external = d.external
	}
	var llm LanguageModel
	if d.llm != nil {
		llm = d.llm
	}

	return NewService(testConfig(), d.library, d.searches, d.patterns, d.queue,
		external, llm, nil)
}

// ---- tests ----

func TestSearchLocalConvertsTracksToResults(t *testing.T) {
	d := &deps{library: &fakeLibrary{
		lexical: []*model.LibraryTrack{
			track(1, "/music/Queen/Opera/01 Bohemian Rhapsody.mp3", "Queen", "Bohemian Rhapsody"),
		},
	}}
	s := newTestService(d)

	results := s.SearchLocal("bohemian", 10)

	require.Len(t, results, 1)
	assert.Equal(t, model.SourceLocal, results[0].Source)
	assert.Equal(t, "/media/music/01 Bohemian Rhapsody.mp3", results[0].URL)
	assert.Equal(t, "Queen", *results[0].Artist)
}

func TestSearchLocalFuzzyFallbackFillsAndDeduplicates(t *testing.T) {
	lexHit := track(1, "/music/a.mp3", "Queen", "Bohemian Rhapsody")
	d := &deps{library: &fakeLibrary{
		lexical: []*model.LibraryTrack{lexHit},
		tracks: []*model.LibraryTrack{
			lexHit, // Already found lexically, must not repeat
			track(2, "/music/b.mp3", "Queen", "Bohemian Rapsody"),
			track(3, "/music/c.mp3", "ZZ Unrelated", "Completely Different"),
		},
	}}
	s := newTestService(d)

	results := s.SearchLocal("bohemian rhapsody", 10)

	require.Len(t, results, 2)
	assert.Equal(t, "/music/a.mp3", results[0].FilePath)
	assert.Equal(t, "/music/b.mp3", results[1].FilePath)
}

func TestSearchLocalRespectsLimit(t *testing.T) {
	var lexical []*model.LibraryTrack
	for i := 0; i < 20; i++ {
		lexical = append(lexical, track(int64(i+1), fmt.Sprintf("/music/%d.mp3", i), "Queen", "Song"))
	}
	d := &deps{library: &fakeLibrary{lexical: lexical}}
	s := newTestService(d)

	assert.Len(t, s.SearchLocal("queen", 5), 5)
}

func TestCombinedSearchSkipsExternalWhenLibrarySuffices(t *testing.T) {
	d := &deps{
		library: &fakeLibrary{lexical: []*model.LibraryTrack{
			track(1, "/music/a.mp3", "Queen", "One"),
			track(2, "/music/b.mp3", "Queen", "Two"),
			track(3, "/music/c.mp3", "Queen", "Three"),
		}},
		external: &fakeExternal{results: []model.YouTubeResult{{Title: "external"}}},
	}
	s := newTestService(d)

	bundle := s.CombinedSearch(context.Background(), "queen", 10, 5)

	assert.Empty(t, d.external.queries)
	assert.Empty(t, bundle.YouTube)
	assert.Equal(t, 3, bundle.TotalResults)
}

func TestCombinedSearchFallsBackToExternal(t *testing.T) {
	d := &deps{
		library: &fakeLibrary{lexical: []*model.LibraryTrack{
			track(1, "/music/a.mp3", "Queen", "One"),
		}},
		external: &fakeExternal{results: []model.YouTubeResult{
			{Title: "Queen - Live Aid", Artist: "Queen"},
		}},
	}
	s := newTestService(d)

	bundle := s.CombinedSearch(context.Background(), "queen live", 10, 5)

	require.Len(t, d.external.queries, 1)
	require.Len(t, bundle.YouTube, 1)
	assert.Equal(t, 2, bundle.TotalResults)
}

func TestCombinedSearchLogsEveryQuery(t *testing.T) {
	d := &deps{}
	s := newTestService(d)

	s.CombinedSearch(context.Background(), "first", 10, 5)
	s.CombinedSearch(context.Background(), "second", 10, 5)

	require.Len(t, d.searches.entries, 2)
	assert.Equal(t, "first", d.searches.entries[0].Query)
	assert.Equal(t, "second", d.searches.entries[1].Query)
}

func TestCombinedSearchUsesEnhancedQueryExternallyOnly(t *testing.T) {
	d := &deps{
		external: &fakeExternal{},
		llm:      &fakeLLM{reachable: true, response: "queen, freddie mercury, classic rock"},
	}
	s := newTestService(d)

	bundle := s.CombinedSearch(context.Background(), "queen", 10, 5)

	require.Len(t, d.external.queries, 1)
	assert.Equal(t, "queen, freddie mercury, classic rock", d.external.queries[0])
	require.NotNil(t, bundle.EnhancedQuery)
	assert.Equal(t, "queen, freddie mercury, classic rock", *bundle.EnhancedQuery)
	assert.Equal(t, "queen", bundle.Query)
}

func TestEnhanceQueryFallsBackOnFailure(t *testing.T) {
	cases := []struct {
		name string
		llm  *fakeLLM
	}{
		{"unreachable", &fakeLLM{reachable: false, response: "something"}},
		{"generate error", &fakeLLM{reachable: true, err: fmt.Errorf("boom")}},
		{"blank response", &fakeLLM{reachable: true, response: "   \n"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestService(&deps{llm: tc.llm})
			assert.Equal(t, "queen", s.EnhanceQuery(context.Background(), "queen"))
		})
	}
}

func TestEnhanceQueryWithoutModelConfigured(t *testing.T) {
	s := newTestService(&deps{})
	assert.Equal(t, "queen", s.EnhanceQuery(context.Background(), "queen"))
}

func TestRecommendationsColdStartUsesRandomTracks(t *testing.T) {
	d := &deps{library: &fakeLibrary{tracks: []*model.LibraryTrack{
		track(1, "/music/a.mp3", "Anyone", "Anything"),
	}}}
	s := newTestService(d)

	recs := s.Recommendations(context.Background(), 10)

	require.Len(t, recs, 1)
	assert.Equal(t, model.SourceLocal, recs[0].Source)
}

func TestRecommendationsFollowLearnedArtists(t *testing.T) {
	d := &deps{
		library: &fakeLibrary{tracks: []*model.LibraryTrack{
			track(1, "/music/q1.mp3", "Queen", "One"),
			track(2, "/music/other.mp3", "Someone Else", "Other"),
		}},
		patterns: newFakePatterns(),
	}
	require.NoError(t, d.patterns.Increment(model.PatternArtist, "Queen"))
	s := newTestService(d)

	recs := s.Recommendations(context.Background(), 10)

	require.Len(t, recs, 1)
	assert.Equal(t, "/music/q1.mp3", recs[0].FilePath)
}

func TestRecommendationsEmptyWhenLearnedArtistsNotInLibrary(t *testing.T) {
	d := &deps{
		library:  &fakeLibrary{tracks: []*model.LibraryTrack{track(1, "/music/a.mp3", "Someone Else", "X")}},
		patterns: newFakePatterns(),
	}
	require.NoError(t, d.patterns.Increment(model.PatternArtist, "Queen"))
	s := newTestService(d)

	assert.Empty(t, s.Recommendations(context.Background(), 10))
}

func TestQueueLocalSelectionRecordsEverything(t *testing.T) {
	d := &deps{}
	s := newTestService(d)

	queueID, uploadID, err := s.QueueLocalSelection(Selection{
		Source:        model.SourceLocal,
		GuestName:     "Alex",
		DeviceID:      "device-1",
		OriginalQuery: "queen",
		Title:         "Bohemian Rhapsody",
		Artist:        "Queen",
		Genre:         "Rock",
		FilePath:      "/music/Queen/01 Bohemian Rhapsody.mp3",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), queueID)
	assert.Equal(t, int64(1), uploadID)

	require.Len(t, d.queue.uploads, 1)
	assert.Equal(t, "01 Bohemian Rhapsody.mp3", d.queue.uploads[0].OriginalFilename)
	require.Len(t, d.queue.entries, 1)
	assert.Equal(t, "Bohemian Rhapsody", d.queue.entries[0].SongTitle)

	// Selection logged with the chosen result attached.
	require.Len(t, d.searches.entries, 1)
	entry := d.searches.entries[0]
	require.NotNil(t, entry.SelectedResult)
	var selected model.SelectedResult
	require.NoError(t, json.Unmarshal([]byte(*entry.SelectedResult), &selected))
	assert.Equal(t, "Queen", selected.Artist)
	assert.Equal(t, model.SourceLocal, selected.Source)

	// Both pattern dimensions learned.
	assert.Equal(t, 1, d.patterns.counts["artist|Queen"])
	assert.Equal(t, 1, d.patterns.counts["genre|Rock"])
}

func TestPatternFrequencyAccumulates(t *testing.T) {
	d := &deps{}
	s := newTestService(d)

	for i := 0; i < 2; i++ {
		_, _, err := s.QueueLocalSelection(Selection{
			Source:   model.SourceLocal,
			Artist:   "Queen",
			Title:    "Song",
			FilePath: "/music/Queen/Song.mp3",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, d.patterns.counts["artist|Queen"])

	patterns, err := s.Patterns(model.PatternArtist, 10)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, 2, patterns[0].Frequency)
}

func TestLogSelectionAloneDoesNotLearnPatterns(t *testing.T) {
	d := &deps{}
	s := newTestService(d)

	s.LogSelection(Selection{
		Source:        model.SourceYouTube,
		OriginalQuery: "queen",
		Title:         "Bohemian Rhapsody",
		Artist:        "Queen",
		Genre:         "Rock",
		URL:           "https://youtube.com/watch?v=x",
	})

	// Logged for the record, but nothing reached the queue.
	require.Len(t, d.searches.entries, 1)
	assert.Empty(t, d.patterns.counts)
}

func TestAIDJStatusProgression(t *testing.T) {
	d := &deps{}
	s := newTestService(d)

	status, err := s.AIDJStatus()
	require.NoError(t, err)
	assert.False(t, status.ReadyForAIDJ)
	assert.Equal(t, 25, status.SearchesRemaining)

	for i := 0; i < 25; i++ {
		s.CombinedSearch(context.Background(), fmt.Sprintf("query %d", i), 10, 5)
	}

	status, err = s.AIDJStatus()
	require.NoError(t, err)
	assert.Equal(t, 25, status.TotalSearches)
	assert.True(t, status.ReadyForAIDJ)
	assert.Equal(t, 0, status.SearchesRemaining)
}
