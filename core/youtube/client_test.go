package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMusicVideo(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		channel string
		want    bool
	}{
		{"official video", "Queen - Bohemian Rhapsody (Official Video)", "Queen Official", true},
		{"music channel", "Bohemian Rhapsody", "Queen Music", true},
		{"artist dash title pattern", "Queen - Bohemian Rhapsody", "SomeChannel", true},
		{"remix pattern", "Bohemian Rhapsody remix", "SomeChannel", true},
		{"tutorial excluded", "Bohemian Rhapsody piano tutorial", "Queen Music", false},
		{"reaction excluded", "REACTION to Queen - Bohemian Rhapsody", "Music Reactions", false},
		{"live stream excluded", "24/7 live stream", "Radio Channel", false},
		{"neutral content accepted", "Bohemian Rhapsody", "SomeChannel", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsMusicVideo(tc.title, tc.channel))
		})
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"3:45", intPtr(225)},
		{"1:23:45", intPtr(5025)},
		{"0:07", intPtr(7)},
		{"", nil},
		{"notaduration", nil},
		{"1:2:3:4", nil},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := ParseDuration(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tc.want, *got)
			}
		})
	}
}

func TestSearchFiltersAndConverts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "queen music", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": [
			{
				"id": "abc123",
				"title": "Queen - Bohemian Rhapsody (Official Video)",
				"link": "https://youtube.com/watch?v=abc123",
				"duration": "5:55",
				"channel": {"name": "Queen Official"},
				"thumbnails": [{"url": "small.jpg"}, {"url": "large.jpg"}],
				"viewCount": {"text": "1.9B views"}
			},
			{
				"id": "def456",
				"title": "How to play Bohemian Rhapsody tutorial",
				"link": "https://youtube.com/watch?v=def456",
				"duration": "12:00",
				"channel": {"name": "Piano Lessons"}
			}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	results := c.Search(context.Background(), "queen", 5)

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "abc123", r.ID)
	assert.Equal(t, "Queen Official", r.Artist)
	require.NotNil(t, r.Duration)
	assert.Equal(t, 355, *r.Duration)
	assert.Equal(t, "large.jpg", r.Thumbnail)
	assert.Equal(t, "1.9B views", r.Views)
	assert.Equal(t, "youtube", r.Source)
}

func TestSearchDegradesToEmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.Empty(t, c.Search(context.Background(), "queen", 5))

	srv.Close()
	assert.Empty(t, c.Search(context.Background(), "queen", 5))
}

func intPtr(v int) *int { return &v }
