package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameArtistAlbumFromDirectories(t *testing.T) {
	e := NewExtractor("/lib")
	m := &Metadata{FilePath: "/lib/Queen/A Night at the Opera/01 Bohemian Rhapsody.mp3"}

	e.parseFilename(m)

	require.NotNil(t, m.Artist)
	assert.Equal(t, "Queen", *m.Artist)
	require.NotNil(t, m.Album)
	assert.Equal(t, "A Night at the Opera", *m.Album)
	require.NotNil(t, m.Title)
	assert.Equal(t, "Bohemian Rhapsody", *m.Title)
}

func TestParseFilenameArtistFromStem(t *testing.T) {
	e := NewExtractor("/lib")
	m := &Metadata{FilePath: "Freddie - Somebody to Love.mp3"}

	e.parseFilename(m)

	require.NotNil(t, m.Artist)
	assert.Equal(t, "Freddie", *m.Artist)
	assert.Nil(t, m.Album)
	require.NotNil(t, m.Title)
	assert.Equal(t, "Somebody to Love", *m.Title)
}

func TestParseFilenameLibraryRootIsNotAnArtist(t *testing.T) {
	e := NewExtractor("/mnt/media/MUSIC")
	m := &Metadata{FilePath: "/MUSIC/Greatest Hits/02 Track Two.mp3"}

	e.parseFilename(m)

	assert.Nil(t, m.Artist)
	require.NotNil(t, m.Album)
	assert.Equal(t, "Greatest Hits", *m.Album)
	require.NotNil(t, m.Title)
	assert.Equal(t, "Track Two", *m.Title)
}

func TestParseFilenameTrackNumberKeptOnShortNames(t *testing.T) {
	e := NewExtractor("/lib")
	m := &Metadata{FilePath: "/lib/99.mp3"}

	e.parseFilename(m)

	require.NotNil(t, m.Title)
	assert.Equal(t, "99", *m.Title)
}

func TestParseFilenameDoesNotOverrideTagValues(t *testing.T) {
	e := NewExtractor("/lib")
	artist := "Tagged Artist"
	m := &Metadata{
		FilePath: "/lib/Dir Artist/Album/03 Song.mp3",
		Artist:   &artist,
	}

	e.parseFilename(m)

	assert.Equal(t, "Tagged Artist", *m.Artist)
	require.NotNil(t, m.Album)
	assert.Equal(t, "Album", *m.Album)
}

func TestExtractUnreadableFileFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "The Band - Great Song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))

	e := NewExtractor(dir)
	m := e.Extract(path)

	require.NotNil(t, m)
	assert.Equal(t, path, m.FilePath)
	require.NotNil(t, m.Artist)
	assert.Equal(t, "The Band", *m.Artist)
	require.NotNil(t, m.Title)
	assert.Equal(t, "Great Song", *m.Title)
	assert.Nil(t, m.Duration)
	assert.Equal(t, int64(16), m.FileSize)
}

func TestSplitPathDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.mp3"}, splitPath("/a//b/c.mp3"))
	assert.Equal(t, []string{"c.mp3"}, splitPath("c.mp3"))
}
