package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"partyfm/logger"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Metadata is the normalized record extracted from one audio file. Optional
// fields are nil when the file carries no usable value.
type Metadata struct {
	FilePath string
	Artist   *string
	Album    *string
	Title    *string
	Year     *int
	Genre    *string
	Duration *int // Seconds
	FileSize int64
}

// Extractor reads embedded tags and falls back to filename/path heuristics.
// Extraction never fails: an unreadable file still yields a record.
type Extractor struct {
	root     string // Cleaned library root path
	rootName string // Base name of the root, never treated as an artist
}

// NewExtractor creates an extractor for a library rooted at libraryRoot.
func NewExtractor(libraryRoot string) *Extractor {
	clean := filepath.Clean(libraryRoot)
	return &Extractor{root: clean, rootName: filepath.Base(clean)}
}

// Date-like raw tag frames tried in priority order for the year.
var yearTagKeys = []string{"TDRC", "TYER", "DATE", "\xa9day", "date"}

// Extract produces the normalized metadata record for path.
func (e *Extractor) Extract(path string) *Metadata {
	m := &Metadata{
		FilePath: path,
		FileSize: fileSize(path),
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("[Metadata] Cannot open file, falling back to filename parsing",
			logger.String("path", path),
			logger.ErrorField(err))
		e.parseFilename(m)
		return m
	}
	defer f.Close()

	tags, err := tag.ReadFrom(f)
	if err != nil {
		logger.Debug("[Metadata] No readable tags, falling back to filename parsing",
			logger.String("path", path),
			logger.ErrorField(err))
		m.Duration = readDuration(path)
		e.parseFilename(m)
		return m
	}

	m.Artist = nonEmpty(tags.Artist())
	m.Album = nonEmpty(tags.Album())
	m.Title = nonEmpty(tags.Title())
	m.Genre = nonEmpty(tags.Genre())
	m.Year = extractYear(tags)
	m.Duration = readDuration(path)

	// Tags gave nothing useful; fall back to path structure.
	if m.Artist == nil && m.Album == nil && m.Title == nil {
		e.parseFilename(m)
	}

	return m
}

// extractYear takes the library's parsed year first, then scans raw
// date-like frames: any value whose first four characters are digits
// contributes those digits as the year.
func extractYear(tags tag.Metadata) *int {
	if y := tags.Year(); y > 0 {
		return &y
	}

	raw := tags.Raw()
	for _, key := range yearTagKeys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		s := strings.TrimSpace(fmt.Sprintf("%v", value))
		if len(s) >= 4 {
			if y, err := strconv.Atoi(s[:4]); err == nil {
				return &y
			}
		}
	}
	return nil
}

// readDuration reads the audio stream length. Absent on any failure.
func readDuration(path string) *int {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return nil
	}
	secs := int(props.Length.Seconds())
	if secs <= 0 {
		return nil
	}
	return &secs
}

// parseFilename fills artist/album/title from the path structure:
// .../Artist/Album/NN Track.ext or .../Artist/Track.ext, with track-number
// prefixes stripped and "Artist - Title" stems split when the directory
// structure gave no artist.
func (e *Extractor) parseFilename(m *Metadata) {
	segments := e.pathSegments(m.FilePath)
	stem := strings.TrimSuffix(filepath.Base(m.FilePath), filepath.Ext(m.FilePath))

	var artist, album *string
	title := stem

	if len(segments) >= 3 {
		// .../Artist/Album/Track.ext
		if segments[len(segments)-3] != e.rootName {
			artist = nonEmpty(segments[len(segments)-3])
		}
		album = nonEmpty(segments[len(segments)-2])
	} else if len(segments) == 2 {
		// Artist/Track.ext
		if segments[len(segments)-2] != e.rootName {
			artist = nonEmpty(segments[len(segments)-2])
		}
	}

	// Strip leading track numbers: "01 Song Name" -> "Song Name".
	if len(title) > 3 && isDigit(title[0]) && isDigit(title[1]) {
		title = strings.Trim(title[2:], " -_")
	}

	// "Artist - Song" stems, only when the directories did not name an artist.
	if strings.Contains(stem, " - ") && artist == nil {
		parts := strings.SplitN(stem, " - ", 2)
		artist = nonEmpty(strings.TrimSpace(parts[0]))
		title = strings.TrimSpace(parts[1])
	}

	if m.Artist == nil {
		m.Artist = artist
	}
	if m.Album == nil {
		m.Album = album
	}
	if m.Title == nil {
		m.Title = nonEmpty(title)
	}
}

// pathSegments returns the segments the heuristics look at: the path
// relative to the library root when the file lives under it, so that files
// directly under a deep root never inherit the root's parents as artist or
// album. Paths outside the root keep their own segments.
func (e *Extractor) pathSegments(path string) []string {
	if rel, err := filepath.Rel(e.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return splitPath(rel)
	}
	return splitPath(path)
}

// splitPath breaks a path into its non-empty segments, filename included.
func splitPath(path string) []string {
	raw := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" && s != "." {
			segments = append(segments, s)
		}
	}
	return segments
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
