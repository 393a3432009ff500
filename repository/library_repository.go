package repository

import (
	"fmt"
	"strings"

	"partyfm/db"
	"partyfm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LibraryRepository defines data operations over the indexed music library.
type LibraryRepository interface {
	// UpsertTrack inserts the track or, when the file path is already
	// indexed, replaces the prior row wholesale. The search_text column is
	// part of the same statement, which keeps the lexical index in step
	// with the primary record.
	UpsertTrack(track *model.LibraryTrack) (int64, error)
	// SearchLexical runs a FULLTEXT natural-language match over search_text,
	// ordered by the index's relevance score.
	SearchLexical(query string, limit int) ([]*model.LibraryTrack, error)
	// ListAll returns every indexed track, for the fuzzy fallback scan.
	ListAll() ([]*model.LibraryTrack, error)
	ListRandom(limit int) ([]*model.LibraryTrack, error)
	ListRandomByArtists(artists []string, limit int) ([]*model.LibraryTrack, error)
	// FindByBasename resolves a bare file name, as used in playback URLs,
	// back to the indexed track.
	FindByBasename(name string) (*model.LibraryTrack, error)
	Count() (int64, error)
}

// mysqlLibraryRepository implements LibraryRepository on MySQL via GORM.
type mysqlLibraryRepository struct {
	db *gorm.DB
}

// NewMySQLLibraryRepository creates a library repository on the shared GORM handle.
func NewMySQLLibraryRepository() LibraryRepository {
	return &mysqlLibraryRepository{db: db.GormDB}
}

func (r *mysqlLibraryRepository) UpsertTrack(track *model.LibraryTrack) (int64, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"artist", "album", "title", "year", "genre",
			"duration", "file_size", "embedding", "search_text", "indexed_at",
		}),
	}).Create(track).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert library track %s: %w", track.FilePath, err)
	}

	// On the replace path MySQL reports the existing row's id through the
	// returned model only when it matches; re-read to be sure.
	if track.ID == 0 {
		var existing model.LibraryTrack
		if err := r.db.Select("id").Where("file_path = ?", track.FilePath).First(&existing).Error; err != nil {
			return 0, fmt.Errorf("failed to read back library track %s: %w", track.FilePath, err)
		}
		track.ID = existing.ID
	}
	return track.ID, nil
}

func (r *mysqlLibraryRepository) SearchLexical(query string, limit int) ([]*model.LibraryTrack, error) {
	var tracks []*model.LibraryTrack
	err := r.db.Raw(`
		SELECT id, file_path, artist, album, title, year, genre, duration, file_size, search_text, indexed_at
		FROM music_library
		WHERE MATCH(search_text) AGAINST (? IN NATURAL LANGUAGE MODE)
		ORDER BY MATCH(search_text) AGAINST (? IN NATURAL LANGUAGE MODE) DESC
		LIMIT ?`, query, query, limit).
		Scan(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to run lexical search for %q: %w", query, err)
	}
	return tracks, nil
}

func (r *mysqlLibraryRepository) ListAll() ([]*model.LibraryTrack, error) {
	var tracks []*model.LibraryTrack
	if err := r.db.Order("id").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to list library tracks: %w", err)
	}
	return tracks, nil
}

func (r *mysqlLibraryRepository) ListRandom(limit int) ([]*model.LibraryTrack, error) {
	var tracks []*model.LibraryTrack
	if err := r.db.Order("RAND()").Limit(limit).Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to list random library tracks: %w", err)
	}
	return tracks, nil
}

func (r *mysqlLibraryRepository) ListRandomByArtists(artists []string, limit int) ([]*model.LibraryTrack, error) {
	var tracks []*model.LibraryTrack
	if err := r.db.Where("artist IN ?", artists).Order("RAND()").Limit(limit).Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to list library tracks by artists: %w", err)
	}
	return tracks, nil
}

func (r *mysqlLibraryRepository) FindByBasename(name string) (*model.LibraryTrack, error) {
	var track model.LibraryTrack
	// The name is a literal file name, so LIKE metacharacters in it must
	// match themselves.
	err := r.db.Where("file_path = ? OR file_path LIKE ?", name, "%/"+escapeLike(name)).
		First(&track).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find library track %q: %w", name, err)
	}
	return &track, nil
}

// escapeLike escapes the MySQL LIKE wildcards so the input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *mysqlLibraryRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.LibraryTrack{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count library tracks: %w", err)
	}
	return count, nil
}
