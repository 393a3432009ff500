package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"partyfm/logger"
	"partyfm/model"
)

const searchTimeout = 10 * time.Second

// Client queries the YouTube search sidecar API for music candidates.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the search sidecar at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: searchTimeout,
		},
	}
}

// Search queries YouTube for music matching query. The fixed "music" term is
// appended to bias results toward musical content, and candidates are run
// through the music-content heuristic. Remote failures degrade to an empty
// list; they never propagate.
func (c *Client) Search(ctx context.Context, query string, limit int) []model.YouTubeResult {
	if limit <= 0 {
		limit = 5
	}

	musicQuery := query + " music"

	reqURL := fmt.Sprintf("%s/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(musicQuery), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		logger.Warn("[YouTube] Failed to create search request", logger.ErrorField(err))
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("[YouTube] Search request failed",
			logger.String("query", musicQuery),
			logger.ErrorField(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("[YouTube] Search returned unexpected status",
			logger.String("query", musicQuery),
			logger.Int("status", resp.StatusCode))
		return nil
	}

	var searchResp model.YouTubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		logger.Warn("[YouTube] Failed to decode search response", logger.ErrorField(err))
		return nil
	}

	results := make([]model.YouTubeResult, 0, len(searchResp.Result))
	for _, video := range searchResp.Result {
		if !IsMusicVideo(video.Title, video.Channel.Name) {
			continue
		}

		result := model.YouTubeResult{
			ID:       video.ID,
			Title:    video.Title,
			Artist:   video.Channel.Name,
			Duration: ParseDuration(video.Duration),
			URL:      video.Link,
			Views:    video.ViewCount.Text,
			Source:   model.SourceYouTube,
		}
		if result.Artist == "" {
			result.Artist = "Unknown"
		}
		if len(video.Thumbnails) > 0 {
			result.Thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
		}
		results = append(results, result)
	}

	logger.Info("[YouTube] Search completed",
		logger.String("query", musicQuery),
		logger.Int("candidates", len(searchResp.Result)),
		logger.Int("kept", len(results)))

	return results
}

// Keywords that suggest music content, checked against title and channel.
var musicKeywords = []string{"official", "music", "song", "album", "single", "audio", "lyrics"}

// Keywords that suggest non-music content, checked against the title only.
var excludeKeywords = []string{"tutorial", "lesson", "review", "reaction", "interview", "live stream"}

// Common musical-naming patterns in titles.
var musicPatterns = []string{" - ", " feat", " ft", " remix"}

// IsMusicVideo is the heuristic for whether a candidate is musical content.
// Exclusions win over inclusions; a candidate that triggers neither rule is
// accepted. The filter is a precision aid, not a hard gate: over-admitting is
// the deliberate policy when unsure.
func IsMusicVideo(title, channel string) bool {
	titleLower := strings.ToLower(title)
	channelLower := strings.ToLower(channel)

	for _, keyword := range excludeKeywords {
		if strings.Contains(titleLower, keyword) {
			return false
		}
	}

	for _, keyword := range musicKeywords {
		if strings.Contains(titleLower, keyword) || strings.Contains(channelLower, keyword) {
			return true
		}
	}

	for _, pattern := range musicPatterns {
		if strings.Contains(titleLower, pattern) {
			return true
		}
	}

	return true
}

// ParseDuration converts a "mm:ss" or "hh:mm:ss" duration string to seconds.
// Malformed or missing values yield nil, never an error.
func ParseDuration(durationStr string) *int {
	if durationStr == "" {
		return nil
	}

	parts := strings.Split(durationStr, ":")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil
		}
		numbers = append(numbers, n)
	}

	var seconds int
	switch len(numbers) {
	case 2:
		seconds = numbers[0]*60 + numbers[1]
	case 3:
		seconds = numbers[0]*3600 + numbers[1]*60 + numbers[2]
	default:
		return nil
	}
	return &seconds
}
