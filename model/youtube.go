package model

// YouTubeResult is one external search candidate that passed the
// music-content heuristic.
type YouTubeResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"` // Channel name stands in for the artist
	Duration  *int   `json:"duration,omitempty"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Views     string `json:"views,omitempty"`
	Source    string `json:"source"` // Always "youtube"
}

// YouTubeVideo is one raw candidate as returned by the search sidecar API,
// before content filtering.
type YouTubeVideo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Duration   string `json:"duration"` // Textual, "mm:ss" or "hh:mm:ss"
	Channel    struct {
		Name string `json:"name"`
	} `json:"channel"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
	ViewCount struct {
		Text string `json:"text"`
	} `json:"viewCount"`
}

// YouTubeSearchResponse is the sidecar API's search envelope.
type YouTubeSearchResponse struct {
	Result []YouTubeVideo `json:"result"`
}
