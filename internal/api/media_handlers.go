package api

import (
	"net/http"
	"regexp"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/plex"
)

// Plex appends " (N)" to episode titles where N is the number of media
// parts, which is just noise next to the episode index.
var trackCountPattern = regexp.MustCompile(`\s+\(\d+\)$`)

func cleanTitle(title, itemType string) string {
	if itemType == "episode" && title != "" {
		return trackCountPattern.ReplaceAllString(title, "")
	}
	return title
}

type mediaItemView struct {
	RatingKey        string `json:"rating_key"`
	Key              string `json:"key"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Year             int    `json:"year,omitempty"`
	Summary          string `json:"summary,omitempty"`
	Thumb            string `json:"thumb,omitempty"`
	Index            int    `json:"index,omitempty"`
	ParentIndex      int    `json:"parent_index,omitempty"`
	ParentTitle      string `json:"parent_title,omitempty"`
	GrandparentTitle string `json:"grandparent_title,omitempty"`
	HasStreams       bool   `json:"has_streams"`
}

func itemView(item *plex.MediaItem) mediaItemView {
	summary := item.Summary
	if len(summary) > 200 {
		summary = summary[:200]
	}
	return mediaItemView{
		RatingKey:        item.RatingKey,
		Key:              item.Key,
		Type:             item.Type,
		Title:            cleanTitle(item.Title, item.Type),
		Year:             item.Year,
		Summary:          summary,
		Thumb:            item.Thumb,
		Index:            item.Index,
		ParentIndex:      item.ParentIndex,
		ParentTitle:      item.ParentTitle,
		GrandparentTitle: item.GrandparentTitle,
		HasStreams:       item.HasMedia(),
	}
}

type streamView struct {
	ID           int    `json:"id"`
	StreamType   int    `json:"stream_type"`
	Codec        string `json:"codec,omitempty"`
	Language     string `json:"language,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	Title        string `json:"title,omitempty"`
	DisplayTitle string `json:"display_title,omitempty"`
	Selected     bool   `json:"selected"`
	Default      bool   `json:"default"`
	Channels     int    `json:"channels,omitempty"`
	Forced       bool   `json:"forced,omitempty"`
}

func streamViews(streams []plex.Stream) []streamView {
	out := make([]streamView, 0, len(streams))
	for _, s := range streams {
		out = append(out, streamView{
			ID:           s.ID,
			StreamType:   s.StreamType,
			Codec:        s.Codec,
			Language:     s.Language,
			LanguageCode: s.LanguageCode,
			Title:        s.Title,
			DisplayTitle: s.DisplayTitle,
			Selected:     s.Selected,
			Default:      s.Default,
			Channels:     s.Channels,
			Forced:       s.Forced,
		})
	}
	return out
}

func GetMediaItemHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	ratingKey := c.Param("ratingKey")
	item, err := plexClient.GetMetadata(serverURL, token, ratingKey)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media item with key '" + ratingKey + "' not found"})
		return
	}
	c.JSON(http.StatusOK, itemView(item))
}

// ChildrenHandler lists the children of an item (seasons of a show,
// episodes of a season).
func ChildrenHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	ratingKey := c.Param("ratingKey")
	parent, err := plexClient.GetMetadata(serverURL, token, ratingKey)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	parentTitle := ""
	if parent != nil {
		parentTitle = parent.Title
	}

	children, err := plexClient.GetChildren(serverURL, token, ratingKey)
	if err != nil {
		abortPlexError(c, err)
		return
	}

	views := make([]mediaItemView, 0, len(children))
	for i := range children {
		views = append(views, itemView(&children[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"parent_rating_key": ratingKey,
		"parent_title":      parentTitle,
		"children":          views,
		"total":             len(views),
	})
}

func StreamsHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	ratingKey := c.Param("ratingKey")
	item, err := plexClient.GetMetadata(serverURL, token, ratingKey)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media item with key '" + ratingKey + "' not found"})
		return
	}
	part := item.FirstPart()
	if part == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media item '" + ratingKey + "' has no stream information"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rating_key":       item.RatingKey,
		"title":            item.DisplayName(),
		"part_id":          part.ID,
		"audio_streams":    streamViews(part.AudioStreams()),
		"subtitle_streams": streamViews(part.SubtitleStreams()),
	})
}

type languageCount struct {
	Language        string `json:"language"`
	LanguageCode    string `json:"language_code,omitempty"`
	Count           int    `json:"count"`
	SampleStreamID  int    `json:"sample_stream_id,omitempty"`
	SampleRatingKey string `json:"sample_rating_key,omitempty"`
}

type currentSelection struct {
	Language  string `json:"language"`
	Count     int    `json:"count"`
	IsUniform bool   `json:"is_uniform"`
}

type langKey struct {
	language string
	code     string
}

type langSample struct {
	streamID  int
	ratingKey string
}

// streamTally accumulates per-language counts across episodes. Guarded by
// its own mutex because episode metadata is fetched concurrently.
type streamTally struct {
	mu             sync.Mutex
	audioCounts    map[langKey]int
	subtitleCounts map[langKey]int
	audioSamples   map[langKey]langSample
	subSamples     map[langKey]langSample
	selectedAudio  []string
	selectedSubs   []string
}

func newStreamTally() *streamTally {
	return &streamTally{
		audioCounts:    make(map[langKey]int),
		subtitleCounts: make(map[langKey]int),
		audioSamples:   make(map[langKey]langSample),
		subSamples:     make(map[langKey]langSample),
	}
}

func (t *streamTally) addEpisode(ratingKey string, part *plex.Part) {
	seenAudio := make(map[langKey]bool)
	seenSubs := make(map[langKey]bool)
	var selectedAudio, selectedSubtitle string

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range part.AudioStreams() {
		key := streamLangKey(s)
		if !seenAudio[key] {
			seenAudio[key] = true
			t.audioCounts[key]++
			if _, ok := t.audioSamples[key]; !ok {
				t.audioSamples[key] = langSample{streamID: s.ID, ratingKey: ratingKey}
			}
		}
		if s.Selected {
			selectedAudio = key.language
		}
	}
	for _, s := range part.SubtitleStreams() {
		key := streamLangKey(s)
		if !seenSubs[key] {
			seenSubs[key] = true
			t.subtitleCounts[key]++
			if _, ok := t.subSamples[key]; !ok {
				t.subSamples[key] = langSample{streamID: s.ID, ratingKey: ratingKey}
			}
		}
		if s.Selected {
			selectedSubtitle = key.language
		}
	}

	if selectedAudio != "" {
		t.selectedAudio = append(t.selectedAudio, selectedAudio)
	}
	if selectedSubtitle == "" {
		selectedSubtitle = "None"
	}
	t.selectedSubs = append(t.selectedSubs, selectedSubtitle)
}

func streamLangKey(s plex.Stream) langKey {
	lang := s.Language
	if lang == "" {
		lang = "Unknown"
	}
	return langKey{language: lang, code: s.LanguageCode}
}

// summarize converts the counts to sorted views: most common first, then
// alphabetical by language.
func summarize(counts map[langKey]int, samples map[langKey]langSample) []languageCount {
	out := make([]languageCount, 0, len(counts))
	for key, count := range counts {
		lc := languageCount{
			Language:     key.language,
			LanguageCode: key.code,
			Count:        count,
		}
		if sample, ok := samples[key]; ok {
			lc.SampleStreamID = sample.streamID
			lc.SampleRatingKey = sample.ratingKey
		}
		out = append(out, lc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Language < out[j].Language
	})
	return out
}

func mostCommon(langs []string, total int) *currentSelection {
	if len(langs) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, l := range langs {
		counts[l]++
	}
	best, bestCount := "", 0
	for l, n := range counts {
		if n > bestCount || (n == bestCount && l < best) {
			best, bestCount = l, n
		}
	}
	return &currentSelection{
		Language:  best,
		Count:     bestCount,
		IsUniform: bestCount == total,
	}
}

// StreamSummaryHandler aggregates audio/subtitle language counts across
// all episodes under a show or season. Episode metadata is fetched in
// concurrent batches of 10.
func StreamSummaryHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	ratingKey := c.Param("ratingKey")
	item, err := plexClient.GetMetadata(serverURL, token, ratingKey)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media item with key '" + ratingKey + "' not found"})
		return
	}

	var episodes []string
	switch {
	case item.IsShow():
		seasons, err := plexClient.GetChildren(serverURL, token, ratingKey)
		if err != nil {
			abortPlexError(c, err)
			return
		}
		for _, season := range seasons {
			if !season.IsSeason() {
				continue
			}
			eps, err := plexClient.GetChildren(serverURL, token, season.RatingKey)
			if err != nil {
				abortPlexError(c, err)
				return
			}
			for _, ep := range eps {
				if ep.IsEpisode() {
					episodes = append(episodes, ep.RatingKey)
				}
			}
		}
	case item.IsSeason():
		eps, err := plexClient.GetChildren(serverURL, token, ratingKey)
		if err != nil {
			abortPlexError(c, err)
			return
		}
		for _, ep := range eps {
			if ep.IsEpisode() {
				episodes = append(episodes, ep.RatingKey)
			}
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stream summary only available for shows and seasons"})
		return
	}

	tally := newStreamTally()
	const batchSize = 10
	for i := 0; i < len(episodes); i += batchSize {
		end := i + batchSize
		if end > len(episodes) {
			end = len(episodes)
		}
		var wg sync.WaitGroup
		for _, epKey := range episodes[i:end] {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				ep, err := plexClient.GetMetadata(serverURL, token, key)
				if err != nil || ep == nil {
					return
				}
				if part := ep.FirstPart(); part != nil {
					tally.addEpisode(key, part)
				}
			}(epKey)
		}
		wg.Wait()
	}

	c.JSON(http.StatusOK, gin.H{
		"rating_key":       item.RatingKey,
		"title":            item.Title,
		"total_items":      len(episodes),
		"audio_summary":    summarize(tally.audioCounts, tally.audioSamples),
		"subtitle_summary": summarize(tally.subtitleCounts, tally.subSamples),
		"current_audio":    mostCommon(tally.selectedAudio, len(episodes)),
		"current_subtitle": mostCommon(tally.selectedSubs, len(episodes)),
	})
}
