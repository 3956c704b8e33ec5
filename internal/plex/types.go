package plex

import "fmt"

// Stream type codes used by the Plex API.
const (
	StreamTypeVideo    = 1
	StreamTypeAudio    = 2
	StreamTypeSubtitle = 3
)

// Pin is an OAuth PIN from plex.tv.
type Pin struct {
	ID               int    `json:"id"`
	Code             string `json:"code"`
	AuthToken        string `json:"authToken"`
	ExpiresIn        int    `json:"expiresIn"`
	ClientIdentifier string `json:"clientIdentifier"`
}

// User is a plex.tv account.
type User struct {
	ID        int    `json:"id"`
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Title     string `json:"title"`
	Email     string `json:"email,omitempty"`
	Thumb     string `json:"thumb,omitempty"`
	AuthToken string `json:"authToken,omitempty"`
}

// HomeUser is a managed/home user of a Plex Home.
type HomeUser struct {
	ID        int    `json:"id"`
	UUID      string `json:"uuid"`
	Title     string `json:"title"`
	Username  string `json:"username,omitempty"`
	Thumb     string `json:"thumb,omitempty"`
	Protected bool   `json:"protected"`
	Admin     bool   `json:"admin"`
}

// Connection is one way to reach a server resource.
type Connection struct {
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	URI      string `json:"uri"`
	Local    bool   `json:"local"`
	Relay    bool   `json:"relay"`
}

// Server is a resource advertised by plex.tv (server, player, ...).
type Server struct {
	Name             string       `json:"name"`
	Product          string       `json:"product"`
	ProductVersion   string       `json:"productVersion"`
	Platform         string       `json:"platform,omitempty"`
	ClientIdentifier string       `json:"clientIdentifier"`
	AccessToken      string       `json:"accessToken,omitempty"`
	Provides         string       `json:"provides,omitempty"`
	Owned            bool         `json:"owned"`
	Connections      []Connection `json:"connections"`
}

func (s Server) IsMediaServer() bool {
	return s.Product == "Plex Media Server"
}

// ServerIdentity is the /identity response of a media server.
type ServerIdentity struct {
	MachineIdentifier string `json:"machineIdentifier"`
	Version           string `json:"version,omitempty"`
}

// Library is a library section (or generic directory entry).
type Library struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Type    string `json:"type,omitempty"`
	UUID    string `json:"uuid,omitempty"`
	Agent   string `json:"agent,omitempty"`
	Scanner string `json:"scanner,omitempty"`
}

func (l Library) IsVideoLibrary() bool {
	return l.Type == "movie" || l.Type == "show"
}

// Stream is one audio or subtitle track belonging to a media part.
type Stream struct {
	ID                 int    `json:"id"`
	StreamType         int    `json:"streamType"`
	Codec              string `json:"codec,omitempty"`
	Language           string `json:"language,omitempty"`
	LanguageCode       string `json:"languageCode,omitempty"`
	LanguageTag        string `json:"languageTag,omitempty"`
	Title              string `json:"title,omitempty"`
	DisplayTitle       string `json:"displayTitle,omitempty"`
	Selected           bool   `json:"selected,omitempty"`
	Default            bool   `json:"default,omitempty"`
	Index              int    `json:"index,omitempty"`
	Channels           int    `json:"channels,omitempty"`
	AudioChannelLayout string `json:"audioChannelLayout,omitempty"`
	BitDepth           int    `json:"bitDepth,omitempty"`
	Bitrate            int    `json:"bitrate,omitempty"`
	Forced             bool   `json:"forced,omitempty"`
	HearingImpaired    bool   `json:"hearingImpaired,omitempty"`
}

func (s Stream) IsAudio() bool    { return s.StreamType == StreamTypeAudio }
func (s Stream) IsSubtitle() bool { return s.StreamType == StreamTypeSubtitle }

// Part is a media part (one physical file) owning a set of streams.
type Part struct {
	ID        int      `json:"id"`
	Key       string   `json:"key,omitempty"`
	File      string   `json:"file,omitempty"`
	Container string   `json:"container,omitempty"`
	Streams   []Stream `json:"Stream,omitempty"`
}

// AudioStreams returns the audio streams of the part.
func (p *Part) AudioStreams() []Stream {
	return p.streamsOfType(StreamTypeAudio)
}

// SubtitleStreams returns the subtitle streams of the part.
func (p *Part) SubtitleStreams() []Stream {
	return p.streamsOfType(StreamTypeSubtitle)
}

func (p *Part) streamsOfType(streamType int) []Stream {
	var out []Stream
	for _, s := range p.Streams {
		if s.StreamType == streamType {
			out = append(out, s)
		}
	}
	return out
}

// Media groups the parts of one media version.
type Media struct {
	ID              int    `json:"id"`
	Duration        int    `json:"duration,omitempty"`
	Bitrate         int    `json:"bitrate,omitempty"`
	VideoCodec      string `json:"videoCodec,omitempty"`
	AudioCodec      string `json:"audioCodec,omitempty"`
	AudioChannels   int    `json:"audioChannels,omitempty"`
	Container       string `json:"container,omitempty"`
	VideoResolution string `json:"videoResolution,omitempty"`
	Parts           []Part `json:"Part,omitempty"`
}

// MediaItem is a movie, show, season or episode.
type MediaItem struct {
	RatingKey            string  `json:"ratingKey"`
	Key                  string  `json:"key"`
	Type                 string  `json:"type"`
	Title                string  `json:"title"`
	TitleSort            string  `json:"titleSort,omitempty"`
	Summary              string  `json:"summary,omitempty"`
	Thumb                string  `json:"thumb,omitempty"`
	Art                  string  `json:"art,omitempty"`
	Year                 int     `json:"year,omitempty"`
	Duration             int     `json:"duration,omitempty"`
	Index                int     `json:"index,omitempty"`
	ParentIndex          int     `json:"parentIndex,omitempty"`
	ParentRatingKey      string  `json:"parentRatingKey,omitempty"`
	ParentTitle          string  `json:"parentTitle,omitempty"`
	GrandparentRatingKey string  `json:"grandparentRatingKey,omitempty"`
	GrandparentTitle     string  `json:"grandparentTitle,omitempty"`
	Media                []Media `json:"Media,omitempty"`
}

func (i *MediaItem) IsMovie() bool   { return i.Type == "movie" }
func (i *MediaItem) IsShow() bool    { return i.Type == "show" }
func (i *MediaItem) IsSeason() bool  { return i.Type == "season" }
func (i *MediaItem) IsEpisode() bool { return i.Type == "episode" }

// HasMedia reports whether the item carries media/stream information.
func (i *MediaItem) HasMedia() bool { return len(i.Media) > 0 }

// FirstPart returns the first part of the first media, the common case for
// stream selection. Nil when the item has no media info.
func (i *MediaItem) FirstPart() *Part {
	if len(i.Media) > 0 && len(i.Media[0].Parts) > 0 {
		return &i.Media[0].Parts[0]
	}
	return nil
}

// DisplayName renders "S01E02 - Title" for episodes, the plain title otherwise.
func (i *MediaItem) DisplayName() string {
	if !i.IsEpisode() {
		return i.Title
	}
	season := "S??"
	if i.ParentIndex > 0 {
		season = fmt.Sprintf("S%02d", i.ParentIndex)
	}
	episode := "E??"
	if i.Index > 0 {
		episode = fmt.Sprintf("E%02d", i.Index)
	}
	return fmt.Sprintf("%s%s - %s", season, episode, i.Title)
}

// MediaContainer is the generic Plex API response container.
type MediaContainer struct {
	Size       int         `json:"size"`
	TotalSize  int         `json:"totalSize,omitempty"`
	Offset     int         `json:"offset,omitempty"`
	Identifier string      `json:"identifier,omitempty"`
	Title1     string      `json:"title1,omitempty"`
	Title2     string      `json:"title2,omitempty"`
	Directory  []Library   `json:"Directory,omitempty"`
	Metadata   []MediaItem `json:"Metadata,omitempty"`
}

type containerResponse struct {
	MediaContainer MediaContainer `json:"MediaContainer"`
}

type identityResponse struct {
	MediaContainer ServerIdentity `json:"MediaContainer"`
}
