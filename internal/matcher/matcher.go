// Package matcher carries a track selection from one item to another by
// finding the candidate stream that best corresponds to a reference stream.
package matcher

import (
	"fmt"
	"strings"

	"github.com/pokerjest/trackAutoTool/internal/plex"
)

// Level is a match priority level. Lower means a stronger match.
type Level int

const (
	LevelExact Level = iota + 1
	LevelTitleDisplayCodec
	LevelTitleDisplay
	LevelTitle
	LevelDisplayTitle
	LevelLanguage
	LevelLanguageCode

	LevelNoMatch Level = 99
)

func (l Level) String() string {
	switch l {
	case LevelExact:
		return "EXACT"
	case LevelTitleDisplayCodec:
		return "TITLE_DISPLAY_CODEC"
	case LevelTitleDisplay:
		return "TITLE_DISPLAY"
	case LevelTitle:
		return "TITLE"
	case LevelDisplayTitle:
		return "DISPLAY_TITLE"
	case LevelLanguage:
		return "LANGUAGE"
	case LevelLanguageCode:
		return "LANGUAGE_CODE"
	default:
		return "NO_MATCH"
	}
}

// Result is the outcome of one matching attempt. Matched == false implies
// Stream == nil.
type Result struct {
	Matched bool
	Stream  *plex.Stream
	Level   Level
	Reason  string
}

// AlreadySelected reports whether the matched stream is already the active
// one on the target, so the caller can skip the update.
func (r Result) AlreadySelected() bool {
	return r.Matched && r.Stream != nil && r.Stream.Selected
}

// StreamMatcher finds the best matching stream across different episodes or
// items, using seven priority levels with an optional keyword pre-filter.
type StreamMatcher struct {
	keyword string
}

// New returns a matcher. keywordFilter, when non-empty, restricts candidates
// to streams whose title or display title contains it (case-insensitive),
// e.g. "Commentary" or "English".
func New(keywordFilter string) *StreamMatcher {
	return &StreamMatcher{keyword: strings.ToLower(keywordFilter)}
}

// FindMatch returns the best match for ref among candidates. It never fails;
// a miss is reported through Matched == false plus a reason.
func (m *StreamMatcher) FindMatch(ref plex.Stream, candidates []plex.Stream) Result {
	if len(candidates) == 0 {
		return Result{Level: LevelNoMatch, Reason: "No candidate streams available"}
	}

	filtered := make([]*plex.Stream, 0, len(candidates))
	for i := range candidates {
		if m.matchesKeyword(&candidates[i]) {
			filtered = append(filtered, &candidates[i])
		}
	}
	if len(filtered) == 0 {
		return Result{
			Level:  LevelNoMatch,
			Reason: fmt.Sprintf("No streams match keyword filter: %s", m.keyword),
		}
	}

	for level := LevelExact; level <= LevelLanguageCode; level++ {
		for _, candidate := range filtered {
			if matchesAtLevel(&ref, candidate, level) {
				return Result{
					Matched: true,
					Stream:  candidate,
					Level:   level,
					Reason:  fmt.Sprintf("Matched at level: %s", level),
				}
			}
		}
	}

	return Result{Level: LevelNoMatch, Reason: "No matching stream found at any level"}
}

func (m *StreamMatcher) matchesKeyword(s *plex.Stream) bool {
	if m.keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), m.keyword) ||
		strings.Contains(strings.ToLower(s.DisplayTitle), m.keyword)
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func matchesAtLevel(ref, candidate *plex.Stream, level Level) bool {
	rTitle := normalize(ref.Title)
	rDisplay := normalize(ref.DisplayTitle)
	rCodec := normalize(ref.Codec)
	rLang := normalize(ref.Language)
	rLangCode := normalize(ref.LanguageCode)

	cTitle := normalize(candidate.Title)
	cDisplay := normalize(candidate.DisplayTitle)
	cCodec := normalize(candidate.Codec)
	cLang := normalize(candidate.Language)
	cLangCode := normalize(candidate.LanguageCode)

	switch level {
	case LevelExact:
		// Empty reference attributes are wildcards here; channel count is
		// always compared (absent counts as 0 on both sides).
		return (rTitle == "" || rTitle == cTitle) &&
			(rDisplay == "" || rDisplay == cDisplay) &&
			(rCodec == "" || rCodec == cCodec) &&
			(rLang == "" || rLang == cLang) &&
			(rLangCode == "" || rLangCode == cLangCode) &&
			candidate.Channels == ref.Channels

	case LevelTitleDisplayCodec:
		return rTitle != "" && rTitle == cTitle &&
			rDisplay != "" && rDisplay == cDisplay &&
			rCodec != "" && rCodec == cCodec

	case LevelTitleDisplay:
		return rTitle != "" && rTitle == cTitle &&
			rDisplay != "" && rDisplay == cDisplay

	case LevelTitle:
		return rTitle != "" && rTitle == cTitle

	case LevelDisplayTitle:
		return rDisplay != "" && rDisplay == cDisplay

	case LevelLanguage:
		return rLang != "" && rLang == cLang

	case LevelLanguageCode:
		return rLangCode != "" && rLangCode == cLangCode

	default:
		return false
	}
}

// FindStreamByID returns the candidate with the given ID, or nil.
func FindStreamByID(streamID int, candidates []plex.Stream) *plex.Stream {
	for i := range candidates {
		if candidates[i].ID == streamID {
			return &candidates[i]
		}
	}
	return nil
}
