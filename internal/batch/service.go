// Package batch drives bulk track-selection operations: it expands a scope
// (episode, season, show or library) into concrete items, matches the source
// stream against each item and applies the winning selection, while pollers
// track progress through the in-memory store.
package batch

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pokerjest/trackAutoTool/internal/matcher"
	"github.com/pokerjest/trackAutoTool/internal/plex"
)

// Accessor is the slice of the Plex API a batch run needs. *plex.Client
// satisfies it; tests substitute a fake.
type Accessor interface {
	GetMetadata(serverURL, token, ratingKey string) (*plex.MediaItem, error)
	GetChildren(serverURL, token, ratingKey string) ([]plex.MediaItem, error)
	GetLibraryItems(serverURL, token, libraryKey string) (*plex.MediaContainer, error)
	SetAudioStream(serverURL, token string, partID, streamID int) error
	SetSubtitleStream(serverURL, token string, partID, streamID int) error
}

// Request are the parameters of one batch run. SourceRatingKey may be empty
// for episode scope, in which case TargetKey doubles as the source item.
// SetNone is only meaningful for subtitle batches and disables subtitles on
// every target instead of matching.
type Request struct {
	Token           string
	ServerURL       string
	Scope           Scope
	StreamType      StreamType
	TargetKey       string
	SourceStreamID  int
	SourceRatingKey string
	KeywordFilter   string
	SetNone         bool
}

// Service executes batch runs asynchronously against an injected store.
type Service struct {
	store  *Store
	client Accessor

	// throttle separates consecutive item mutations so a large batch does
	// not hammer the server.
	throttle time.Duration
}

func NewService(store *Store, client Accessor) *Service {
	return &Service{
		store:    store,
		client:   client,
		throttle: 100 * time.Millisecond,
	}
}

// StartBatch registers a new operation and schedules the run on its own
// goroutine. It returns the batch ID immediately; callers poll GetProgress.
func (s *Service) StartBatch(req Request) string {
	batchID := uuid.New().String()[:8]
	log.Printf("BATCH %s created: scope=%s, target=%s, type=%s", batchID, req.Scope, req.TargetKey, req.StreamType)

	op := s.store.Create(batchID)
	op.markRunning("Collecting items...")

	go s.runBatch(batchID, op, req)

	return batchID
}

// GetProgress returns a progress snapshot, or false when the batch ID is
// unknown.
func (s *Service) GetProgress(batchID string) (Progress, bool) {
	op, ok := s.store.Get(batchID)
	if !ok {
		return Progress{}, false
	}
	return op.Progress(), true
}

// GetResult returns the full summary. Only meaningful once the status is
// terminal; callers must check the status themselves.
func (s *Service) GetResult(batchID string) (ResultSummary, bool) {
	op, ok := s.store.Get(batchID)
	if !ok {
		return ResultSummary{}, false
	}
	return op.Summary(), true
}

// Cancel requests cooperative cancellation of a running batch. Returns false
// when the batch is unknown or already terminal.
func (s *Service) Cancel(batchID string) bool {
	op, ok := s.store.Get(batchID)
	if !ok {
		return false
	}
	if !op.RequestCancel() {
		return false
	}
	log.Printf("BATCH %s cancellation requested", batchID)
	return true
}

func (s *Service) runBatch(batchID string, op *Operation, req Request) {
	defer func() {
		// A batch run must never take the process down.
		if r := recover(); r != nil {
			log.Printf("BATCH %s unexpected panic: %v", batchID, r)
			op.finish(StatusFailed, fmt.Sprintf("Unexpected error: %v", r))
		}
		p := op.Progress()
		log.Printf("BATCH %s done: %s (ok=%d, skip=%d, fail=%d)", batchID, p.Status, p.Success, p.Skipped, p.Failed)
	}()

	sourceKey := req.SourceRatingKey
	if sourceKey == "" && req.Scope == ScopeEpisode {
		sourceKey = req.TargetKey
	}
	if sourceKey == "" && !req.SetNone {
		op.finish(StatusFailed, "No source item specified for matching")
		return
	}

	var sourceStream *plex.Stream
	if sourceKey != "" {
		sourceItem, err := s.client.GetMetadata(req.ServerURL, req.Token, sourceKey)
		if err != nil {
			op.finish(StatusFailed, "Error: "+err.Error())
			return
		}
		if sourceItem != nil {
			if part := sourceItem.FirstPart(); part != nil {
				sourceStream = matcher.FindStreamByID(req.SourceStreamID, candidateStreams(part, req.StreamType))
			}
		}
	}

	if sourceStream == nil && !req.SetNone {
		op.finish(StatusFailed, "Source stream not found")
		return
	}

	op.setMessage("Collecting items to update...")
	items, err := s.itemsForScope(req)
	if err != nil {
		op.finish(StatusFailed, "Error: "+err.Error())
		return
	}
	op.setTotal(len(items))

	if len(items) == 0 {
		op.finish(StatusCompleted, "No items to update")
		return
	}

	// One matcher per run; the keyword filter is a batch-level setting.
	m := matcher.New(req.KeywordFilter)

	for i := range items {
		if op.isCancelRequested() {
			p := op.Progress()
			op.finish(StatusCancelled, fmt.Sprintf("Cancelled after %d of %d items", p.Processed, p.Total))
			return
		}

		item := &items[i]
		op.beginItem(item.DisplayName())

		op.record(s.processItem(req, item, sourceStream, m))

		time.Sleep(s.throttle)
	}

	p := op.Progress()
	op.finish(StatusCompleted, fmt.Sprintf("Completed: %d updated, %d skipped, %d failed", p.Success, p.Skipped, p.Failed))
}

// itemsForScope expands the batch scope into the concrete item list, in
// season-then-episode order for shows and with non-video items skipped for
// libraries.
func (s *Service) itemsForScope(req Request) ([]plex.MediaItem, error) {
	var items []plex.MediaItem

	switch req.Scope {
	case ScopeEpisode:
		item, err := s.client.GetMetadata(req.ServerURL, req.Token, req.TargetKey)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}

	case ScopeSeason:
		episodes, err := s.client.GetChildren(req.ServerURL, req.Token, req.TargetKey)
		if err != nil {
			return nil, err
		}
		for _, e := range episodes {
			if e.IsEpisode() {
				items = append(items, e)
			}
		}

	case ScopeShow:
		return s.episodesOfShow(req, req.TargetKey)

	case ScopeLibrary:
		container, err := s.client.GetLibraryItems(req.ServerURL, req.Token, req.TargetKey)
		if err != nil {
			return nil, err
		}
		for _, item := range container.Metadata {
			switch {
			case item.IsMovie():
				items = append(items, item)
			case item.IsShow():
				episodes, err := s.episodesOfShow(req, item.RatingKey)
				if err != nil {
					return nil, err
				}
				items = append(items, episodes...)
			}
		}
	}

	return items, nil
}

func (s *Service) episodesOfShow(req Request, showKey string) ([]plex.MediaItem, error) {
	seasons, err := s.client.GetChildren(req.ServerURL, req.Token, showKey)
	if err != nil {
		return nil, err
	}

	var items []plex.MediaItem
	for _, season := range seasons {
		if !season.IsSeason() {
			continue
		}
		episodes, err := s.client.GetChildren(req.ServerURL, req.Token, season.RatingKey)
		if err != nil {
			return nil, err
		}
		for _, e := range episodes {
			if e.IsEpisode() {
				items = append(items, e)
			}
		}
	}
	return items, nil
}

// processItem handles one item. Every failure, including external-access
// errors, comes back as a failed ItemResult so one bad item cannot abort the
// whole batch.
func (s *Service) processItem(req Request, item *plex.MediaItem, sourceStream *plex.Stream, m *matcher.StreamMatcher) ItemResult {
	full := item
	// Items discovered through children listings come without stream info.
	if part := item.FirstPart(); part == nil || len(part.Streams) == 0 {
		fetched, err := s.client.GetMetadata(req.ServerURL, req.Token, item.RatingKey)
		if err != nil {
			return s.failItem(item, err.Error())
		}
		if fetched == nil {
			return s.failItem(item, "Failed to fetch item metadata")
		}
		full = fetched
	}

	part := full.FirstPart()
	if part == nil {
		return s.failItem(item, "No media/part information available")
	}

	if req.SetNone && req.StreamType == StreamSubtitle {
		if err := s.client.SetSubtitleStream(req.ServerURL, req.Token, part.ID, 0); err != nil {
			return s.failItem(item, err.Error())
		}
		return ItemResult{
			RatingKey:  item.RatingKey,
			Title:      item.DisplayName(),
			Success:    true,
			MatchLevel: "NONE",
		}
	}

	if sourceStream == nil {
		return s.failItem(item, "No source stream for matching")
	}

	result := m.FindMatch(*sourceStream, candidateStreams(part, req.StreamType))
	if !result.Matched || result.Stream == nil {
		return s.failItem(item, result.Reason)
	}

	if result.AlreadySelected() {
		return ItemResult{
			RatingKey:       item.RatingKey,
			Title:           item.DisplayName(),
			Success:         true,
			Skipped:         true,
			AlreadySelected: true,
			MatchLevel:      result.Level.String(),
		}
	}

	var err error
	if req.StreamType == StreamAudio {
		err = s.client.SetAudioStream(req.ServerURL, req.Token, part.ID, result.Stream.ID)
	} else {
		err = s.client.SetSubtitleStream(req.ServerURL, req.Token, part.ID, result.Stream.ID)
	}
	if err != nil {
		return s.failItem(item, err.Error())
	}

	return ItemResult{
		RatingKey:  item.RatingKey,
		Title:      item.DisplayName(),
		Success:    true,
		MatchLevel: result.Level.String(),
	}
}

func (s *Service) failItem(item *plex.MediaItem, reason string) ItemResult {
	return ItemResult{
		RatingKey: item.RatingKey,
		Title:     item.DisplayName(),
		Error:     reason,
	}
}

func candidateStreams(part *plex.Part, streamType StreamType) []plex.Stream {
	if streamType == StreamAudio {
		return part.AudioStreams()
	}
	return part.SubtitleStreams()
}
