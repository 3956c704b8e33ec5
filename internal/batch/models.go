package batch

// Scope is the breadth of a batch operation.
type Scope string

const (
	ScopeEpisode Scope = "episode"
	ScopeSeason  Scope = "season"
	ScopeShow    Scope = "show"
	ScopeLibrary Scope = "library"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeEpisode, ScopeSeason, ScopeShow, ScopeLibrary:
		return true
	}
	return false
}

// StreamType selects which kind of track a batch updates.
type StreamType string

const (
	StreamAudio    StreamType = "audio"
	StreamSubtitle StreamType = "subtitle"
)

func (t StreamType) Valid() bool {
	return t == StreamAudio || t == StreamSubtitle
}

// Status of a batch operation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ItemResult is the outcome for a single item within a batch.
type ItemResult struct {
	RatingKey       string `json:"rating_key"`
	Title           string `json:"title"`
	Success         bool   `json:"success"`
	Skipped         bool   `json:"skipped,omitempty"`
	Error           string `json:"error,omitempty"`
	MatchLevel      string `json:"match_level,omitempty"`
	AlreadySelected bool   `json:"already_selected,omitempty"`
}

// Progress is a point-in-time snapshot of a running or finished batch.
type Progress struct {
	BatchID     string `json:"batch_id"`
	Status      Status `json:"status"`
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
	Success     int    `json:"success"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	CurrentItem string `json:"current_item,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ResultSummary is the full outcome of a batch; Results may be truncated for
// very large batches while the counters always cover every item.
type ResultSummary struct {
	BatchID         string       `json:"batch_id"`
	Status          Status       `json:"status"`
	Total           int          `json:"total"`
	Success         int          `json:"success"`
	Failed          int          `json:"failed"`
	Skipped         int          `json:"skipped"`
	DurationSeconds float64      `json:"duration_seconds"`
	Results         []ItemResult `json:"results"`
}
