package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/batch"
)

type singleUpdateRequest struct {
	RatingKey  string `json:"rating_key" binding:"required"`
	PartID     int    `json:"part_id" binding:"required"`
	StreamID   int    `json:"stream_id"`
	StreamType string `json:"stream_type" binding:"required"`
}

// SetAudioTrackHandler sets the audio track on a single media item.
func SetAudioTrackHandler(c *gin.Context) {
	var req singleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.StreamType != string(batch.StreamAudio) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stream_type must be 'audio' for this endpoint"})
		return
	}

	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	if err := plexClient.SetAudioStream(serverURL, token, req.PartID, req.StreamID); err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Audio track updated successfully",
	})
}

// SetSubtitleTrackHandler sets the subtitle track on a single media item.
// stream_id 0 disables subtitles.
func SetSubtitleTrackHandler(c *gin.Context) {
	var req singleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.StreamType != string(batch.StreamSubtitle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stream_type must be 'subtitle' for this endpoint"})
		return
	}

	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	if err := plexClient.SetSubtitleStream(serverURL, token, req.PartID, req.StreamID); err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Subtitle track updated successfully",
	})
}

type batchUpdateRequest struct {
	Scope           string `json:"scope" binding:"required"`
	StreamType      string `json:"stream_type" binding:"required"`
	TargetRatingKey string `json:"target_rating_key" binding:"required"`
	SourceStreamID  int    `json:"source_stream_id"`
	SourceRatingKey string `json:"source_rating_key"`
	KeywordFilter   string `json:"keyword_filter"`
	SetNone         bool   `json:"set_none"`
}

// StartBatchHandler kicks off an asynchronous batch update and returns the
// batch ID for polling.
func StartBatchHandler(c *gin.Context) {
	var req batchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	scope := batch.Scope(req.Scope)
	if !scope.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scope: " + req.Scope})
		return
	}
	streamType := batch.StreamType(req.StreamType)
	if !streamType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stream_type: " + req.StreamType})
		return
	}
	if req.SetNone && streamType != batch.StreamSubtitle {
		c.JSON(http.StatusBadRequest, gin.H{"error": "set_none is only valid for subtitle updates"})
		return
	}

	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	batchID := batchSvc.StartBatch(batch.Request{
		Token:           token,
		ServerURL:       serverURL,
		Scope:           scope,
		StreamType:      streamType,
		TargetKey:       req.TargetRatingKey,
		SourceStreamID:  req.SourceStreamID,
		SourceRatingKey: req.SourceRatingKey,
		KeywordFilter:   req.KeywordFilter,
		SetNone:         req.SetNone,
	})

	totalItems := 0
	if progress, ok := batchSvc.GetProgress(batchID); ok {
		totalItems = progress.Total
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":    batchID,
		"status":      batch.StatusRunning,
		"message":     "Batch operation started",
		"total_items": totalItems,
	})
}

func BatchProgressHandler(c *gin.Context) {
	batchID := c.Param("id")
	progress, ok := batchSvc.GetProgress(batchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch operation '" + batchID + "' not found"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func BatchResultHandler(c *gin.Context) {
	batchID := c.Param("id")
	result, ok := batchSvc.GetResult(batchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch operation '" + batchID + "' not found"})
		return
	}
	if !result.Status.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Batch operation is still running"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func CancelBatchHandler(c *gin.Context) {
	batchID := c.Param("id")
	if !batchSvc.Cancel(batchID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch operation '" + batchID + "' not found or already finished"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_id": batchID,
		"message":  "Cancellation requested",
	})
}
