package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListLibrariesHandler lists library sections. Only movie and show
// libraries are returned unless video_only=false.
func ListLibrariesHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	libraries, err := plexClient.GetLibraries(serverURL, token)
	if err != nil {
		abortPlexError(c, err)
		return
	}

	videoOnly := c.DefaultQuery("video_only", "true") != "false"
	if videoOnly {
		filtered := libraries[:0]
		for _, lib := range libraries {
			if lib.IsVideoLibrary() {
				filtered = append(filtered, lib)
			}
		}
		libraries = filtered
	}

	c.JSON(http.StatusOK, gin.H{"libraries": libraries})
}

func GetLibraryHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	libraries, err := plexClient.GetLibraries(serverURL, token)
	if err != nil {
		abortPlexError(c, err)
		return
	}

	key := c.Param("key")
	for _, lib := range libraries {
		if lib.Key == key {
			c.JSON(http.StatusOK, lib)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Library not found"})
}

func LibraryItemsHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}

	container, err := plexClient.GetLibraryItems(serverURL, token, c.Param("key"))
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"size":  container.Size,
		"items": container.Metadata,
	})
}
