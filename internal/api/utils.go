package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/plex"
)

// abortPlexError maps client errors to the right HTTP status.
func abortPlexError(c *gin.Context, err error) {
	var connErr *plex.ConnectionError
	if errors.As(err, &connErr) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Cannot connect to Plex server: " + connErr.Message})
		return
	}
	var authErr *plex.AuthError
	if errors.As(err, &authErr) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
		return
	}
	log.Printf("plex request failed: %v", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func ReadyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    plex.Product,
		"version": plex.Version,
	})
}
