package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/config"
)

// ServerStatusHandler reports whether the selected Plex server answers.
func ServerStatusHandler(c *gin.Context) {
	sess, ok := requestSession(c)
	if !ok {
		return
	}
	// Fall back to the configured default server before one is selected.
	serverURL := sess.ServerURL
	if serverURL == "" {
		serverURL = config.AppConfig.Plex.URL
	}
	if serverURL == "" {
		c.JSON(http.StatusOK, gin.H{"connected": false, "error": "No server selected"})
		return
	}

	identity, err := plexClient.CheckServerIdentity(serverURL, sess.Token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connected":   true,
		"server_url":  serverURL,
		"server_name": sess.ServerName,
		"identity":    identity,
	})
}

func ServerIdentityHandler(c *gin.Context) {
	serverURL, token, ok := requestServerURL(c)
	if !ok {
		return
	}
	identity, err := plexClient.CheckServerIdentity(serverURL, token)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// ListServersHandler lists the media servers available to the account via
// plex.tv resources.
func ListServersHandler(c *gin.Context) {
	servers, err := plexClient.GetServers(requestToken(c))
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": servers})
}

// SelectServerHandler stores the chosen server on the session after
// verifying it is reachable.
func SelectServerHandler(c *gin.Context) {
	var req struct {
		URL       string `json:"url" binding:"required"`
		Name      string `json:"name"`
		MachineID string `json:"machine_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing server url"})
		return
	}
	serverURL := strings.TrimRight(req.URL, "/")

	sess, ok := requestSession(c)
	if !ok {
		return
	}

	identity, err := plexClient.CheckServerIdentity(serverURL, sess.Token)
	if err != nil {
		abortPlexError(c, err)
		return
	}

	machineID := req.MachineID
	if machineID == "" {
		machineID = identity.MachineIdentifier
	}
	authSvc.UpdateSessionServer(sess.Token, serverURL, req.Name, machineID)

	c.JSON(http.StatusOK, gin.H{
		"server_url": serverURL,
		"identity":   identity,
	})
}

// TestConnectionHandler probes a candidate server URL and reports latency.
func TestConnectionHandler(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing server url"})
		return
	}
	serverURL := strings.TrimRight(req.URL, "/")

	start := time.Now()
	identity, err := plexClient.CheckServerIdentity(serverURL, requestToken(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"reachable": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reachable":  true,
		"latency_ms": time.Since(start).Milliseconds(),
		"identity":   identity,
	})
}
