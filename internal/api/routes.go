package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/batch"
	"github.com/pokerjest/trackAutoTool/internal/plex"
	"github.com/pokerjest/trackAutoTool/internal/service"
)

// Wired once at startup by InitRoutes; no package creates its own instances.
var (
	plexClient *plex.Client
	authSvc    *service.AuthService
	batchSvc   *batch.Service
)

func InitRoutes(r *gin.Engine, client *plex.Client, auth *service.AuthService, batches *batch.Service) {
	plexClient = client
	authSvc = auth
	batchSvc = batches

	r.GET("/health", HealthHandler)
	r.GET("/ready", ReadyHandler)
	r.GET("/", RootHandler)

	apiGroup := r.Group("/api")
	{
		// Auth
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/pin", CreatePinHandler)
			authGroup.GET("/pin/:id", CheckPinHandler)
			authGroup.POST("/pin/:id/complete", CompletePinLoginHandler)
			authGroup.POST("/token", TokenLoginHandler)
			authGroup.GET("/session", RequireToken(), SessionHandler)
			authGroup.GET("/user", RequireToken(), UserHandler)
			authGroup.POST("/logout", RequireToken(), LogoutHandler)
			authGroup.GET("/home-users", RequireToken(), HomeUsersHandler)
			authGroup.POST("/switch-user", RequireToken(), SwitchUserHandler)
		}

		// Server selection / status
		serverGroup := apiGroup.Group("/server", RequireToken())
		{
			serverGroup.GET("/status", ServerStatusHandler)
			serverGroup.GET("/identity", ServerIdentityHandler)
			serverGroup.GET("/list", ListServersHandler)
			serverGroup.POST("/select", SelectServerHandler)
			serverGroup.POST("/test", TestConnectionHandler)
		}

		// Library browsing
		libraryGroup := apiGroup.Group("/libraries", RequireToken())
		{
			libraryGroup.GET("", ListLibrariesHandler)
			libraryGroup.GET("/:key", GetLibraryHandler)
			libraryGroup.GET("/:key/items", LibraryItemsHandler)
		}

		// Media metadata / streams
		mediaGroup := apiGroup.Group("/media", RequireToken())
		{
			mediaGroup.GET("/:ratingKey", GetMediaItemHandler)
			mediaGroup.GET("/:ratingKey/children", ChildrenHandler)
			mediaGroup.GET("/:ratingKey/streams", StreamsHandler)
			mediaGroup.GET("/:ratingKey/stream-summary", StreamSummaryHandler)
		}

		// Track updates (single + batch)
		trackGroup := apiGroup.Group("/tracks", RequireToken())
		{
			trackGroup.PUT("/audio", SetAudioTrackHandler)
			trackGroup.PUT("/subtitle", SetSubtitleTrackHandler)
			trackGroup.POST("/batch", StartBatchHandler)
			trackGroup.GET("/batch/:id", BatchProgressHandler)
			trackGroup.GET("/batch/:id/result", BatchResultHandler)
			trackGroup.POST("/batch/:id/cancel", CancelBatchHandler)
		}

		// Saved batch presets
		presetGroup := apiGroup.Group("/presets")
		{
			presetGroup.GET("", ListPresetsHandler)
			presetGroup.POST("", CreatePresetHandler)
			presetGroup.DELETE("/:id", DeletePresetHandler)
		}
	}
}
