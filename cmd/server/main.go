package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/api"
	"github.com/pokerjest/trackAutoTool/internal/batch"
	"github.com/pokerjest/trackAutoTool/internal/config"
	"github.com/pokerjest/trackAutoTool/internal/db"
	"github.com/pokerjest/trackAutoTool/internal/plex"
	"github.com/pokerjest/trackAutoTool/internal/scheduler"
	"github.com/pokerjest/trackAutoTool/internal/service"
)

func main() {
	// 1. Load Config
	if err := config.LoadConfig("."); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Gin Mode
	gin.SetMode(config.AppConfig.Server.Mode)

	// 转换为绝对路径日志一下
	absPath, _ := filepath.Abs(config.AppConfig.Database.Path)
	log.Printf("Initializing database at: %s", absPath)

	db.InitDB(config.AppConfig.Database.Path)
	defer db.CloseDB()

	// Plex ties device authorizations to the client identifier, so it has
	// to stay stable across restarts.
	clientID := db.EnsureClientID(config.AppConfig.Plex.ClientID)

	plexClient := plex.NewClient(
		clientID,
		time.Duration(config.AppConfig.Plex.Timeout)*time.Second,
		time.Duration(config.AppConfig.Plex.IdentityTimeout)*time.Second,
	)

	sessions := service.NewSessionStore()
	authSvc := service.NewAuthService(plexClient, sessions, config.AppConfig.SecretKey, clientID)

	batches := batch.NewStore()
	batchSvc := batch.NewService(batches, plexClient)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Plex-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 初始化路由
	api.InitRoutes(r, plexClient, authSvc, batchSvc)

	// Start Scheduler
	sch := scheduler.NewManager(batches)
	sch.Start()
	defer sch.Stop()

	port := fmt.Sprintf("%d", config.AppConfig.Server.Port)
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
