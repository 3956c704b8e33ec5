package db

import (
	"log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/pokerjest/trackAutoTool/internal/model"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(storagePath string) {
	var err error

	// 确保存储目录存在
	dir := filepath.Dir(storagePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create storage directory: %v", err)
	}

	DB, err = gorm.Open(sqlite.Open(storagePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// 自动迁移模式
	err = DB.AutoMigrate(&model.GlobalConfig{}, &model.BatchPreset{})
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureClientID returns the Plex client identifier to advertise. An
// explicitly configured ID wins; otherwise the persisted one is reused, and
// on first run a fresh ID is generated and stored.
func EnsureClientID(configured string) string {
	if configured != "" {
		return configured
	}

	var row model.GlobalConfig
	if err := DB.First(&row, "key = ?", model.ConfigKeyClientID).Error; err == nil && row.Value != "" {
		return row.Value
	}

	id := "tracktool-" + uuid.New().String()[:12]
	if err := DB.Save(&model.GlobalConfig{Key: model.ConfigKeyClientID, Value: id}).Error; err != nil {
		log.Printf("Failed to persist client ID: %v", err)
	}
	return id
}
