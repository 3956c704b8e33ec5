package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/db"
	"github.com/pokerjest/trackAutoTool/internal/model"
)

func ListPresetsHandler(c *gin.Context) {
	var presets []model.BatchPreset
	if err := db.DB.Order("created_at desc").Find(&presets).Error; err != nil {
		log.Printf("failed to list presets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load presets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

func CreatePresetHandler(c *gin.Context) {
	var preset model.BatchPreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		c.String(http.StatusBadRequest, "Invalid Data: %v", err)
		return
	}
	if preset.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Preset name is required"})
		return
	}

	if err := db.DB.Create(&preset).Error; err != nil {
		log.Printf("failed to create preset %q: %v", preset.Name, err)
		c.JSON(http.StatusConflict, gin.H{"error": "Preset already exists or could not be saved"})
		return
	}
	c.JSON(http.StatusOK, preset)
}

func DeletePresetHandler(c *gin.Context) {
	id := c.Param("id")
	result := db.DB.Delete(&model.BatchPreset{}, id)
	if result.Error != nil {
		log.Printf("failed to delete preset %s: %v", id, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete preset"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preset deleted"})
}
