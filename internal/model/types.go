package model

import (
	"gorm.io/gorm"
)

// GlobalConfig 存储全局配置 (单用户工具，但存在 DB 里方便迁移)
type GlobalConfig struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const (
	// ConfigKeyClientID is the persisted X-Plex-Client-Identifier. Plex ties
	// device authorizations to it, so it must survive restarts.
	ConfigKeyClientID = "plex_client_id"
)

// BatchPreset 保存常用的批量操作配置，方便重复使用
type BatchPreset struct {
	gorm.Model
	Name          string `json:"name" form:"Name" gorm:"uniqueIndex"` // 预设名称
	StreamType    string `json:"stream_type" form:"StreamType"`       // audio / subtitle
	Scope         string `json:"scope" form:"Scope"`                  // episode / season / show / library
	KeywordFilter string `json:"keyword_filter" form:"KeywordFilter"` // 关键词过滤
	SetNone       bool   `json:"set_none" form:"SetNone"`             // 仅字幕：禁用字幕
}
