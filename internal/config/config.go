package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Plex      PlexConfig     `mapstructure:"plex"`
	Log       LogConfig      `mapstructure:"log"`
	SecretKey string         `mapstructure:"secret_key"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug or release
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type PlexConfig struct {
	// URL is the default media server used by /api/server/status when the
	// session has not selected one yet.
	URL             string `mapstructure:"url"`
	ClientID        string `mapstructure:"client_id"`
	Timeout         int    `mapstructure:"timeout"`          // seconds
	IdentityTimeout int    `mapstructure:"identity_timeout"` // seconds
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var AppConfig *Config

func LoadConfig(configPath string) error {
	v := viper.New()

	v.SetDefault("server.port", 8307)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/tracktool.db")
	v.SetDefault("plex.url", "http://localhost:32400")
	v.SetDefault("plex.client_id", "")
	v.SetDefault("plex.timeout", 20)
	v.SetDefault("plex.identity_timeout", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("secret_key", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	// 环境变量替换 (使用 TRACKTOOL_ 前缀)
	// e.g. TRACKTOOL_SERVER_PORT=9090
	v.SetEnvPrefix("TRACKTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, use defaults
		fmt.Println("Config file not found, using defaults")
	}

	AppConfig = &Config{}
	if err := v.Unmarshal(AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Session IDs are derived from the secret; an ephemeral one means
	// sessions do not survive restarts, which matches the in-memory store.
	if AppConfig.SecretKey == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate secret key: %w", err)
		}
		AppConfig.SecretKey = hex.EncodeToString(buf)
	}

	return nil
}
