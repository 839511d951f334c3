// Package config provides configuration management for the collector.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ad-tracker/youtube-comment-export/internal/validation"
)

const (
	// placeholderAPIKey is the value shipped in the sample .env file.
	placeholderAPIKey = "your_api_key_here"

	// DefaultChannelID is collected when neither a channel id nor a handle is configured.
	DefaultChannelID = "UCUpJs89fSBXNolQGOYKn0YQ"
)

// ErrMissingAPIKey is returned by Validate when no usable API key is configured.
var ErrMissingAPIKey = errors.New("YouTube API key is not configured (set YOUTUBE_API_KEY)")

// Config holds all configuration for the collector.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	YouTube YouTubeConfig
	Report  ReportConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

// YouTubeConfig contains the API credential and collection limits.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type YouTubeConfig struct {
	APIKey            string
	ChannelID         string
	ChannelHandle     string
	MaxVideos         int
	CandidateVideos   int
	MaxComments       int
	RequestsPerSecond float64
	DailyQuota        int
	QuotaThreshold    int
}

// ReportConfig contains CSV output settings.
type ReportConfig struct {
	OutputPath   string
	HeaderLocale string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	File   string
	Format string
}

// MetricsConfig contains Pushgateway settings. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string
	JobName        string
}

// Load loads configuration from an optional .env file, config file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("youtube.apikey", "APP_YOUTUBE_APIKEY", "YOUTUBE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.YouTube.ChannelID == "" && cfg.YouTube.ChannelHandle == "" {
		cfg.YouTube.ChannelID = DefaultChannelID
	}

	return &cfg, nil
}

// Validate reports configuration that would make a run impossible.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.YouTube.APIKey)
	if key == "" || key == placeholderAPIKey {
		return ErrMissingAPIKey
	}
	if c.YouTube.ChannelID == "" && c.YouTube.ChannelHandle == "" {
		return errors.New("either youtube.channelid or youtube.channelhandle is required")
	}
	if c.YouTube.ChannelID != "" && !validation.IsValidChannelID(c.YouTube.ChannelID) {
		return fmt.Errorf("youtube.channelid has an invalid format: %q", c.YouTube.ChannelID)
	}
	if c.YouTube.ChannelID == "" {
		if _, err := validation.NormalizeHandle(c.YouTube.ChannelHandle); err != nil {
			return fmt.Errorf("youtube.channelhandle: %w", err)
		}
	}
	if c.YouTube.MaxVideos <= 0 {
		return fmt.Errorf("youtube.maxvideos must be positive, got %d", c.YouTube.MaxVideos)
	}
	if c.YouTube.CandidateVideos < c.YouTube.MaxVideos {
		return fmt.Errorf("youtube.candidatevideos (%d) must be at least youtube.maxvideos (%d)",
			c.YouTube.CandidateVideos, c.YouTube.MaxVideos)
	}
	if c.YouTube.MaxComments <= 0 || c.YouTube.MaxComments > 100 {
		return fmt.Errorf("youtube.maxcomments must be between 1 and 100, got %d", c.YouTube.MaxComments)
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return fmt.Errorf("youtube.requestspersecond must not be negative, got %v", c.YouTube.RequestsPerSecond)
	}
	if c.Report.OutputPath == "" {
		return errors.New("report.outputpath is required")
	}
	switch c.Report.HeaderLocale {
	case "en", "ko":
	default:
		return fmt.Errorf("report.headerlocale must be en or ko, got %q", c.Report.HeaderLocale)
	}

	return nil
}

func setDefaults() {
	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.channelid", "")
	viper.SetDefault("youtube.channelhandle", "")
	viper.SetDefault("youtube.maxvideos", 100)
	viper.SetDefault("youtube.candidatevideos", 200)
	viper.SetDefault("youtube.maxcomments", 10)
	viper.SetDefault("youtube.requestspersecond", 5.0)
	viper.SetDefault("youtube.dailyquota", 10000)
	viper.SetDefault("youtube.quotathreshold", 90)

	// Report
	viper.SetDefault("report.outputpath", "nomadcoders_data.csv")
	viper.SetDefault("report.headerlocale", "en")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
	viper.SetDefault("logging.format", "console")

	// Metrics
	viper.SetDefault("metrics.pushgatewayurl", "")
	viper.SetDefault("metrics.jobname", "youtube_comment_export")
}
