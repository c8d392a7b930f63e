package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	Render     RenderConfig
	R2         R2Config
	Pixelforge PixelforgeConfig
	Voxa       VoxaConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	TimelinePerMin int
	ExportPerHour  int
	MediaPerHour   int
}

// RenderConfig controls the ffmpeg pipeline used by the export worker.
type RenderConfig struct {
	FFmpegPath  string
	FFprobePath string
	WorkDir     string
	FrameRate   int
	PaddingMs   int64 // tail padding appended after the last keyframe
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type PixelforgeConfig struct {
	APIKey  string
	BaseURL string
}

type VoxaConfig struct {
	APIKey  string
	BaseURL string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("PIXELFORGE_API_KEY")
	readSecret("VOXA_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("render.ffmpeg_path", "FFMPEG_PATH")
	_ = viper.BindEnv("render.ffprobe_path", "FFPROBE_PATH")
	_ = viper.BindEnv("render.work_dir", "RENDER_WORK_DIR")
	_ = viper.BindEnv("render.frame_rate", "RENDER_FRAME_RATE")
	_ = viper.BindEnv("render.padding_ms", "RENDER_PADDING_MS")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("pixelforge.api_key", "PIXELFORGE_API_KEY")
	_ = viper.BindEnv("pixelforge.base_url", "PIXELFORGE_BASE_URL")
	_ = viper.BindEnv("voxa.api_key", "VOXA_API_KEY")
	_ = viper.BindEnv("voxa.base_url", "VOXA_BASE_URL")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.timeline_per_min", 120)
	viper.SetDefault("ratelimit.export_per_hour", 20)
	viper.SetDefault("ratelimit.media_per_hour", 50)

	// Render defaults
	viper.SetDefault("render.ffmpeg_path", "ffmpeg")
	viper.SetDefault("render.ffprobe_path", "ffprobe")
	viper.SetDefault("render.work_dir", os.TempDir())
	viper.SetDefault("render.frame_rate", 30)
	viper.SetDefault("render.padding_ms", 2000)

	// Provider defaults
	viper.SetDefault("pixelforge.base_url", "https://api.pixelforge.dev")
	viper.SetDefault("voxa.base_url", "https://api.voxa.audio")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			TimelinePerMin: viper.GetInt("ratelimit.timeline_per_min"),
			ExportPerHour:  viper.GetInt("ratelimit.export_per_hour"),
			MediaPerHour:   viper.GetInt("ratelimit.media_per_hour"),
		},
		Render: RenderConfig{
			FFmpegPath:  viper.GetString("render.ffmpeg_path"),
			FFprobePath: viper.GetString("render.ffprobe_path"),
			WorkDir:     viper.GetString("render.work_dir"),
			FrameRate:   viper.GetInt("render.frame_rate"),
			PaddingMs:   viper.GetInt64("render.padding_ms"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		Pixelforge: PixelforgeConfig{
			APIKey:  viper.GetString("pixelforge.api_key"),
			BaseURL: viper.GetString("pixelforge.base_url"),
		},
		Voxa: VoxaConfig{
			APIKey:  viper.GetString("voxa.api_key"),
			BaseURL: viper.GetString("voxa.base_url"),
		},
	}

	return cfg, nil
}
