package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with
// defaults suitable for a local development setup.
type Config struct {
	// External tools
	FFmpegPath string // ffmpeg binary, required
	FpcalcPath string // Chromaprint fpcalc binary, required
	AubioPath  string // aubio binary, optional; empty or missing disables tempo measurement

	// Audio output
	AudioBitrate string // e.g., "128k"
	SampleRate   int    // e.g., 44100
	CoverSize    int    // square cover edge in pixels

	// Local layout
	TempDir      string // scratch space for conversions and resized covers
	PlaylistsDir string // local playlist documents
	StylesDir    string // local style documents

	// MinIO远程存储配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Remote object prefixes per category
	AudioPrefix     string
	PlaylistsPrefix string
	StylesPrefix    string

	// BaseURL is the public URL the published objects are served under.
	BaseURL string

	// Redis配置（指纹缓存）
	RedisHost                string
	RedisPort                string
	RedisPassword            string
	RedisDB                  int
	FingerprintCacheTTLHours int

	// Optional MySQL run-history database; empty host disables it.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	publicBase := "public"

	return &Config{
		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
		FpcalcPath: getEnv("FPCALC_PATH", "fpcalc"),
		AubioPath:  getEnv("AUBIO_PATH", "aubio"),

		AudioBitrate: getEnv("AUDIO_BITRATE", "128k"),
		SampleRate:   getEnvInt("SAMPLE_RATE", 44100),
		CoverSize:    getEnvInt("COVER_SIZE", 512),

		TempDir:      getEnv("TEMP_DIR", filepath.Join(os.TempDir(), "tempofm")),
		PlaylistsDir: getEnv("PLAYLISTS_DIR", filepath.Join(publicBase, "playlists")),
		StylesDir:    getEnv("STYLES_DIR", filepath.Join(publicBase, "styles")),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"), // no hardcoded default for secrets
		MinioBucket:    getEnv("MINIO_BUCKET", "tempofm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		AudioPrefix:     getEnv("AUDIO_PREFIX", "public/audio"),
		PlaylistsPrefix: getEnv("PLAYLISTS_PREFIX", "public/playlists"),
		StylesPrefix:    getEnv("STYLES_PREFIX", "public/styles"),

		BaseURL: getEnv("BASE_URL", "http://127.0.0.1:9000/tempofm"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库

		FingerprintCacheTTLHours: getEnvInt("FINGERPRINT_CACHE_TTL_HOURS", 720),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "tempofm"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
