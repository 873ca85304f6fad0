package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// AppDirName is the directory created under the user config dir.
const AppDirName = "DressCode"

type Config struct {
	// Server-side settings
	DatabaseDSN     string `env:"DATABASE_URI"`
	AuthSecret      string `env:"AUTH_SECRET"`
	UploadDir       string `env:"UPLOAD_DIR"`
	UploadMaxSizeMB int    `env:"UPLOAD_MAX_MB"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	TagProvider     string `env:"TAG_PROVIDER"`   // heuristic | gemini
	TryOnProvider   string `env:"TRYON_PROVIDER"` // mock | gemini
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL"`
	S3Bucket        string `env:"S3_BUCKET"`
	AWSRegion       string `env:"AWS_REGION"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	LogLevel    string `env:"LOG_LEVEL"`

	// Client-side settings
	ServerURL       string        `env:"-"`
	ClientDBPath    string        `env:"CLIENT_DB_PATH"`
	DataDir         string        `env:"DATA_DIR"`
	WeatherProvider string        `env:"WEATHER_PROVIDER"` // amap | qweather | openmeteo
	AMapKey         string        `env:"AMAP_KEY"`
	AMapHost        string        `env:"AMAP_HOST"`
	QWeatherKey     string        `env:"QWEATHER_KEY"`
	QWeatherHost    string        `env:"QWEATHER_HOST"`
	QWeatherGeoHost string        `env:"QWEATHER_GEO_HOST"`
	OpenMeteoHost   string        `env:"OPEN_METEO_HOST"`
	OpenMeteoAQHost string        `env:"OPEN_METEO_AQ_HOST"`
	SyncUpload      bool          `env:"SYNC_UPLOAD"`
	Offline         bool          `env:"OFFLINE"` // never call the DressCode server
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	Version         bool          `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN (sqlite file or postgres URL)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "secret used to sign JWT")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "directory for uploaded images (server)")
	flag.StringVar(&cfg.TagProvider, "tag-provider", cfg.TagProvider, "tagging/recommendation provider: heuristic or gemini")
	flag.StringVar(&cfg.TryOnProvider, "tryon-provider", cfg.TryOnProvider, "try-on provider: mock or gemini")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "store uploads in this S3 bucket instead of upload-dir")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the DressCode server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "use https scheme for BaseURL")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "base directory for per-user client databases")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for client images and try-on results")
	flag.StringVar(&cfg.WeatherProvider, "weather", cfg.WeatherProvider, "weather provider: amap, qweather or openmeteo")
	flag.BoolVar(&cfg.SyncUpload, "sync-upload", cfg.SyncUpload, "upload closet items to the server instead of tagging only")
	flag.BoolVar(&cfg.Offline, "offline", cfg.Offline, "work without the DressCode server")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "dresscode.db"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 15
	}
	if cfg.TagProvider == "" {
		cfg.TagProvider = "heuristic"
	}
	if cfg.TryOnProvider == "" {
		cfg.TryOnProvider = "mock"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// BaseURL must be "address:port" (no scheme, no path), otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = cfg.ServerURL
	}

	if cfg.WeatherProvider == "" {
		cfg.WeatherProvider = "amap"
	}
	if cfg.AMapHost == "" {
		cfg.AMapHost = "https://restapi.amap.com"
	}
	if cfg.QWeatherHost == "" {
		cfg.QWeatherHost = "https://devapi.qweather.com"
	}
	if cfg.QWeatherGeoHost == "" {
		cfg.QWeatherGeoHost = "https://geoapi.qweather.com"
	}
	if cfg.OpenMeteoHost == "" {
		cfg.OpenMeteoHost = "https://api.open-meteo.com"
	}
	if cfg.OpenMeteoAQHost == "" {
		cfg.OpenMeteoAQHost = "https://air-quality-api.open-meteo.com"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultAppDir()
	}
}

// DefaultAppDir returns <user config dir>/DressCode, falling back to the home directory.
func DefaultAppDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+AppDirName)
}
