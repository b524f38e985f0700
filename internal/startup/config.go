package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"clipfilter/internal/engine"
	"clipfilter/internal/logging"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	WorkDir         string
	FFmpegPath      string
	FFprobePath     string
	MaxUploadMB     int64
	EngineTimeout   time.Duration
	Posters         bool
	LogStaticFiles  bool
	LogHealthChecks bool

	// ConfigFile is the TOML file the values were layered over, if any.
	ConfigFile string
}

// fileConfig mirrors the optional TOML configuration file.
type fileConfig struct {
	Port           string `toml:"port"`
	MetricsPort    string `toml:"metrics_port"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
	MaxUploadMB    int64  `toml:"max_upload_mb"`

	Engine struct {
		WorkDir        string `toml:"work_dir"`
		FFmpegPath     string `toml:"ffmpeg_path"`
		FFprobePath    string `toml:"ffprobe_path"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		Posters        bool   `toml:"posters"`
	} `toml:"engine"`

	Logging struct {
		StaticFiles  bool `toml:"static_files"`
		HealthChecks bool `toml:"health_checks"`
	} `toml:"logging"`
}

func defaultFileConfig() fileConfig {
	var fc fileConfig
	fc.Port = "8080"
	fc.MetricsPort = "9090"
	fc.MetricsEnabled = true
	fc.MaxUploadMB = 200
	fc.Engine.WorkDir = filepath.Join(os.TempDir(), "clipfilter")
	fc.Engine.TimeoutSeconds = 120
	fc.Engine.Posters = true
	fc.Logging.HealthChecks = true
	return fc
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Resources returns the engine bootstrap resources for this configuration.
func (c *Config) Resources() engine.Resources {
	return engine.DefaultResources(c.WorkDir, c.FFmpegPath, c.FFprobePath)
}

// LoadConfig prints the startup banner, then loads and validates the
// configuration.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	section("CONFIGURATION")

	config, err := ReadConfig()
	if err != nil {
		return nil, err
	}

	if config.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:         %s", config.ConfigFile)
	}
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  WORK_DIR:            %s", config.WorkDir)
	logging.Info("  FFMPEG_PATH:         %s", valueOrAuto(config.FFmpegPath))
	logging.Info("  FFPROBE_PATH:        %s", valueOrAuto(config.FFprobePath))
	logging.Info("  MAX_UPLOAD_MB:       %d", config.MaxUploadMB)
	logging.Info("  ENGINE_TIMEOUT:      %v", config.EngineTimeout)
	logging.Info("  POSTERS:             %v", config.Posters)
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	section("DIRECTORY SETUP")

	if err := ensureDirectory(config.WorkDir, "work"); err != nil {
		return nil, fmt.Errorf("work directory error: %w", err)
	}
	if err := testWriteAccess(config.WorkDir); err != nil {
		return nil, fmt.Errorf("work directory is not writable (required for the video engine): %w", err)
	}
	logging.Info("  [OK] Work directory is writable: %s", config.WorkDir)

	return config, nil
}

// ReadConfig layers environment variables over the optional TOML file named
// by CONFIG_FILE, over built-in defaults. It performs no I/O besides reading
// that file.
func ReadConfig() (*Config, error) {
	return ReadConfigFrom(os.Getenv("CONFIG_FILE"))
}

// ReadConfigFrom is ReadConfig with an explicit file path. An empty path
// means no file.
func ReadConfigFrom(path string) (*Config, error) {
	fc := defaultFileConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logging.Warn("  Config file %s not found, using environment and defaults", path)
			path = ""
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	config := &Config{
		Port:            getEnv("PORT", fc.Port),
		MetricsPort:     getEnv("METRICS_PORT", fc.MetricsPort),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", fc.MetricsEnabled),
		WorkDir:         getEnv("WORK_DIR", fc.Engine.WorkDir),
		FFmpegPath:      getEnv("FFMPEG_PATH", fc.Engine.FFmpegPath),
		FFprobePath:     getEnv("FFPROBE_PATH", fc.Engine.FFprobePath),
		MaxUploadMB:     getEnvInt("MAX_UPLOAD_MB", fc.MaxUploadMB),
		EngineTimeout:   getEnvDuration("ENGINE_TIMEOUT", time.Duration(fc.Engine.TimeoutSeconds)*time.Second),
		Posters:         getEnvBool("POSTERS", fc.Engine.Posters),
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", fc.Logging.StaticFiles),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", fc.Logging.HealthChecks),
		ConfigFile:      path,
	}

	if config.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", config.MaxUploadMB)
	}
	if config.EngineTimeout < 0 {
		return nil, fmt.Errorf("ENGINE_TIMEOUT must not be negative, got %v", config.EngineTimeout)
	}

	workDir, err := filepath.Abs(config.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory path: %w", err)
	}
	config.WorkDir = workDir

	return config, nil
}

func valueOrAuto(v string) string {
	if v == "" {
		return "(auto)"
	}
	return v
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
