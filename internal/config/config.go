package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// ShiftsSource and ServicesSource are either HTTP(S) URLs of a
	// spreadsheet CSV export or local file paths.
	ShiftsSource   string
	ServicesSource string

	DataPath        string
	LogDir          string
	CacheDir        string
	CategoryMapPath string

	// DayFirst selects the day-first convention for ambiguous slash dates
	// (14/03/2024 style). The roster exports use it.
	DayFirst bool

	FetchTimeout time.Duration
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "30"))

	cfg := &AppConfig{
		ShiftsSource:    getEnv("SHIFTS_SOURCE", ""),
		ServicesSource:  getEnv("SERVICES_SOURCE", ""),
		DataPath:        dataPath,
		LogDir:          logDir,
		CacheDir:        cacheDir,
		CategoryMapPath: getEnv("CATEGORY_MAP", ""),
		DayFirst:        getEnvBool("DAY_FIRST_DATES", true),
		FetchTimeout:    time.Duration(timeoutSecs) * time.Second,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
