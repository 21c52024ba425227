package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath         string
	AppName              string
	AppVersion           string
	AppBuild             string
	MasterFileName       string
	UpdateInterval       time.Duration
	DiscardRadiusM       float64
	StopWindow           int
	StopMaxDistanceM     float64
	FilterRules          []string
	RouteStep            time.Duration
	WorkerPollIntervalMS int
	MetricsTextfile      string
	LogLevel             string
}

// MasterFileKey names the master file for this build, e.g. "MasterFile.dat.1.0.7".
func (c Config) MasterFileKey() string {
	return fmt.Sprintf("%s.%s.%s", c.MasterFileName, c.AppVersion, c.AppBuild)
}

func Load(path string) (Config, error) {
	cfg := Config{
		AppName:              "gdsa",
		UpdateInterval:       5 * time.Second,
		DiscardRadiusM:       50,
		StopWindow:           5,
		StopMaxDistanceM:     10,
		RouteStep:            6 * time.Second,
		WorkerPollIntervalMS: 2000,
	}

	if path != "" {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg.DatabasePath = getenv("DATABASE_PATH", "gdsa.db")
	cfg.AppName = getenv("APP_NAME", cfg.AppName)
	cfg.AppVersion = getenv("APP_VERSION", "1.0")
	cfg.AppBuild = getenv("APP_BUILD", "1")
	cfg.MasterFileName = getenv("MASTER_FILE_NAME", "MasterFile.dat")
	cfg.MetricsTextfile = os.Getenv("METRICS_TEXTFILE")
	cfg.LogLevel = getenv("LOG_LEVEL", "info")
	if v := os.Getenv("FILTER_RULES"); v != "" {
		cfg.FilterRules = splitAndTrim(v)
	}

	if v := os.Getenv("LOCATION_UPDATE_INTERVAL_SECONDS"); v != "" {
		if err := parseSeconds(&cfg.UpdateInterval, v); err != nil {
			return Config{}, fmt.Errorf("LOCATION_UPDATE_INTERVAL_SECONDS: %w", err)
		}
	}
	if v := os.Getenv("ROUTE_STEP_SECONDS"); v != "" {
		if err := parseSeconds(&cfg.RouteStep, v); err != nil {
			return Config{}, fmt.Errorf("ROUTE_STEP_SECONDS: %w", err)
		}
	}
	if v := os.Getenv("POINT_DISCARD_RADIUS_M"); v != "" {
		if err := parseFloat(&cfg.DiscardRadiusM, v); err != nil {
			return Config{}, fmt.Errorf("POINT_DISCARD_RADIUS_M: %w", err)
		}
		if cfg.DiscardRadiusM <= 0 {
			return Config{}, fmt.Errorf("POINT_DISCARD_RADIUS_M: must be positive, got %v", cfg.DiscardRadiusM)
		}
	}
	if v := os.Getenv("STOP_DETECTION_WINDOW"); v != "" {
		if err := parseInt(&cfg.StopWindow, v); err != nil {
			return Config{}, fmt.Errorf("STOP_DETECTION_WINDOW: %w", err)
		}
		if cfg.StopWindow < 1 {
			return Config{}, fmt.Errorf("STOP_DETECTION_WINDOW: must be positive, got %d", cfg.StopWindow)
		}
	}
	if v := os.Getenv("STOP_DETECTION_MAX_DISTANCE_M"); v != "" {
		if err := parseFloat(&cfg.StopMaxDistanceM, v); err != nil {
			return Config{}, fmt.Errorf("STOP_DETECTION_MAX_DISTANCE_M: %w", err)
		}
		if cfg.StopMaxDistanceM <= 0 {
			return Config{}, fmt.Errorf("STOP_DETECTION_MAX_DISTANCE_M: must be positive, got %v", cfg.StopMaxDistanceM)
		}
	}
	if v := os.Getenv("WORKER_POLL_INTERVAL_MS"); v != "" {
		if err := parseInt(&cfg.WorkerPollIntervalMS, v); err != nil {
			return Config{}, fmt.Errorf("WORKER_POLL_INTERVAL_MS: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInt(target *int, value string) error {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}

func parseFloat(target *float64, value string) error {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}

func parseSeconds(target *time.Duration, value string) error {
	var seconds float64
	if err := parseFloat(&seconds, value); err != nil {
		return err
	}
	if seconds < 0 {
		return fmt.Errorf("negative duration %q", value)
	}
	*target = time.Duration(seconds * float64(time.Second))
	return nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
