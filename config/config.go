// Package config reads process settings from the environment and gameplay
// tuning from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvAddr      = "AIRPONG_ADDR"
	EnvLogLevel  = "AIRPONG_LOG_LEVEL"
	EnvTuning    = "AIRPONG_TUNING"
	EnvDebug     = "AIRPONG_DEBUG"
	EnvStatsAddr = "AIRPONG_STATS_ADDR"
	EnvSentryDSN = "SENTRY_DSN"
)

type Config struct {
	Addr       string
	LogLevel   logrus.Level
	TuningFile string
	Debug      bool
	StatsAddr  string // empty disables the stats viewer
	SentryDSN  string // empty disables crash reporting
}

// InitConfig loads .env files into the environment. A missing file is not
// an error; variables already set win.
func InitConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading environment variables: %w", err)
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}

func envOr(v, def string) string {
	if s, err := GetEnvVariable(v); err == nil {
		return s
	}
	return def
}

// Load builds a Config from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:       envOr(EnvAddr, ":8080"),
		TuningFile: envOr(EnvTuning, "tuning.toml"),
		StatsAddr:  envOr(EnvStatsAddr, ""),
		SentryDSN:  envOr(EnvSentryDSN, ""),
	}

	level, err := logrus.ParseLevel(envOr(EnvLogLevel, "info"))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	cfg.LogLevel = level

	if s := envOr(EnvDebug, ""); s != "" {
		cfg.Debug, err = strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDebug, err)
		}
	}
	return cfg, nil
}
