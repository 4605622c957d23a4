// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads trial-engine settings from trial-engine.yaml and
// TRIAL_ENGINE_* environment variables, and builds the global logger.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/trial-engine/internal/ingest"
	"github.com/pdiddy/trial-engine/internal/secrets"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// EnvPrefix prefixes environment overrides, e.g. TRIAL_ENGINE_LOG_LEVEL.
const EnvPrefix = "TRIAL_ENGINE"

// Load reads configuration from file (optional) and environment. An empty
// file searches ./trial-engine.yaml and ~/.config/trial-engine/. The
// returned path is the file used, or "" when none was found.
func Load(file string) (*types.PipelineConfig, string, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("trial-engine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "trial-engine"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, "", eris.Wrap(err, "config: read file")
		}
	}

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources.ctg_path", "data/ctg-studies.csv")
	v.SetDefault("sources.eudract_path", "data/eudract.txt")
	v.SetDefault("sources.eudract_link_base", ingest.DefaultLinkBase)
	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.user_agent", "trial-engine/0.1")
	v.SetDefault("http.max_retries", 5)
	v.SetDefault("http.requests_per_second", 2.0)
	v.SetDefault("store.dir", "data")
	v.SetDefault("classify.patterns_file", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("secrets_dir", secrets.DefaultDir)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg types.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
