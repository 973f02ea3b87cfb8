package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	API        APIConfig        `mapstructure:"api" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Submission SubmissionConfig `mapstructure:"submission"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

type StorageConfig struct {
	// Directory holds the sqlite database with the mistake sets and the
	// offline queue.
	Directory string `mapstructure:"directory" validate:"required"`
}

type SubmissionConfig struct {
	// RetryUnitMS is the linear backoff unit between delivery retries.
	RetryUnitMS int `mapstructure:"retry_unit_ms" validate:"min=1"`
	// ProbeIntervalSeconds is the connectivity poll interval.
	ProbeIntervalSeconds int `mapstructure:"probe_interval_seconds" validate:"min=1"`
}

type DashboardConfig struct {
	PageSize   int `mapstructure:"page_size" validate:"min=1"`
	DebounceMS int `mapstructure:"debounce_ms" validate:"min=0"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hifztrack")
	}

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("storage.directory", defaultStorageDirectory())
	v.SetDefault("submission.retry_unit_ms", 1000)
	v.SetDefault("submission.probe_interval_seconds", 30)
	v.SetDefault("dashboard.page_size", 25)
	v.SetDefault("dashboard.debounce_ms", 500)

	// The backend URL can come from the environment without a config file.
	if err := v.BindEnv("api.base_url", "HIFZTRACK_API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind HIFZTRACK_API_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator > %w", err)
	}

	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if !asValidationErrors(err, &errs) {
			return fmt.Errorf("validate.Struct > %w", err)
		}
		messages := make([]string, 0, len(errs))
		for _, fieldErr := range errs {
			messages = append(messages, fieldErr.Translate(trans))
		}
		return fmt.Errorf("invalid configuration: %v", messages)
	}
	return nil
}

func defaultStorageDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hifztrack"
	}
	return filepath.Join(home, ".hifztrack")
}
