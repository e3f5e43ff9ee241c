package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Port string `mapstructure:"port"`
}

type RateFeed struct {
	URL               string `mapstructure:"url"`
	TimeoutMs         int    `mapstructure:"timeout-ms"`
	RefreshIntervalMs int    `mapstructure:"refresh-interval-ms"`
}

type CardReader struct {
	URL             string `mapstructure:"url"`
	TimeoutMs       int    `mapstructure:"timeout-ms"`
	TerminalSlot    string `mapstructure:"terminal-slot"`
	TransactionType int    `mapstructure:"transaction-type"`
}

type Notification struct {
	AutoDismissMs int `mapstructure:"auto-dismiss-ms"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Server       Server       `mapstructure:"server"`
	RateFeed     RateFeed     `mapstructure:"rate-feed"`
	CardReader   CardReader   `mapstructure:"card-reader"`
	Notification Notification `mapstructure:"notification"`
	Metrics      Metrics      `mapstructure:"metrics"`
	Logs         Logs         `mapstructure:"logs"`
}

func LoadConfig(path string) (*Config, error) {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}
