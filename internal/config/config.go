/**
 * @description
 * This file handles configuration management for the settlement service.
 * It loads settings from environment variables, providing defaults for the
 * server port and the cron trigger cadence.
 */
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the settlement service.
type Config struct {
	Port              string `mapstructure:"PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	InternalAPIKey    string `mapstructure:"INTERNAL_API_KEY"`
	PayoutJobSchedule string `mapstructure:"PAYOUT_JOB_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("PORT", "8086")
	viper.SetDefault("PAYOUT_JOB_SCHEDULE", "0 3 * * *") // At 03:00 every day.
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("PAYOUT_JOB_SCHEDULE")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &config, nil
}
