package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Configuration
	HTTPAddr string

	// ML Model Configuration
	ModelPath    string
	FeaturesPath string

	// Static accuracy figure from offline evaluation, reported with every
	// classification. Never derived from the artifact or live traffic.
	ModelAccuracy float64

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),

		ModelPath:    getEnv("MODEL_PATH", "models/atmostrack_global_model.json"),
		FeaturesPath: getEnv("FEATURES_PATH", "models/feature_names.json"),

		ModelAccuracy: getEnvFloat("MODEL_ACCURACY", 95.2),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}
