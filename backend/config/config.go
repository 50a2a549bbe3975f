package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string
	UploadDir  string
	// RecordUnchangedProgress управляет идемпотентностью ручных обновлений:
	// true — каждая отправка пишется в историю, даже без изменения ставки.
	RecordUnchangedProgress bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "5432"),
		DBUser:                  getEnv("DB_USER", "postgres"),
		DBPassword:              getEnv("DB_PASSWORD", "postgres"),
		DBName:                  getEnv("DB_NAME", "lms"),
		JWTSecret:               getEnv("JWT_SECRET", "secret"),
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		UploadDir:               getEnv("UPLOAD_DIR", "./uploads"),
		RecordUnchangedProgress: getEnv("PROGRESS_RECORD_UNCHANGED", "true") == "true",
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
