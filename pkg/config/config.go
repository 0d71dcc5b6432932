package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                     string
	Environment              string
	DatabasePath             string
	JWTSecret                string
	CORSOrigins              string
	MaxUploadSize            int64
	FileStoragePath          string
	PublicBaseURL            string
	RequireEmailConfirmation bool
	RedisAddr                string
	VapidPublicKey           string
	VapidPrivateKey          string
}

func Load() *Config {
	return &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		DatabasePath:             getEnv("DATABASE_PATH", "./data/famchat.db"),
		JWTSecret:                getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		CORSOrigins:              getEnv("CORS_ORIGINS", "*"),
		MaxUploadSize:            parseInt64(getEnv("MAX_UPLOAD_SIZE", "10485760")), // 10MB default
		FileStoragePath:          getEnv("FILE_STORAGE_PATH", "./data/media"),
		PublicBaseURL:            getEnv("PUBLIC_BASE_URL", ""),
		RequireEmailConfirmation: parseBool(getEnv("REQUIRE_EMAIL_CONFIRMATION", "false")),
		RedisAddr:                getEnv("REDIS_ADDR", ""),
		VapidPublicKey:           getEnv("VAPID_PUBLIC_KEY", ""),
		VapidPrivateKey:          getEnv("VAPID_PRIVATE_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseInt64(s string) int64 {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 10485760 // 10MB default
	}
	return val
}

func parseBool(s string) bool {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return val
}
