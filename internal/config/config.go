package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port               string
	AllowedOrigins     []string
	MatchmakingTimeout time.Duration
	BotMoveDelay       time.Duration

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisAddr     string
	RedisPassword string

	KafkaBroker string
	KafkaTopic  string

	CleanupInterval  time.Duration
	FinishedGameTTL  time.Duration
	AbandonedGameTTL time.Duration
}

func LoadConfig() *Config {
	allowedOrigins := []string{"http://localhost:5173"}
	if extras := GetEnv("ALLOWED_ORIGINS", ""); extras != "" {
		for _, origin := range strings.Split(extras, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	return &Config{
		Port:               GetEnv("PORT", "8080"),
		AllowedOrigins:     allowedOrigins,
		MatchmakingTimeout: time.Duration(GetEnvAsInt("MATCHMAKING_TIMEOUT_SECONDS", 10)) * time.Second,
		BotMoveDelay:       time.Duration(GetEnvAsInt("BOT_MOVE_DELAY_MS", 500)) * time.Millisecond,

		DatabaseURL:          GetEnv("DATABASE_URL", ""),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisAddr:     GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		KafkaBroker: GetEnv("KAFKA_BROKER", ""),
		KafkaTopic:  GetEnv("KAFKA_TOPIC", "game-events"),

		CleanupInterval:  time.Duration(GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute,
		FinishedGameTTL:  time.Duration(GetEnvAsInt("FINISHED_GAME_TTL_MINUTES", 60)) * time.Minute,
		AbandonedGameTTL: time.Duration(GetEnvAsInt("ABANDONED_GAME_TTL_HOURS", 24)) * time.Hour,
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
