package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	RulesPath string

	OracleBaseURL string
	OracleAPIKey  string
	VisionModel   string
	PolicyModel   string

	FramesPerSecond float64
	WindowSize      int
	WindowStep      int
	QueueCapacity   int
	IntakeIdleWait  time.Duration
	SkipFailures    bool

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StaticDir string
	IndexHTML string
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		RulesPath: getEnv("RULES_PATH", "data/automation_rules.json"),

		OracleBaseURL: getEnv("ORACLE_BASE_URL", "http://localhost:8080/v1"),
		OracleAPIKey:  getEnv("ORACLE_API_KEY", "no-key-needed"),
		VisionModel:   getEnv("VISION_MODEL", "lfm2-vl-450m-f16"),
		PolicyModel:   getEnv("POLICY_MODEL", ""),

		FramesPerSecond: getEnvFloat("FRAMES_PER_SECOND", 2.0),
		WindowSize:      getEnvInt("WINDOW_SIZE", 4),
		WindowStep:      getEnvInt("WINDOW_STEP", 4),
		QueueCapacity:   getEnvInt("QUEUE_CAPACITY", 256),
		IntakeIdleWait:  getEnvDuration("INTAKE_IDLE_TIMEOUT", 10*time.Second),
		SkipFailures:    getEnv("ORACLE_SKIP_FAILURES", "false") == "true",

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		StaticDir: getEnv("STATIC_DIR", "./static"),
		IndexHTML: getEnv("INDEX_HTML", "./static/index.html"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
