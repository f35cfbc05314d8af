package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dias221467/Questline/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds everything the server and questctl read from the environment.
type Config struct {
	Port        string
	StoreDriver string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	TokenExpiry time.Duration
	RedisAddr   string
	UploadDir   string

	AllowedOrigins []string

	StrictAggregate       bool
	Rollback              bool
	EnforceDailyLimit     bool
	ReflectionMinLength   int
	GateResponseMinLength int
	TextInputMaxLength    int
	MaxPhotoBytes         int64

	LogLevel string
	LogFile  string

	ReminderCron string
	SweepCron    string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	defaults := services.DefaultOptions()
	return &Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "questline"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 24*time.Hour),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),

		AllowedOrigins: getList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		StrictAggregate:       getBool("STRICT_AGGREGATE", defaults.StrictAggregate),
		Rollback:              getBool("ROLLBACK", defaults.Rollback),
		EnforceDailyLimit:     getBool("ENFORCE_DAILY_LIMIT", defaults.EnforceDailyLimit),
		ReflectionMinLength:   getInt("REFLECTION_MIN_LENGTH", defaults.ReflectionMinLength),
		GateResponseMinLength: getInt("GATE_RESPONSE_MIN_LENGTH", defaults.GateResponseMinLength),
		TextInputMaxLength:    getInt("TEXT_INPUT_MAX_LENGTH", defaults.TextInputMaxLength),
		MaxPhotoBytes:         int64(getInt("MAX_PHOTO_BYTES", int(services.DefaultMaxPhotoBytes))),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		ReminderCron: getEnv("REMINDER_CRON", "0 * * * *"),
		SweepCron:    getEnv("SWEEP_CRON", "30 3 * * *"),
	}
}

// JourneyOptions turns the journey settings into service options.
func (c *Config) JourneyOptions() services.Options {
	opts := services.DefaultOptions()
	opts.StrictAggregate = c.StrictAggregate
	opts.Rollback = c.Rollback
	opts.EnforceDailyLimit = c.EnforceDailyLimit
	opts.ReflectionMinLength = c.ReflectionMinLength
	opts.GateResponseMinLength = c.GateResponseMinLength
	opts.TextInputMaxLength = c.TextInputMaxLength
	return opts
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid boolean, using default")
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid integer, using default")
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("36h") or a bare number of hours.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if h, err := strconv.Atoi(raw); err == nil {
		return time.Duration(h) * time.Hour
	}
	logrus.WithField("key", key).Warn("Invalid duration, using default")
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
