package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                  = "8080"
	DefaultAccessTokenExpiryMin  = 30
	DefaultRefreshTokenExpiryMin = 60
	DefaultCookieMaxAgeHours     = 24
	DefaultBcryptCost            = 10
	DefaultLogLevel              = "info"
	DefaultSessionStore          = SessionStorePostgres
	DefaultKafkaTopic            = "auth-events"

	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

// Config is built once at startup and passed explicitly; it is never mutated afterwards.
type Config struct {
	Env                string
	Port               string
	DBURL              string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessExpiryMin    int
	RefreshExpiryMin   int
	CookieMaxAgeHours  int
	BcryptCost         int
	LogLevel           string
	SessionStore       string
	RedisURL           string
	KafkaBrokers       []string
	KafkaTopic         string
	RunMigrations      bool
}

// Load reads config/.env.dev or config/.env.prod (picked by ENV) and then the
// process environment. Variables set in the environment win over the file.
func Load() *Config {
	env := getEnv("ENV", "development")
	src := loadEnvFile(env)

	cfg := &Config{
		Env:                env,
		Port:               src.get("PORT", DefaultPort),
		DBURL:              src.mustGet("DB_URL"),
		AccessTokenSecret:  src.mustGet("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: src.mustGet("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:    src.getInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:   src.getInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),
		CookieMaxAgeHours:  src.getInt("COOKIE_MAX_AGE_HOURS", DefaultCookieMaxAgeHours),
		BcryptCost:         src.getInt("BCRYPT_COST", DefaultBcryptCost),
		LogLevel:           src.get("LOG_LEVEL", DefaultLogLevel),
		SessionStore:       strings.ToLower(src.get("SESSION_STORE", DefaultSessionStore)),
		RedisURL:           src.get("REDIS_URL", ""),
		KafkaBrokers:       splitList(src.get("KAFKA_BROKERS", "")),
		KafkaTopic:         src.get("KAFKA_TOPIC", DefaultKafkaTopic),
		RunMigrations:      src.getBool("RUN_MIGRATIONS", true),
	}

	if cfg.SessionStore != SessionStorePostgres && cfg.SessionStore != SessionStoreRedis {
		log.Fatalf("Invalid config: SESSION_STORE must be %q or %q, got %q",
			SessionStorePostgres, SessionStoreRedis, cfg.SessionStore)
	}
	if cfg.SessionStore == SessionStoreRedis && cfg.RedisURL == "" {
		log.Fatalf("Missing required config: REDIS_URL")
	}

	return cfg
}

// envSource holds the values read from the env file. Lookups check the
// process environment first.
type envSource map[string]string

func loadEnvFile(env string) envSource {
	name := ".env.dev"
	if env == "production" {
		name = ".env.prod"
	}

	path := filepath.Join("config", name)
	values, err := godotenv.Read(path)
	if err != nil {
		log.Printf("Notice: %s not loaded (%v), using process environment only", path, err)
		return envSource{}
	}
	return values
}

func (s envSource) get(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := s[key]; value != "" {
		return value
	}
	return defaultVal
}

func (s envSource) mustGet(key string) string {
	if value := s.get(key, ""); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func (s envSource) getInt(key string, defaultVal int) int {
	valStr := s.get(key, "")
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func (s envSource) getBool(key string, defaultVal bool) bool {
	valStr := s.get(key, "")
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnv(key string, defaultVal string) string {
	return envSource(nil).get(key, defaultVal)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
