package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

type Config struct {
	Env                  string
	Port                 string
	StoreBackend         string
	StoreFallback        bool
	DBDSN                string
	MongoURI             string
	MongoDB              string
	RedisAddr            string
	DashboardCacheTTL    time.Duration
	KafkaBrokers         []string
	KafkaOrderTopic      string
	KafkaStockTopic      string
	SeedDemo             bool
	LogFile              string
	BulkRequiredOnCreate bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                  getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8081"),
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		StoreFallback:        getEnvAsBool("STORE_FALLBACK", true),
		DBDSN:                getEnv("DB_DSN", "stoik.db"),
		MongoURI:             getEnv("MONGO_URI", ""),
		MongoDB:              getEnv("MONGO_DB", "stoik"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		DashboardCacheTTL:    getEnvAsDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		KafkaBrokers:         splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaOrderTopic:      getEnv("KAFKA_ORDER_TOPIC", "stoik.orders"),
		KafkaStockTopic:      getEnv("KAFKA_STOCK_TOPIC", "stoik.stock"),
		SeedDemo:             getEnvAsBool("SEED_DEMO", false),
		LogFile:              getEnv("LOG_FILE", ""),
		BulkRequiredOnCreate: getEnvAsBool("BULK_REQUIRED_ON_CREATE", true),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	log.Printf("[config] APP_ENV=%s PORT=%s STORE_BACKEND=%s DB_DSN=%s REDIS=%t KAFKA=%t",
		cfg.Env, cfg.Port, cfg.StoreBackend, cfg.DBDSN, cfg.RedisAddr != "", len(cfg.KafkaBrokers) > 0)
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("STORE_BACKEND=mongo requires MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT is invalid")
	}
	return nil
}

func (c Config) Address() string { return ":" + c.Port }

func (c Config) Production() bool { return c.Env == "production" || c.Env == "prod" }

/* ================= helpers ================= */

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
