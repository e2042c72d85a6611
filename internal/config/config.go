package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

func init() {
	ServiceConfig = Load()
}

var ServiceConfig *Config

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	RabbitMQ RabbitMQConfig
	Engine   EngineConfig
	Batch    BatchConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TriggerToken string
	CORSOrigins  []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

// EngineConfig holds the mastery scoring and scheduling knobs. The
// defaults match mastery.DefaultEngineConfig and the interval ladder in
// the scheduling package; deployments can retune without code changes.
type EngineConfig struct {
	AttemptWindowDays int
	AttemptFetchLimit int
	AccuracyWeight    float64
	RecencyWeight     float64
	RecencyHalfLife   time.Duration
	ResolverHorizon   int
}

type BatchConfig struct {
	DefaultBatchSize int
	Concurrency      int
	UserTimeout      time.Duration
	CronSpec         string
	CronEnabled      bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "6680"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			TriggerToken: getEnv("TRIGGER_API_TOKEN", ""),
			CORSOrigins:  []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MASTERY_SERVICE_MONGO_DB", "mastery_service"),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "mastery.events"),
		},
		Engine: EngineConfig{
			AttemptWindowDays: getEnvAsInt("ATTEMPT_WINDOW_DAYS", 30),
			AttemptFetchLimit: getEnvAsInt("ATTEMPT_FETCH_LIMIT", 200),
			AccuracyWeight:    getEnvAsFloat("MASTERY_ACCURACY_WEIGHT", 0.7),
			RecencyWeight:     getEnvAsFloat("MASTERY_RECENCY_WEIGHT", 0.3),
			RecencyHalfLife:   getEnvAsDuration("MASTERY_RECENCY_HALF_LIFE", 7*24*time.Hour),
			ResolverHorizon:   getEnvAsInt("RESOLVER_HORIZON_DAYS", 365),
		},
		Batch: BatchConfig{
			DefaultBatchSize: getEnvAsInt("BATCH_SIZE", 10),
			Concurrency:      getEnvAsInt("BATCH_CONCURRENCY", 5),
			UserTimeout:      getEnvAsDuration("BATCH_USER_TIMEOUT", 60*time.Second),
			CronSpec:         getEnv("BATCH_CRON", "0 2 * * *"),
			CronEnabled:      getEnvAsBool("BATCH_CRON_ENABLED", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid int value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid float value for %s, using default %f", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("Invalid bool value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("Invalid duration value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}
