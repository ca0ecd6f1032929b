package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Upstream UpstreamConfig
	Sync     SyncConfig
	Images   ImageConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// DatabaseConfig selects the catalog backend: "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

// UpstreamConfig describes the ATVR catalog endpoints.
type UpstreamConfig struct {
	BaseURL          string
	DetailURL        string
	ImageURL         string
	Category         string
	OrderBy          string
	PageSize         int
	TimeoutSeconds   int
	ProducerCacheTTL int // seconds
}

type SyncConfig struct {
	ProvisioningPolicy string // lenient | strict
	ArchiveMode        string // eager | atomic
	HoursPolicy        string // skip | abort
	FuzzyThreshold     float64
	Fanout             int
	Stores             []string
}

type ImageConfig struct {
	Dir       string
	PublicURL string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
			GRPCPort: getEnv("GRPC_PORT", ":8082"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			SQLitePath: getEnv("SQLITE_PATH", "catalog.db"),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "bjor"),
			Password:        getEnv("POSTGRES_PASSWORD", "bjor"),
			DBName:          getEnv("POSTGRES_DB", "bjor_catalog"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_SYNC", "catalog.sync"),
			GroupID: getEnv("KAFKA_GROUP_SYNC", "catalog-sync"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", nil),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Upstream: UpstreamConfig{
			BaseURL:          getEnv("ATVR_BASE_URL", "https://www.vinbudin.is/addons/origo/module/ajaxwebservices/search.asmx"),
			DetailURL:        getEnv("ATVR_DETAIL_URL", "https://www.vinbudin.is/heim/vorur/stoek-vara.aspx/"),
			ImageURL:         getEnv("ATVR_IMAGE_URL", "https://www.vinbudin.is/Portaldata/1/Resources/vorumyndir/original"),
			Category:         getEnv("ATVR_CATEGORY", "beer"),
			OrderBy:          getEnv("ATVR_ORDER_BY", "price desc"),
			PageSize:         getEnvInt("ATVR_PAGE_SIZE", 500),
			TimeoutSeconds:   getEnvInt("ATVR_TIMEOUT_SECONDS", 30),
			ProducerCacheTTL: getEnvInt("ATVR_PRODUCER_CACHE_TTL_SECONDS", 3600),
		},
		Sync: SyncConfig{
			ProvisioningPolicy: getEnv("SYNC_PROVISIONING_POLICY", "lenient"),
			ArchiveMode:        getEnv("SYNC_ARCHIVE_MODE", "eager"),
			HoursPolicy:        getEnv("SYNC_HOURS_POLICY", "skip"),
			FuzzyThreshold:     getEnvFloat("SYNC_FUZZY_THRESHOLD", 0.8),
			Fanout:             getEnvInt("SYNC_FANOUT", 16),
			Stores:             getEnvSlice("SYNC_STORES", []string{"104", "110", "112"}),
		},
		Images: ImageConfig{
			Dir:       getEnv("IMAGE_DIR", "./product-images"),
			PublicURL: getEnv("IMAGE_PUBLIC_URL", "/images"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
