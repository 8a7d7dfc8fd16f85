package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string
	LogFormat string
	LogLevel  string

	// Dataset sources. DatasetPath (YAML) wins over DatabaseURL when both
	// are set; with neither, only built-in rules apply.
	DatasetPath     string
	DatabaseURL     string
	RunMigrations   bool
	DatasetCacheTTL time.Duration
	RefreshInterval time.Duration
	WatchDataset    bool

	Redis     RedisConfig
	Kafka     KafkaConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig

	// AdminToken guards the admin endpoints. A value starting with "$2" is
	// treated as a bcrypt hash.
	AdminToken    string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// Settings applied when the request carries no explicit values.
	DefaultStateCode string
	PlanTier         string
	UserRole         string

	// UnknownRoleFallback is the role unknown roles normalize to.
	UnknownRoleFallback string
	AdminBypass         bool
}

// RedisConfig configures the dataset snapshot cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event stream.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

// AuditConfig tunes audit publishing.
type AuditConfig struct {
	BufferSize      int
	SampleRate      float64
	BreakerFailures int
	BreakerCooldown time.Duration
}

// RateLimitConfig throttles public API calls per client IP. A non-positive
// Requests disables the limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DefaultJWTSigningKey is the development key used when JWT_SIGNING_KEY is unset.
const DefaultJWTSigningKey = "dev-secret-key-change-in-production"

// UsesDefaultSigningKey reports whether tokens are signed with the public
// development key, which lets anyone mint a token for any plan and role.
func (s Server) UsesDefaultSigningKey() bool {
	return s.JWTSigningKey == DefaultJWTSigningKey
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:      getEnv("NOTARYFIX_ADDR", ":8080"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		DatasetPath:     os.Getenv("DATASET_PATH"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RunMigrations:   getBool("RUN_MIGRATIONS", true),
		DatasetCacheTTL: getDuration("DATASET_CACHE_TTL", 10*time.Minute),
		RefreshInterval: getDuration("DATASET_REFRESH_INTERVAL", 5*time.Minute),
		WatchDataset:    getBool("DATASET_WATCH", true),

		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           getList("KAFKA_BROKERS"),
			Topic:             getEnv("KAFKA_AUDIT_TOPIC", "notaryfix.audit"),
			Partitions:        int32(getInt("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(getInt("KAFKA_AUDIT_REPLICATION", 1)),
		},
		Audit: AuditConfig{
			BufferSize:      getInt("AUDIT_BUFFER_SIZE", 1024),
			SampleRate:      getFloat("AUDIT_OPS_SAMPLE_RATE", 1),
			BreakerFailures: getInt("AUDIT_BREAKER_FAILURES", 5),
			BreakerCooldown: getDuration("AUDIT_BREAKER_COOLDOWN", time.Minute),
		},
		RateLimit: RateLimitConfig{
			Requests: getInt("RATE_LIMIT_REQUESTS", 120),
			Window:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},

		AdminToken: os.Getenv("ADMIN_API_TOKEN"),
		// Use a default for development - should be overridden in production
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", DefaultJWTSigningKey),
		JWTIssuer:     getEnv("JWT_ISSUER", "notaryfix"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "notaryfix-api"),

		DefaultStateCode: strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_STATE_CODE"))),
		PlanTier:         getEnv("DEFAULT_PLAN_TIER", "free"),
		UserRole:         getEnv("DEFAULT_USER_ROLE", "notary"),

		UnknownRoleFallback: getEnv("GATES_UNKNOWN_ROLE_FALLBACK", "admin"),
		AdminBypass:         getBool("GATES_ADMIN_BYPASS", true),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
