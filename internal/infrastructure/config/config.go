package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the MFI service.
type Config struct {
	ServiceName string
	// OTLP gRPC collector, host:port. Empty disables tracing.
	TracingEndpoint string
	DB              DatabaseConfig
	Mongo           MongoConfig
	Kafka           KafkaConfig
	Auth            AuthConfig
	Log             LogConfig
	Stacking        StackingConfig
	GRPC            GRPCConfig
	GRPCPort        int
	HTTPPort        int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Port     int
	MaxConns int32
}

// MongoConfig holds settings for the credit history document store.
type MongoConfig struct {
	URI            string
	Host           string
	User           string
	Password       string
	Database       string
	Port           int
	ConnectTimeout time.Duration
}

// KafkaConfig holds Kafka connection and topic settings.
type KafkaConfig struct {
	LendingTopic  string
	CreditTopic   string
	ConsumerGroup string
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	Brokers       []string
	TLS           bool
	SASLEnabled   bool
}

// AuthConfig holds JWT validation settings. A public key takes precedence
// over the shared secret.
type AuthConfig struct {
	Issuer        string
	PublicKeyPEM  string
	PublicKeyFile string
	Secret        string
}

// GRPCConfig holds transport options for the gRPC server. TLS is enabled
// when both CertFile and KeyFile are set; ClientCAFile adds mutual TLS.
type GRPCConfig struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
	Reflection   bool
}

// TLSEnabled reports whether a server key pair is configured.
func (g GRPCConfig) TLSEnabled() bool {
	return g.CertFile != "" && g.KeyFile != ""
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// StackingConfig bounds loan stacking at approval time.
type StackingConfig struct {
	MaxOpenLoansElsewhere int
	MaxDefaultedPayments  int
}

// Validate reports every missing secret.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.Mongo.URI == "" && c.Mongo.Host == "" {
		errs = append(errs, errors.New("MONGO_URI or MONGO_HOST environment variable is required"))
	}
	if c.Auth.PublicKeyPEM == "" && c.Auth.PublicKeyFile == "" && c.Auth.Secret == "" {
		errs = append(errs, errors.New("one of JWT_PUBLIC_KEY, JWT_PUBLIC_KEY_FILE or JWT_SECRET is required"))
	}
	if c.Kafka.SASLEnabled && c.Kafka.SASLPassword == "" {
		errs = append(errs, errors.New("KAFKA_SASL_PASSWORD is required when SASL is enabled"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		GRPCPort:        getEnvInt("GRPC_PORT", 9090),
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		ServiceName:     getEnv("SERVICE_NAME", "mfi-service"),
		TracingEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "letsema"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "letsema_mfi"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)), //nolint:gosec
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", ""),
			Host:           getEnv("MONGO_HOST", ""),
			Port:           getEnvInt("MONGO_PORT", 27017),
			User:           getEnv("MONGO_USER", ""),
			Password:       getEnv("MONGO_PASSWORD", ""),
			Database:       getEnv("MONGO_DATABASE", "letsema_credit"),
			ConnectTimeout: time.Duration(getEnvInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			LendingTopic:  getEnv("KAFKA_LENDING_TOPIC", "mfi.lending.events"),
			CreditTopic:   getEnv("KAFKA_CREDIT_TOPIC", "mfi.credit.events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "mfi-credit-aggregator"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Issuer:        getEnv("JWT_ISSUER", "letsema-identity"),
			PublicKeyPEM:  getEnv("JWT_PUBLIC_KEY", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Secret:        getEnv("JWT_SECRET", ""),
		},
		GRPC: GRPCConfig{
			CertFile:     getEnv("GRPC_TLS_CERT_FILE", ""),
			KeyFile:      getEnv("GRPC_TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("GRPC_TLS_CLIENT_CA_FILE", ""),
			Reflection:   getEnvBool("GRPC_REFLECTION", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Stacking: StackingConfig{
			MaxOpenLoansElsewhere: getEnvInt("STACKING_MAX_OPEN_LOANS_ELSEWHERE", 2),
			MaxDefaultedPayments:  getEnvInt("STACKING_MAX_DEFAULTED_PAYMENTS", 0),
		},
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
