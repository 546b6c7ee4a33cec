// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxFaceImageBytes is the hard upper bound for a captured face image (5 MB).
const MaxFaceImageBytes = 5 << 20

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the attendance API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// HTTPRequestTimeout bounds each API request's context (e.g. "30s").
	HTTPRequestTimeout string `mapstructure:"HTTP_REQUEST_TIMEOUT"`
	// GRPCAddr is the address of the gRPC health server; empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// JWTPrivateKey is the PEM-encoded private key or path to file; only needed to issue tokens (seed).
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file used to validate lecturer bearer tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// FingerprintDeviceURL is the scanner base URL (e.g. http://192.168.1.50). Empty disables background polling.
	FingerprintDeviceURL string `mapstructure:"FINGERPRINT_DEVICE_URL"`
	// FingerprintDevicePath is the identify endpoint on the scanner.
	FingerprintDevicePath     string `mapstructure:"FINGERPRINT_DEVICE_PATH"`
	FingerprintPollInterval   string `mapstructure:"FINGERPRINT_POLL_INTERVAL"`
	FingerprintDeviceTimeout  string `mapstructure:"FINGERPRINT_DEVICE_TIMEOUT"`
	// FingerprintLease is how long a poller keeps running without the operator reading session status.
	FingerprintLease string `mapstructure:"FINGERPRINT_LEASE"`

	// FaceRecognizerCmd is the executable invoked with the image path as its last argument.
	FaceRecognizerCmd string `mapstructure:"FACE_RECOGNIZER_CMD"`
	// FaceRecognizerArgs are space separated arguments placed before the image path.
	FaceRecognizerArgs    string `mapstructure:"FACE_RECOGNIZER_ARGS"`
	FaceRecognizerTimeout string `mapstructure:"FACE_RECOGNIZER_TIMEOUT"`
	FaceMaxImageBytes     int64  `mapstructure:"FACE_MAX_IMAGE_BYTES"`
	// FaceRateLimit is the number of face uploads a lecturer may send per minute.
	FaceRateLimit int `mapstructure:"FACE_RATE_LIMIT"`
	// FaceTempDir is where transient capture files are written; empty uses os.TempDir.
	FaceTempDir string `mapstructure:"FACE_TEMP_DIR"`

	// CoursePolicyFile is an optional Rego file replacing the built-in course access policy
	// (package attendance.course_access, rule allow).
	CoursePolicyFile string `mapstructure:"COURSE_POLICY_FILE"`

	// StrictBiometricMethod rejects unknown biometric methods instead of falling back to fingerprint.
	StrictBiometricMethod bool `mapstructure:"STRICT_BIOMETRIC_METHOD"`
	CSRFCookieSecure      bool `mapstructure:"CSRF_COOKIE_SECURE"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty yields no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsTopic is the Kafka topic for attendance events.
	EventsTopic string `mapstructure:"ATTENDANCE_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: Loki URL the event worker pushes to (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("HTTP_REQUEST_TIMEOUT", "30s")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "attendance-auth")
	v.SetDefault("JWT_AUDIENCE", "attendance-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("FINGERPRINT_DEVICE_URL", "")
	v.SetDefault("FINGERPRINT_DEVICE_PATH", "/identify")
	v.SetDefault("FINGERPRINT_POLL_INTERVAL", "2s")
	v.SetDefault("FINGERPRINT_DEVICE_TIMEOUT", "3s")
	v.SetDefault("FINGERPRINT_LEASE", "30s")
	v.SetDefault("FACE_RECOGNIZER_CMD", "python3")
	v.SetDefault("FACE_RECOGNIZER_ARGS", "recognize.py")
	v.SetDefault("FACE_RECOGNIZER_TIMEOUT", "10s")
	v.SetDefault("FACE_MAX_IMAGE_BYTES", MaxFaceImageBytes)
	v.SetDefault("FACE_RATE_LIMIT", 30)
	v.SetDefault("FACE_TEMP_DIR", "")
	v.SetDefault("COURSE_POLICY_FILE", "")
	v.SetDefault("STRICT_BIOMETRIC_METHOD", false)
	v.SetDefault("CSRF_COOKIE_SECURE", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "attendance-engine")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ATTENDANCE_KAFKA_TOPIC", "attendance-events")
	v.SetDefault("KAFKA_GROUP_ID", "attendance-event-worker")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.FaceMaxImageBytes <= 0 || cfg.FaceMaxImageBytes > MaxFaceImageBytes {
		return nil, errors.New("config: FACE_MAX_IMAGE_BYTES must be between 1 and 5242880")
	}

	if cfg.FaceRateLimit <= 0 {
		return nil, errors.New("config: FACE_RATE_LIMIT must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// RequestTimeout returns the per-request API timeout. Returns 30s if unset or invalid.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.HTTPRequestTimeout, 30*time.Second)
}

// PollInterval returns the fingerprint poll tick interval. Returns 2s if unset or invalid.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.FingerprintPollInterval, 2*time.Second)
}

// DeviceTimeout returns the per-request fingerprint device timeout. Returns 3s if unset or invalid.
func (c *Config) DeviceTimeout() time.Duration {
	return parseDuration(c.FingerprintDeviceTimeout, 3*time.Second)
}

// PollerLease returns how long an unattended poller keeps running. Returns 30s if unset or invalid.
func (c *Config) PollerLease() time.Duration {
	return parseDuration(c.FingerprintLease, 30*time.Second)
}

// RecognizerTimeout returns the face recognizer subprocess timeout. Returns 10s if unset or invalid.
func (c *Config) RecognizerTimeout() time.Duration {
	return parseDuration(c.FaceRecognizerTimeout, 10*time.Second)
}

// RecognizerArgs splits FaceRecognizerArgs on whitespace.
func (c *Config) RecognizerArgs() []string {
	if c == nil {
		return nil
	}
	return strings.Fields(c.FaceRecognizerArgs)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the event stream is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
