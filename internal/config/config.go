package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Environment string
	Port        string

	JWTPrivateKey *rsa.PrivateKey
	JWTPublicKey  *rsa.PublicKey

	DatabaseURL   string
	RedisAddress  string
	RedisPassword string

	Session Session
	Demo    Demo
	Limits  Limits
	Log     Log

	CORSAllowedOrigins []string
	RolePolicyFile     string
}

type Session struct {
	TTL              time.Duration
	HydrationTimeout time.Duration
	DataTimeout      time.Duration
}

// Demo configures the sign-in bypass. It is refused in production.
type Demo struct {
	BypassEnabled   bool
	AdminEmail      string
	AdminPassword   string
	FacultyEmail    string
	FacultyPassword string
}

type Limits struct {
	SignInRPS   float64
	SignInBurst int
}

type Log struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DB_CONNECTION_STRING"),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Session: Session{
			TTL:              getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			HydrationTimeout: getEnvAsDuration("SESSION_HYDRATION_TIMEOUT", 2*time.Second),
			DataTimeout:      getEnvAsDuration("DATA_TIMEOUT", 5*time.Second),
		},
		Demo: Demo{
			BypassEnabled:   getEnvAsBool("DEMO_BYPASS_ENABLED", false),
			AdminEmail:      getEnv("DEMO_ADMIN_EMAIL", "admin@campus.edu"),
			AdminPassword:   os.Getenv("DEMO_ADMIN_PASSWORD"),
			FacultyEmail:    getEnv("DEMO_FACULTY_EMAIL", "hod@campus.edu"),
			FacultyPassword: os.Getenv("DEMO_FACULTY_PASSWORD"),
		},
		Limits: Limits{
			SignInRPS:   getEnvAsFloat("SIGNIN_RATE_LIMIT_RPS", 1),
			SignInBurst: getEnvAsInt("SIGNIN_RATE_LIMIT_BURST", 5),
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080")),
		RolePolicyFile:     os.Getenv("ROLE_POLICY_FILE"),
	}

	var err error
	cfg.JWTPrivateKey, err = loadPrivateKey(getEnv("PRIVATE_KEY_PATH", "/etc/certs/private.pem"))
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}
	cfg.JWTPublicKey, err = loadPublicKey(getEnv("PUBLIC_KEY_PATH", "/etc/certs/public.pem"))
	if err != nil {
		return nil, fmt.Errorf("load public key: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if c.RedisAddress == "" {
		errs = append(errs, errors.New("REDIS_ADDRESS is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.HydrationTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_HYDRATION_TIMEOUT must be positive"))
	}
	if c.Session.DataTimeout <= 0 {
		errs = append(errs, errors.New("DATA_TIMEOUT must be positive"))
	}
	if c.Demo.BypassEnabled {
		if c.IsProduction() {
			errs = append(errs, errors.New("DEMO_BYPASS_ENABLED is not allowed in production"))
		}
		if c.Demo.AdminPassword == "" && c.Demo.FacultyPassword == "" {
			errs = append(errs, errors.New("DEMO_BYPASS_ENABLED needs DEMO_ADMIN_PASSWORD or DEMO_FACULTY_PASSWORD"))
		}
	}
	if c.Limits.SignInRPS <= 0 || c.Limits.SignInBurst <= 0 {
		errs = append(errs, errors.New("sign-in rate limit must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(l Log) (*zap.Logger, error) {
	var zc zap.Config
	if strings.EqualFold(l.Format, "console") {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyData)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
