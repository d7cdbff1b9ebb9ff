package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidServiceMap  = errors.New("invalid GATEWAY_SERVICES entry")
)

type AuthConfig struct {
	HTTPPort          string
	DatabaseURL       string
	JWTSecret         string
	JWTAlgorithm      string
	TokenTTL          time.Duration
	BcryptCost        int
	RequestsPerMinute int
	RequestTimeout    time.Duration
}

type GatewayConfig struct {
	HTTPPort       string
	JWTSecret      string
	JWTAlgorithm   string
	ForwardTimeout time.Duration
	Services       map[string]string
	GlobalRPS      float64
	GlobalBurst    int
}

func LoadAuthConfig() (AuthConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return AuthConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return AuthConfig{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return AuthConfig{}, err
	}

	return AuthConfig{
		HTTPPort:          getEnv("AUTH_HTTP_PORT", "8001"),
		DatabaseURL:       databaseURL,
		JWTSecret:         jwtSecret,
		JWTAlgorithm:      getEnv("JWT_ALGORITHM", "HS256"),
		TokenTTL:          getDurationEnv("ACCESS_TOKEN_TTL", 60*time.Minute),
		BcryptCost:        getIntEnv("BCRYPT_COST", 12),
		RequestsPerMinute: getIntEnv("REQUESTS_PER_MINUTE", 60),
		RequestTimeout:    getDurationEnv("AUTH_REQUEST_TIMEOUT", 5*time.Second),
	}, nil
}

func LoadGatewayConfig() (GatewayConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return GatewayConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return GatewayConfig{}, err
	}

	services, err := parseServiceMap(getEnv("GATEWAY_SERVICES", "auth=http://auth-service:8001/auth"))
	if err != nil {
		return GatewayConfig{}, err
	}

	return GatewayConfig{
		HTTPPort:       getEnv("GATEWAY_HTTP_PORT", "8000"),
		JWTSecret:      jwtSecret,
		JWTAlgorithm:   getEnv("JWT_ALGORITHM", "HS256"),
		ForwardTimeout: getDurationEnv("GATEWAY_FORWARD_TIMEOUT", 30*time.Second),
		Services:       services,
		GlobalRPS:      getFloatEnv("GATEWAY_GLOBAL_RPS", 100),
		GlobalBurst:    getIntEnv("GATEWAY_GLOBAL_BURST", 200),
	}, nil
}

// parseServiceMap reads "name=url[,name=url...]". The URL's path component
// is the mount prefix the gateway rewrites matched requests onto.
func parseServiceMap(raw string) (map[string]string, error) {
	services := make(map[string]string)

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, target, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		target = strings.TrimSpace(target)
		if !ok || name == "" || target == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidServiceMap, entry)
		}

		services[name] = target
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("%w: no services configured", ErrInvalidServiceMap)
	}

	return services, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < 32 {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getFloatEnv(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
