package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is prepended to every application variable name.
const EnvPrefix = "FANOUT_"

// Config holds the runtime settings of the API process.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Fan-out limits applied to every /calculate/ request.
	MaxUnits    int
	MaxDelay    time.Duration
	Parallelism int
	UnitTimeout time.Duration

	AppealsDir string

	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	InFlightWait   time.Duration

	Telemetry   bool
	ServiceName string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ShutdownTimeout: 5 * time.Second,
		MaxUnits:        1000,
		MaxDelay:        5 * time.Minute,
		AppealsDir:      "appeals",
		RateLimitBurst:  1,
		Telemetry:       true,
		ServiceName:     "fanout-api",
	}
}

// Load reads the configuration from the process environment. Unparseable
// values fall back to their defaults; negative limits are rejected.
func Load() (Config, error) {
	d := Default()

	cfg := Config{
		Addr:            getEnvString("ADDR", d.Addr),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", d.ShutdownTimeout),
		MaxUnits:        getEnvInt("MAX_UNITS", d.MaxUnits),
		MaxDelay:        getEnvDuration("MAX_DELAY", d.MaxDelay),
		Parallelism:     getEnvInt("PARALLELISM", d.Parallelism),
		UnitTimeout:     getEnvDuration("UNIT_TIMEOUT", d.UnitTimeout),
		AppealsDir:      getEnvString("APPEALS_DIR", d.AppealsDir),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", d.RateLimitRPS),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", d.RateLimitBurst),
		MaxInFlight:     getEnvInt("MAX_IN_FLIGHT", d.MaxInFlight),
		InFlightWait:    getEnvDuration("IN_FLIGHT_WAIT", d.InFlightWait),
		Telemetry:       getEnvBool("TELEMETRY", d.Telemetry),
		ServiceName:     d.ServiceName,
	}

	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		cfg.ServiceName = name
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting outside its allowed range.
func (c Config) Validate() error {
	switch {
	case c.MaxUnits < 0:
		return fmt.Errorf("%sMAX_UNITS must not be negative, got %d", EnvPrefix, c.MaxUnits)
	case c.MaxDelay < 0:
		return fmt.Errorf("%sMAX_DELAY must not be negative, got %s", EnvPrefix, c.MaxDelay)
	case c.Parallelism < 0:
		return fmt.Errorf("%sPARALLELISM must not be negative, got %d", EnvPrefix, c.Parallelism)
	case c.UnitTimeout < 0:
		return fmt.Errorf("%sUNIT_TIMEOUT must not be negative, got %s", EnvPrefix, c.UnitTimeout)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%sRATE_LIMIT_RPS must not be negative, got %g", EnvPrefix, c.RateLimitRPS)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%sRATE_LIMIT_BURST must be at least 1 when rate limiting, got %d", EnvPrefix, c.RateLimitBurst)
	case c.MaxInFlight < 0:
		return fmt.Errorf("%sMAX_IN_FLIGHT must not be negative, got %d", EnvPrefix, c.MaxInFlight)
	case c.InFlightWait < 0:
		return fmt.Errorf("%sIN_FLIGHT_WAIT must not be negative, got %s", EnvPrefix, c.InFlightWait)
	case c.AppealsDir == "":
		return fmt.Errorf("%sAPPEALS_DIR must not be empty", EnvPrefix)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts "true", "1", "yes" and "false", "0", "no" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration accepts time.ParseDuration formats such as "500ms" or "1m30s".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
