package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	JWTSecret       string
	MaxCodeAttempts int
	JoinRPS         float64
	JoinBurst       int
	RedisURL        string
}

// ParseFlags validates flags and fills in env fallbacks and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("pickpool", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for join statistics (optional)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Identity token secret (prefer env)")

	// Tuning
	fs.IntVar(&cfg.MaxCodeAttempts, "code-attempts", 0, "Join code generation attempts per pool")
	fs.Float64Var(&cfg.JoinRPS, "join-rps", 0, "Join attempts per second per client")
	fs.IntVar(&cfg.JoinBurst, "join-burst", 0, "Join attempt burst per client")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3333)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.MaxCodeAttempts == 0 {
		attempts, err := envInt("CODE_ATTEMPTS", 5)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxCodeAttempts = attempts
	}
	if cfg.MaxCodeAttempts < 1 {
		return Config{}, errors.New("code attempts must be at least 1")
	}

	if cfg.JoinRPS == 0 {
		if s := os.Getenv("JOIN_RPS"); s != "" {
			rps, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Config{}, errors.New("invalid JOIN_RPS env variable")
			}
			cfg.JoinRPS = rps
		} else {
			cfg.JoinRPS = 1
		}
	}
	if cfg.JoinRPS <= 0 {
		return Config{}, errors.New("join rps must be positive")
	}

	if cfg.JoinBurst == 0 {
		burst, err := envInt("JOIN_BURST", 5)
		if err != nil {
			return Config{}, err
		}
		cfg.JoinBurst = burst
	}
	if cfg.JoinBurst < 1 {
		return Config{}, errors.New("join burst must be at least 1")
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
