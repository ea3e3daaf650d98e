package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend        string
	SupabaseURL    string
	SupabaseKey    string
	DBDSN          string
	ServerPort     string
	GinMode        string
	SessionSecret  string
	BackendTimeout time.Duration
	TokenTTL       time.Duration
	RosterFile     string
	TrustedProxies []string

	AdminEmail    string
	AdminPassword string
	AdminAgent    string
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv(osEnv{})
}

func LoadFromEnv(env Env) (*Config, error) {
	cfg := &Config{
		Backend:        strings.ToLower(strings.TrimSpace(env.Getenv("BACKEND"))),
		SupabaseURL:    env.Getenv("SUPABASE_URL"),
		SupabaseKey:    env.Getenv("SUPABASE_KEY"),
		DBDSN:          env.Getenv("DB_DSN"),
		ServerPort:     env.Getenv("SERVER_PORT"),
		GinMode:        env.Getenv("GIN_MODE"),
		SessionSecret:  env.Getenv("SESSION_SECRET"),
		RosterFile:     env.Getenv("ROSTER_FILE"),
		AdminEmail:     env.Getenv("ADMIN_EMAIL"),
		AdminPassword:  env.Getenv("ADMIN_PASSWORD"),
		AdminAgent:     env.Getenv("ADMIN_AGENT"),
		BackendTimeout: 10 * time.Second,
		TokenTTL:       time.Hour,
	}

	for _, p := range strings.Split(env.Getenv("TRUSTED_PROXIES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, p)
		}
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendSupabase
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}

	switch cfg.Backend {
	case BackendSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL is not set")
		}
		if cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_KEY is not set")
		}
	case BackendPostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is not set")
		}
	default:
		return nil, fmt.Errorf("unknown BACKEND %q (must be supabase or postgres)", cfg.Backend)
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("invalid GIN_MODE %q", cfg.GinMode)
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT")
	}

	var err error
	if cfg.BackendTimeout, err = seconds(env, "BACKEND_TIMEOUT", cfg.BackendTimeout); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = seconds(env, "TOKEN_TTL", cfg.TokenTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func seconds(env Env, key string, def time.Duration) (time.Duration, error) {
	raw := env.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return time.Duration(n) * time.Second, nil
}
