package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingDatabaseURL = errors.New("missing required env DATABASE_URL")

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"inventory"`
	ServerPort  int    `env:"SERVER_PORT"  envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT"         envDefault:"10s"`
	StrictDeleteOwnership bool          `env:"STRICT_DELETE_OWNERSHIP" envDefault:"true"`
	CookieSecure          bool          `env:"COOKIE_SECURE"           envDefault:"true"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" envDefault:"products"`

	// SecretGenerated is set when JWT_SECRET was absent and a per-process
	// secret was generated instead. Tokens then die with the process.
	SecretGenerated bool `env:"-"`
}

// Load reads the optional dotenv files (".env" when none are given) and then
// the process environment. Values already present in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			log.Printf("notice: %s not loaded: %v, using system environment", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret(32)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.SecretGenerated = true
	}

	if cfg.TokenTTL < 0 {
		return nil, fmt.Errorf("TOKEN_TTL must not be negative, got %s", cfg.TokenTTL)
	}

	cfg.KafkaBrokers = CSV(cfg.KafkaBrokers)
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func (c *Config) Secret() []byte {
	return []byte(c.JWTSecret)
}

// CSV drops blank entries and surrounding whitespace from a split list.
func CSV(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func randomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
