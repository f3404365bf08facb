package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type API struct {
	Port            string        `env:"PORT,default=8080"`
	PostgresURL     string        `env:"POSTGRES_URL,required"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	KafkaBrokers    string        `env:"KAFKA_BROKERS"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	TrustProxy      bool          `env:"TRUST_PROXY_HEADERS,default=false"`
}

// Brokers splits KAFKA_BROKERS on commas. An empty result disables publishing.
func (c API) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

type Notifier struct {
	KafkaBrokers    string        `env:"KAFKA_BROKERS,required"`
	EmailServiceURL string        `env:"EMAIL_SERVICE_URL,required"`
	RecipientDomain string        `env:"NOTIFY_RECIPIENT_DOMAIN,default=example.com"`
	ConsumerGroup   string        `env:"NOTIFY_CONSUMER_GROUP,default=order-notifier"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`
	HTTPTimeout     time.Duration `env:"EMAIL_HTTP_TIMEOUT,default=10s"`
}

func (c Notifier) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

type Mailbox struct {
	Port  string `env:"PORT,default=8084"`
	Limit int    `env:"MAILBOX_LIMIT,default=100"`
}

type Migrate struct {
	PostgresURL    string `env:"POSTGRES_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH,default=file://migrations"`
}

// LoadAPI reads the API configuration from the environment, after loading
// any of the given .env files that exist.
func LoadAPI(envFiles ...string) (API, error) {
	var cfg API
	if err := load(&cfg, envFiles); err != nil {
		return API{}, err
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return API{}, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return cfg, nil
}

func LoadNotifier(envFiles ...string) (Notifier, error) {
	var cfg Notifier
	if err := load(&cfg, envFiles); err != nil {
		return Notifier{}, err
	}
	return cfg, nil
}

func LoadMailbox(envFiles ...string) (Mailbox, error) {
	var cfg Mailbox
	if err := load(&cfg, envFiles); err != nil {
		return Mailbox{}, err
	}
	return cfg, nil
}

func LoadMigrate(envFiles ...string) (Migrate, error) {
	var cfg Migrate
	if err := load(&cfg, envFiles); err != nil {
		return Migrate{}, err
	}
	return cfg, nil
}

func load(target any, envFiles []string) error {
	for _, f := range envFiles {
		// godotenv never overrides variables already present in the environment.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := envdecode.Decode(target); err != nil {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
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
