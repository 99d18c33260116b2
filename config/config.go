package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// Config func to get env value
func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Println("No .env file found, using system environment")
		}
	})
	return os.Getenv(key)
}

func configOr(key, fallback string) string {
	if v := strings.TrimSpace(Config(key)); v != "" {
		return v
	}
	return fallback
}

func configBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Config(key))
	if err != nil {
		return fallback
	}
	return v
}

func configDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func configList(key string) []string {
	var out []string
	for _, part := range strings.Split(Config(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Settings is the typed view over the environment used to wire the service.
type Settings struct {
	AppEnv  string
	AppURL  string
	Port    string
	AppName string

	DBDriver string
	DBDsn    string

	JWTSecret string
	JWTTTL    time.Duration

	PaymongoBaseURL        string
	PaymongoSecretKey      string
	PaymongoPublicKey      string
	PaymongoWebhookSecret  string
	PaymongoTimeout        time.Duration
	AllowUnsignedWebhooks  bool
	DeepLinkScheme         string
	StatementDescriptor    string
	PaymentSweepInterval   time.Duration
	PaymentSweepStaleAfter time.Duration

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	SemaphoreURL        string
	SemaphoreAPIKey     string
	SemaphoreSenderName string
}

// Load reads every setting once, applying defaults for local development.
func Load() Settings {
	smtpPort, err := strconv.Atoi(configOr("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}

	driver := configOr("DB_DRIVER", "postgres")

	return Settings{
		AppEnv:  configOr("APP_ENV", "local"),
		AppURL:  configOr("APP_URL", "http://localhost:8002"),
		Port:    configOr("PORT", "8002"),
		AppName: configOr("APP_NAME", "Laundromat"),

		DBDriver: driver,
		DBDsn:    databaseDSN(driver),

		JWTSecret: Config("JWT_SECRET"),
		JWTTTL:    configDuration("JWT_TTL", 24*time.Hour),

		PaymongoBaseURL:        configOr("PAYMONGO_API_URL", "https://api.paymongo.com/v1"),
		PaymongoSecretKey:      Config("PAYMONGO_SECRET_KEY"),
		PaymongoPublicKey:      Config("PAYMONGO_PUBLIC_KEY"),
		PaymongoWebhookSecret:  Config("PAYMONGO_WEBHOOK_SECRET"),
		PaymongoTimeout:        configDuration("PAYMONGO_TIMEOUT", 15*time.Second),
		AllowUnsignedWebhooks:  configBool("PAYMONGO_ALLOW_UNSIGNED_WEBHOOKS", false),
		DeepLinkScheme:         configOr("APP_DEEP_LINK_SCHEME", "laundryapp"),
		StatementDescriptor:    configOr("PAYMONGO_STATEMENT_DESCRIPTOR", "Laundromat Service"),
		PaymentSweepInterval:   configDuration("PAYMENT_SWEEP_INTERVAL", 0),
		PaymentSweepStaleAfter: configDuration("PAYMENT_SWEEP_STALE_AFTER", 10*time.Minute),

		RedisAddr:     Config("REDIS_ADDR"),
		RedisPassword: Config("REDIS_PASSWORD"),

		KafkaBrokers: configList("KAFKA_BROKERS"),
		KafkaTopic:   configOr("KAFKA_TOPIC", "laundry.events"),

		SMTPHost:     Config("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: Config("SMTP_USERNAME"),
		SMTPPassword: Config("SMTP_PASSWORD"),
		SMTPFrom:     configOr("SMTP_FROM", "Laundromat <no-reply@laundromat.local>"),

		SemaphoreURL:        configOr("SEMAPHORE_API_URL", "https://api.semaphore.co/api/v4/messages"),
		SemaphoreAPIKey:     Config("SEMAPHORE_API_KEY"),
		SemaphoreSenderName: configOr("SEMAPHORE_SENDER_NAME", "Laundromat"),
	}
}

func databaseDSN(driver string) string {
	if driver == "sqlite" {
		return configOr("SQLITE_PATH", "laundry.db")
	}
	if dsn := Config("DB_DSN"); dsn != "" {
		return dsn
	}
	port, err := strconv.ParseUint(configOr("DB_PORT", "5432"), 10, 32)
	if err != nil {
		panic("failed to parse database port")
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		configOr("DB_HOST", "localhost"), port, Config("DB_USER"), Config("DB_PASSWORD"), configOr("DB_NAME", "laundry"))
}

func (s Settings) IsProduction() bool {
	return strings.EqualFold(s.AppEnv, "production")
}

// WebhookSignatureRequired reports whether unsigned webhook deliveries must be rejected.
func (s Settings) WebhookSignatureRequired() bool {
	return s.IsProduction() || !s.AllowUnsignedWebhooks
}
