package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis      RedisConfig
	Kafka      KafkaConfig
	Payment    PaymentConfig
	Session    SessionConfig
	Automation AutomationConfig
	Chat       ChatConfig
	Scheduler  SchedulerConfig

	UploadDir   string
	CatalogPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Buffer  int
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// PaymentConfig configures the payment gateway and the marketplace split.
type PaymentConfig struct {
	Provider       string
	CommissionRate float64
	Timeout        time.Duration
	DueDays        int

	AsaasAPIURL       string
	AsaasAPIKey       string
	AsaasWebhookToken string

	MercadoPagoAccessToken   string
	MercadoPagoWebhookSecret string

	// Sandbox identities are honoured only outside production.
	SandboxCustomerID string
	SandboxWalletID   string
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type AutomationConfig struct {
	Headless        bool
	NavigateTimeout time.Duration
	GovBRURL        string
	FormURL         string
	PortalURL       string
	PortalUsername  string
	PortalPassword  string
}

// SchedulerConfig drives background jobs. A zero interval disables a job.
type SchedulerConfig struct {
	Enabled                 bool
	RunInterval             time.Duration
	PipelineRefreshInterval time.Duration
}

type ChatConfig struct {
	RatePerSecond float64
	Burst         int
}

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "descomplaca"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  strings.ToLower(getenv("ENVIRONMENT", EnvDevelopment)),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "descomplaca"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getenv("KAFKA_BROKERS", "")),
			Topic:   getenv("KAFKA_TOPIC", "descomplaca.orders"),
			Buffer:  getenvInt("KAFKA_BUFFER", 256),
		},
		Payment: PaymentConfig{
			Provider:                 strings.ToLower(strings.TrimSpace(getenv("PAYMENT_PROVIDER", "asaas"))),
			CommissionRate:           getenvFloat("COMMISSION_RATE", 0.10),
			Timeout:                  time.Duration(getenvInt("PAYMENT_TIMEOUT_SECONDS", 10)) * time.Second,
			DueDays:                  getenvInt("PAYMENT_DUE_DAYS", 3),
			AsaasAPIURL:              strings.TrimRight(getenv("ASAAS_API_URL", "https://sandbox.asaas.com/api/v3"), "/"),
			AsaasAPIKey:              strings.TrimSpace(getenv("ASAAS_API_KEY", "")),
			AsaasWebhookToken:        strings.TrimSpace(getenv("ASAAS_WEBHOOK_TOKEN", "")),
			MercadoPagoAccessToken:   strings.TrimSpace(getenv("MERCADOPAGO_ACCESS_TOKEN", "")),
			MercadoPagoWebhookSecret: strings.TrimSpace(getenv("MERCADOPAGO_WEBHOOK_SECRET", "")),
			SandboxCustomerID:        strings.TrimSpace(getenv("SANDBOX_CUSTOMER_ID", "")),
			SandboxWalletID:          strings.TrimSpace(getenv("SANDBOX_WALLET_ID", "")),
		},
		Session: SessionConfig{
			IdleTimeout:   time.Duration(getenvInt("SESSION_IDLE_TIMEOUT_SECONDS", 300)) * time.Second,
			SweepInterval: time.Duration(getenvInt("SESSION_SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		},
		Automation: AutomationConfig{
			Headless:        getenvBool("AUTOMATION_HEADLESS", true),
			NavigateTimeout: time.Duration(getenvInt("AUTOMATION_TIMEOUT_SECONDS", 60)) * time.Second,
			GovBRURL:        getenv("AUTOMATION_GOVBR_URL", "https://sso.acesso.gov.br/"),
			FormURL:         getenv("AUTOMATION_FORM_URL", "https://fibromialgia.vilavelha.es.gov.br/"),
			PortalURL:       strings.TrimRight(getenv("AUTOMATION_PORTAL_URL", "https://placaswebmercosul.com.br"), "/"),
			PortalUsername:  strings.TrimSpace(getenv("AUTOMATION_PORTAL_USERNAME", "")),
			PortalPassword:  getenv("AUTOMATION_PORTAL_PASSWORD", ""),
		},
		Chat: ChatConfig{
			RatePerSecond: getenvFloat("CHAT_RATE_PER_SECOND", 1),
			Burst:         getenvInt("CHAT_BURST", 5),
		},
		Scheduler: SchedulerConfig{
			Enabled:                 getenvBool("SCHEDULER_ENABLED", true),
			RunInterval:             time.Duration(getenvInt("SCHEDULER_RUN_INTERVAL_SECONDS", 60)) * time.Second,
			PipelineRefreshInterval: time.Duration(getenvInt("PIPELINE_REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,
		},
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		CatalogPath: strings.TrimSpace(getenv("CATALOG_PATH", "")),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
