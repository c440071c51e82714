package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// - empty: optional integrations (redis, rabbitmq, smtp) are disabled when their address is empty
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Refund   RefundConfig
	Gateway  GatewayConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Mail     MailConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"postgres"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type RefundConfig struct {
	MaxRetries      int           `envconfig:"REFUND_MAX_RETRIES" default:"3"`
	GatewayTimeout  time.Duration `envconfig:"REFUND_GATEWAY_TIMEOUT" default:"10s"`
	GatewayAttempts int           `envconfig:"REFUND_GATEWAY_ATTEMPTS" default:"1"`
	GatewayBackoff  time.Duration `envconfig:"REFUND_GATEWAY_BACKOFF" default:"200ms"`
	Currency        string        `envconfig:"REFUND_CURRENCY" default:"krw"`
}

type GatewayConfig struct {
	Driver          string        `envconfig:"GATEWAY_DRIVER" default:"simulated"`
	FailureRate     float64       `envconfig:"GATEWAY_FAILURE_RATE" default:"0.05"`
	Latency         time.Duration `envconfig:"GATEWAY_LATENCY" default:"300ms"`
	StripeSecretKey string        `envconfig:"STRIPE_SECRET_KEY"`
}

type RedisConfig struct {
	Addr           string        `envconfig:"REDIS_ADDR"`
	Password       string        `envconfig:"REDIS_PASSWORD"`
	DB             int           `envconfig:"REDIS_DB" default:"0"`
	PolicyCacheTTL time.Duration `envconfig:"POLICY_CACHE_TTL" default:"10m"`
}

type RabbitMQConfig struct {
	URL         string `envconfig:"RABBITMQ_URL"`
	RefundQueue string `envconfig:"RABBITMQ_REFUND_QUEUE" default:"refund.events"`
	// DialTimeout bounds connect plus handshake. After a failed dial the
	// publisher fails fast for RedialBackoff instead of dialling again.
	DialTimeout   time.Duration `envconfig:"RABBITMQ_DIAL_TIMEOUT" default:"3s"`
	RedialBackoff time.Duration `envconfig:"RABBITMQ_REDIAL_BACKOFF" default:"5s"`
}

type MailConfig struct {
	Host         string `envconfig:"SMTP_HOST"`
	Port         int    `envconfig:"SMTP_PORT" default:"587"`
	Username     string `envconfig:"SMTP_USERNAME"`
	Password     string `envconfig:"SMTP_PASSWORD"`
	From         string `envconfig:"SMTP_FROM" default:"refunds@localhost"`
	EscalationTo string `envconfig:"ESCALATION_TO" default:"ops@localhost"`
}

const (
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
	DriverSimulated = "simulated"
	DriverStripe    = "stripe"
)

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Refund: RefundConfig{
			MaxRetries:      3,
			GatewayTimeout:  2 * time.Second,
			GatewayAttempts: 1,
			GatewayBackoff:  10 * time.Millisecond,
			Currency:        "krw",
		},
		Gateway: GatewayConfig{
			Driver:      DriverSimulated,
			FailureRate: 0,
			Latency:     0,
		},
		RabbitMQ: RabbitMQConfig{
			RefundQueue:   "refund.events",
			DialTimeout:   time.Second,
			RedialBackoff: time.Second,
		},
		Mail: MailConfig{
			Port:         587,
			From:         "refunds@localhost",
			EscalationTo: "ops@localhost",
		},
	}
}
