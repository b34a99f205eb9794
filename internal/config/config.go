package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config - конфигурация приложения
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
	Security SecurityConfig
	Email    EmailConfig
}

type AppConfig struct {
	HTTPAddr       string // адрес HTTP сервера
	LogLevel       string // DEBUG / INFO / WARN / ERROR
	MigrationsPath string // путь к миграциям для golang-migrate
}

type PostgresConfig struct {
	URL      string // если задан, остальные поля игнорируются
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN возвращает строку подключения к Postgres
func (c PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type MongoConfig struct {
	URL      string
	Database string
}

type RedisConfig struct {
	Addr     string // пусто - ограничение попыток входа выключено
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL   string // пусто - аудит пишется напрямую в MongoDB
	Queue string
}

type JWTConfig struct {
	SecretKey     string
	Algorithm     string
	ExpireMinutes int
}

// TTL - время жизни access токена
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

type SecurityConfig struct {
	ResetTokenTTL      time.Duration
	LoginMaxFailures   int
	LoginFailureWindow time.Duration
}

type EmailConfig struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// Enabled - заданы ли параметры SMTP
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

// Default возвращает конфигурацию по умолчанию для локальной разработки
func Default() *Config {
	return &Config{
		App: AppConfig{
			HTTPAddr:       ":8080",
			LogLevel:       "INFO",
			MigrationsPath: "file://migrations",
		},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "tracker",
			SSLMode: "disable",
		},
		Mongo: MongoConfig{
			URL:      "mongodb://localhost:27017",
			Database: "tracker",
		},
		RabbitMQ: RabbitMQConfig{
			Queue: "audit_logs",
		},
		JWT: JWTConfig{
			SecretKey:     "your-secret-key-change-in-production", // Default для разработки
			Algorithm:     "HS256",
			ExpireMinutes: 60,
		},
		Security: SecurityConfig{
			ResetTokenTTL:      time.Hour,
			LoginMaxFailures:   5,
			LoginFailureWindow: 15 * time.Minute,
		},
		Email: EmailConfig{
			SMTPPort: 587,
		},
	}
}

// Load читает .env (если есть) и переопределяет значения по умолчанию переменными окружения
func Load(envFiles ...string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load(envFiles...)

	cfg := Default()
	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v)

	setString(v, "http_addr", &cfg.App.HTTPAddr)
	setString(v, "log_level", &cfg.App.LogLevel)
	setString(v, "migrations_path", &cfg.App.MigrationsPath)

	setString(v, "database_url", &cfg.Postgres.URL)
	setString(v, "db_host", &cfg.Postgres.Host)
	setString(v, "db_port", &cfg.Postgres.Port)
	setString(v, "db_user", &cfg.Postgres.User)
	setString(v, "db_password", &cfg.Postgres.Password)
	setString(v, "db_name", &cfg.Postgres.DBName)
	setString(v, "db_sslmode", &cfg.Postgres.SSLMode)

	setString(v, "mongo_url", &cfg.Mongo.URL)
	setString(v, "mongo_db", &cfg.Mongo.Database)

	setString(v, "redis_addr", &cfg.Redis.Addr)
	setString(v, "redis_password", &cfg.Redis.Password)
	setInt(v, "redis_db", &cfg.Redis.DB)

	setString(v, "rabbitmq_url", &cfg.RabbitMQ.URL)
	setString(v, "rabbitmq_queue", &cfg.RabbitMQ.Queue)

	setString(v, "jwt_secret_key", &cfg.JWT.SecretKey)
	setString(v, "jwt_algorithm", &cfg.JWT.Algorithm)
	setInt(v, "jwt_expire_minutes", &cfg.JWT.ExpireMinutes)

	setDuration(v, "reset_token_ttl", &cfg.Security.ResetTokenTTL)
	setInt(v, "login_max_failures", &cfg.Security.LoginMaxFailures)
	setDuration(v, "login_failure_window", &cfg.Security.LoginFailureWindow)

	setString(v, "smtp_host", &cfg.Email.SMTPHost)
	setInt(v, "smtp_port", &cfg.Email.SMTPPort)
	setString(v, "smtp_user", &cfg.Email.SMTPUser)
	setString(v, "smtp_pass", &cfg.Email.SMTPPass)
	setString(v, "smtp_from", &cfg.Email.FromEmail)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых сервис не может работать
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWT.Algorithm)
	}
	if c.JWT.ExpireMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRE_MINUTES must be positive, got %d", c.JWT.ExpireMinutes)
	}
	if c.Security.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}
	return nil
}

var envKeys = []string{
	"http_addr", "log_level", "migrations_path",
	"database_url", "db_host", "db_port", "db_user", "db_password", "db_name", "db_sslmode",
	"mongo_url", "mongo_db",
	"redis_addr", "redis_password", "redis_db",
	"rabbitmq_url", "rabbitmq_queue",
	"jwt_secret_key", "jwt_algorithm", "jwt_expire_minutes",
	"reset_token_ttl", "login_max_failures", "login_failure_window",
	"smtp_host", "smtp_port", "smtp_user", "smtp_pass", "smtp_from",
}

func bindEnv(v *viper.Viper) {
	for _, key := range envKeys {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) && v.GetString(key) != "" {
		*dst = v.GetInt(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) && v.GetString(key) != "" {
		*dst = v.GetDuration(key)
	}
}
