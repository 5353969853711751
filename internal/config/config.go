// Package config loads service configuration from a yaml file with
// environment variable overrides.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds settings for every binary in the project. Each binary
// reads only the sections it needs.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_DSN"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	InvoiceDir              string `yaml:"invoice_dir" env-default:"./invoices"`
	UploadDir               string `yaml:"upload_dir" env-default:"./uploads"`
	FrontendURL             string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	BackendURL              string `yaml:"backend_url" env:"BACKEND_URL" env-default:"http://localhost:8080"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	JWTToken                `yaml:"jwttoken"`
	Webpay                  `yaml:"webpay"`
	SMTP                    `yaml:"smtp"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer settings for the API listener.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigin  string        `yaml:"cors_origin" env-default:"http://localhost:5173"`
}

// RedisConnection settings for the catalog cache.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ settings for the notification pipeline.
type RabbitMQ struct {
	RabbitURL  string        `yaml:"rabbit_url" env:"RABBIT_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"10"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// JWTToken settings for the access token maker.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Webpay holds Transbank credentials. Environment selects between the
// integration sandbox and production hosts.
type Webpay struct {
	CommerceCode string `yaml:"commerce_code" env:"WEBPAY_COMMERCE_CODE"`
	APIKey       string `yaml:"api_key" env:"WEBPAY_API_KEY"`
	Environment  string `yaml:"environment" env:"WEBPAY_ENV" env-default:"integration"`
}

// SMTP settings for outgoing mail.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
	MailFrom string `yaml:"mail_from"`
}

// Scheduler settings for the renewal sweep binary.
type Scheduler struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"1h"`
}

// MustLoad reads the config file pointed to by CONFIG_PATH and exits
// the process on any failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
