package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server Server
	Logger LoggerMode
	Store  Store
	AWS    AWS
	Redis  Redis
	Nats   Nats
	Socket Socket
}

type Server struct {
	Port           string
	Environment    string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

type LoggerMode struct {
	Development bool
	Level       string
}

// Store selects the Persistence Gateway implementation: dynamo, postgres or memory
type Store struct {
	Backend     string
	DatabaseURL string
}

type AWS struct {
	Region         string
	DynamoEndpoint string
	S3Bucket       string
}

type Redis struct {
	URL string
}

type Nats struct {
	URL    string
	Stream string
}

type Socket struct {
	MailboxSize int
}

const (
	BackendDynamo   = "dynamo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Load reads an optional .env file, an optional config/config.yaml, then the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	v.AutomaticEnv()

	return ParseConfig(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", BackendDynamo)
	v.SetDefault("DATABASE_URL", "postgres://localhost/vibin?sslmode=disable")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DYNAMO_ENDPOINT", "")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_STREAM", "CHAT_MESSAGES")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("SOCKET_MAILBOX_SIZE", 64)
}

// ParseConfig turns a populated viper instance into a Config
func ParseConfig(v *viper.Viper) (*Config, error) {
	env := v.GetString("ENVIRONMENT")
	c := &Config{
		Server: Server{
			Port:           v.GetString("PORT"),
			Environment:    env,
			CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		},
		Logger: LoggerMode{
			Development: env != "production",
			Level:       v.GetString("LOG_LEVEL"),
		},
		Store: Store{
			Backend:     strings.ToLower(v.GetString("STORE_BACKEND")),
			DatabaseURL: v.GetString("DATABASE_URL"),
		},
		AWS: AWS{
			Region:         v.GetString("AWS_REGION"),
			DynamoEndpoint: v.GetString("DYNAMO_ENDPOINT"),
			S3Bucket:       v.GetString("S3_BUCKET_NAME"),
		},
		Redis:  Redis{URL: v.GetString("REDIS_URL")},
		Nats:   Nats{URL: v.GetString("NATS_URL"), Stream: v.GetString("NATS_STREAM")},
		Socket: Socket{MailboxSize: v.GetInt("SOCKET_MAILBOX_SIZE")},
	}

	switch c.Store.Backend {
	case BackendDynamo, BackendPostgres, BackendMemory:
	default:
		return nil, errors.New("STORE_BACKEND must be one of dynamo, postgres, memory")
	}
	if c.Server.RequestTimeout <= 0 {
		return nil, errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.Socket.MailboxSize <= 0 {
		return nil, errors.New("SOCKET_MAILBOX_SIZE must be positive")
	}
	return c, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
