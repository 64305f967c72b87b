package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Minio    MinioConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	// Brokers empty disables the event mirror.
	Brokers []string
	Topic   string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("SOCIAL_HOST", "")
	viper.SetDefault("SOCIAL_PORT", "8080")
	viper.SetDefault("SOCIAL_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("SOCIAL_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("SOCIAL_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("SOCIAL_JWT_SECRET", "secret")
	viper.SetDefault("SOCIAL_JWT_EXPIRE", "24h")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "password")
	viper.SetDefault("POSTGRES_DB", "social")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	viper.SetDefault("KAFKA_BROKERS", []string{})
	viper.SetDefault("KAFKA_TOPIC", "social-events")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "social-media")
	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SOCIAL_HOST"),
			Port:         viper.GetString("SOCIAL_PORT"),
			ReadTimeout:  viper.GetDuration("SOCIAL_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SOCIAL_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("SOCIAL_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetString("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetString("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Minio: MinioConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("SOCIAL_JWT_SECRET"),
			ExpirationTime: viper.GetDuration("SOCIAL_JWT_EXPIRE"),
		},
	}, nil
}
