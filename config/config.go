// Ininicializing common application configuration
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	AppVersion   string `json:"appVersion"`
	Host         string `json:"host" validate:"required"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Env          string `json:"environment"`
	Mode         string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	// Настройки пула соединений
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// Addr возвращает адрес redis в форме host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type CacheConfig struct {
	// TTL кэшированных списков, по умолчанию 900 секунд
	TTL time.Duration `mapstructure:"ttl"`
}

type WorkerConfig struct {
	ReminderInterval time.Duration `mapstructure:"reminder_interval"`
	ReportInterval   time.Duration `mapstructure:"report_interval"`
	InactiveAfter    time.Duration `mapstructure:"inactive_after"`
	ExportDir        string        `mapstructure:"export_dir"`
}

type NotifyConfig struct {
	From    string `mapstructure:"from"`
	Enabled bool   `mapstructure:"enabled"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 900 * time.Second
	}
	if c.Worker.ReminderInterval == 0 {
		c.Worker.ReminderInterval = 24 * time.Hour
	}
	if c.Worker.ReportInterval == 0 {
		c.Worker.ReportInterval = 30 * 24 * time.Hour
	}
	if c.Worker.InactiveAfter == 0 {
		c.Worker.InactiveAfter = 7 * 24 * time.Hour
	}
	if c.Worker.ExportDir == "" {
		c.Worker.ExportDir = "./exports"
	}
	if c.JWT.Expiration == 0 {
		c.JWT.Expiration = 24 * time.Hour
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
