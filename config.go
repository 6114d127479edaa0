package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lobodInI/API-Social-Media/crud"
	"github.com/lobodInI/API-Social-Media/http"
	"github.com/lobodInI/API-Social-Media/logging"
	"github.com/lobodInI/API-Social-Media/storage"
)

// The config file is .config.json in the working directory. Every key can be overridden
// by an environment variable, e.g. SOCIAL_DATABASE_HOST for database.host.
const (
	configName = ".config"
	configType = "json"
	envPrefix  = "SOCIAL"
)

type Config struct {
	Port       int              `mapstructure:"port"`
	Env        string           `mapstructure:"env"`
	Pepper     string           `mapstructure:"pepper"`
	JWT        crud.TokenConfig `mapstructure:"jwt"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      crud.RedisConfig `mapstructure:"redis"`
	Storage    storage.Config   `mapstructure:"storage"`
	Pagination http.Config      `mapstructure:"pagination"`
	Images     ImagesConfig     `mapstructure:"images"`
	Log        logging.Config   `mapstructure:"log"`
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, mysql or sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`  // postgres only
	FilePath        string        `mapstructure:"file_path"` // sqlite only
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ConnectionInfo returns the data source name for the configured driver.
func (dc DatabaseConfig) ConnectionInfo() string {
	switch dc.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			dc.User, dc.Password, dc.Host, dc.Port, dc.Name)
	case "sqlite":
		return dc.FilePath
	}
	if dc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
			dc.Host, dc.Port, dc.User, dc.Name, dc.SSLMode)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dc.Host, dc.Port, dc.User, dc.Password, dc.Name, dc.SSLMode)
}

type ImagesConfig struct {
	// Uploaded images are scaled down to fit a square of this size.
	MaxDimension int `mapstructure:"max_dimension"`
}

// setDefaults registers the development setup. A .config.json file or
// environment variables override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 1111)
	v.SetDefault("env", "dev")
	v.SetDefault("pepper", "secret-random-string")

	v.SetDefault("jwt.secret", "secret-jwt-signing-key-change-me!")
	v.SetDefault("jwt.access_ttl", "5m")
	v.SetDefault("jwt.refresh_ttl", "24h")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "social_media")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.file_path", "social_media.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "media")
	v.SetDefault("storage.local.public_url", "/media")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("storage.s3.public_url", "")

	v.SetDefault("pagination.page_size", 5)
	v.SetDefault("pagination.max_page_size", 50)

	v.SetDefault("images.max_dimension", 1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// LoadConfig loads the configuration from a .config.json file in dir, if present,
// on top of the default dev setup. In production the file is required.
func LoadConfig(dir string, isProd bool) (Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if isProd {
			return Config{}, errors.New("a .config.json file must be provided in production")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if isProd {
		c.Env = "prod"
	}
	return c, nil
}
