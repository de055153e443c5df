package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Config is built once at startup and passed to every component that needs it.
type Config struct {
	HTTPAddr           string
	AppEnv             string
	Storage            string
	CORSAllowedOrigins []string
	DB                 DBConfig
}

// DBConfig describes how to reach the MySQL server and which database to use.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load(filenames ...string) (Config, error) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":5000"),
		AppEnv:             getEnv("APP_ENV", "production"),
		Storage:            strings.ToLower(getEnv("STORAGE", StorageMySQL)),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "dbshop"),
		},
	}

	var err error
	if cfg.DB.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.DB.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	if cfg.DB.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.Storage != StorageMySQL && cfg.Storage != StorageMemory {
		return Config{}, fmt.Errorf("unknown STORAGE %q, want %q or %q", cfg.Storage, StorageMySQL, StorageMemory)
	}
	return cfg, nil
}

// Development reports whether the service runs in a development environment.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}

// DSN returns the driver DSN. With withDB false no database is selected,
// which is what the initializer needs before the database exists.
//
// The session time zone is pinned to UTC so TIMESTAMP values come back in
// the zone the driver parses them in (Loc defaults to UTC).
func (d DBConfig) DSN(withDB bool) string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, d.Port)
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"time_zone": "'+00:00'"}
	if withDB {
		cfg.DBName = d.Name
	}
	return cfg.FormatDSN()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
