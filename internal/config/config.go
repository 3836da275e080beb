package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	HTTPAddr    string `yaml:"http_addr"`
	GRPCAddr    string `yaml:"grpc_addr"`

	StoreDriver string `yaml:"store_driver"`
	MySQLDSN    string `yaml:"mysql_dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// RedisAddr enables the purchase cache and idempotency keys when set.
	RedisAddr      string        `yaml:"redis_addr"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`

	InventoryURL     string        `yaml:"inventory_url"`
	InventoryTimeout time.Duration `yaml:"inventory_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`

	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	TracingExporter string `yaml:"tracing_exporter"`
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
}

func Default() Config {
	return Config{
		ServiceName:      "purchase-service",
		HTTPAddr:         ":8080",
		GRPCAddr:         ":50051",
		StoreDriver:      StoreMySQL,
		MySQLDSN:         "root:root@tcp(localhost:3306)/purchases",
		AutoMigrate:      true,
		RedisAddr:        "localhost:6379",
		CacheTTL:         10 * time.Minute,
		IdempotencyTTL:   24 * time.Hour,
		InventoryURL:     "http://localhost:8000",
		InventoryTimeout: 5 * time.Second,
		RequestTimeout:   15 * time.Second,
		LogLevel:         "info",
		LogFormat:        "json",
		OTLPEndpoint:     "localhost:4317",
	}
}

// Load reads defaults, then the YAML file at path (if any), then environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SERVICE_NAME":     &c.ServiceName,
		"HTTP_ADDR":        &c.HTTPAddr,
		"GRPC_ADDR":        &c.GRPCAddr,
		"STORE_DRIVER":     &c.StoreDriver,
		"MYSQL_DSN":        &c.MySQLDSN,
		"REDIS_ADDR":       &c.RedisAddr,
		"INVENTORY_URL":    &c.InventoryURL,
		"LOG_LEVEL":        &c.LogLevel,
		"LOG_FORMAT":       &c.LogFormat,
		"TRACING_EXPORTER": &c.TracingExporter,
		"OTLP_ENDPOINT":    &c.OTLPEndpoint,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"CACHE_TTL":         &c.CacheTTL,
		"IDEMPOTENCY_TTL":   &c.IdempotencyTTL,
		"INVENTORY_TIMEOUT": &c.InventoryTimeout,
		"REQUEST_TIMEOUT":   &c.RequestTimeout,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv("AUTO_MIGRATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTO_MIGRATE: %w", err)
		}
		c.AutoMigrate = b
	}

	return nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMySQL:
		if c.MySQLDSN == "" {
			errs = append(errs, errors.New("mysql_dsn is required for the mysql store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store_driver %q", c.StoreDriver))
	}

	if c.InventoryURL == "" {
		errs = append(errs, errors.New("inventory_url is required"))
	}
	if c.InventoryTimeout <= 0 {
		errs = append(errs, errors.New("inventory_timeout must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}

	switch c.TracingExporter {
	case "", "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("unknown tracing_exporter %q", c.TracingExporter))
	}

	return errors.Join(errs...)
}
