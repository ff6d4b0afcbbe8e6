package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding an optional config file path.
const PathEnv = "PIPELINE_CONFIG"

type Config struct {
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Kafka      KafkaConfig      `json:"kafka" yaml:"kafka"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	API        APIConfig        `json:"api" yaml:"api"`
	Rejects    RejectsConfig    `json:"rejects" yaml:"rejects"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

type KafkaConfig struct {
	Brokers          []string      `json:"brokers" yaml:"brokers"`
	Topic            string        `json:"topic" yaml:"topic"`
	GroupID          string        `json:"group_id" yaml:"group_id"`
	SecurityProtocol string        `json:"security_protocol" yaml:"security_protocol"`
	SASLMechanism    string        `json:"sasl_mechanism" yaml:"sasl_mechanism"`
	Username         string        `json:"username" yaml:"username"`
	Password         string        `json:"password" yaml:"password"`
	AutoOffsetReset  string        `json:"auto_offset_reset" yaml:"auto_offset_reset"`
	PollTimeout      time.Duration `json:"poll_timeout" yaml:"poll_timeout"`
}

type StorageConfig struct {
	Driver       string        `json:"driver" yaml:"driver"`
	DSN          string        `json:"dsn" yaml:"dsn"`
	Host         string        `json:"host" yaml:"host"`
	Port         string        `json:"port" yaml:"port"`
	User         string        `json:"user" yaml:"user"`
	Password     string        `json:"password" yaml:"password"`
	Database     string        `json:"database" yaml:"database"`
	SSLMode      string        `json:"sslmode" yaml:"sslmode"`
	CreateTables bool          `json:"create_tables" yaml:"create_tables"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

type ValidationConfig struct {
	OpenHour  int `json:"open_hour" yaml:"open_hour"`
	CloseHour int `json:"close_hour" yaml:"close_hour"`
	SiteCount int `json:"site_count" yaml:"site_count"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type RejectsConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", File: "data_errors.log"},
		Kafka: KafkaConfig{
			SecurityProtocol: "PLAINTEXT",
			AutoOffsetReset:  "latest",
			PollTimeout:      1 * time.Second,
		},
		Storage: StorageConfig{
			Driver:       "postgres",
			SSLMode:      "disable",
			CreateTables: true,
			WriteTimeout: 10 * time.Second,
		},
		Validation: ValidationConfig{OpenHour: 8, CloseHour: 19, SiteCount: 6},
		API:        APIConfig{Enabled: true, Addr: ":8081"},
		Rejects:    RejectsConfig{StoreLimit: 1000},
	}
}

// Load reads an optional YAML or JSON file, then overlays the process
// environment (after loading .env when present) and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorage is Load for tools that only talk to the database.
func LoadStorage(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := FromEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return errors.New("config file is empty")
	}
	if looksLikeJSON(trimmed) {
		return json.Unmarshal([]byte(trimmed), cfg)
	}
	return yaml.Unmarshal([]byte(trimmed), cfg)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

// FromEnv applies the flat option names used by the deployment environment.
func FromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup("BOOTSTRAP_SERVERS"); ok && strings.TrimSpace(v) != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	str("TOPIC", &cfg.Kafka.Topic)
	str("GROUP", &cfg.Kafka.GroupID)
	str("SECURITY_PROTOCOL", &cfg.Kafka.SecurityProtocol)
	str("SASL_MECHANISM", &cfg.Kafka.SASLMechanism)
	str("USERNAME", &cfg.Kafka.Username)
	str("PASSWORD", &cfg.Kafka.Password)
	str("AUTO_OFFSET", &cfg.Kafka.AutoOffsetReset)

	str("DB_DRIVER", &cfg.Storage.Driver)
	str("DB_DSN", &cfg.Storage.DSN)
	str("DB_HOST", &cfg.Storage.Host)
	str("DB_PORT", &cfg.Storage.Port)
	str("DB_USER", &cfg.Storage.User)
	str("DB_PASSWORD", &cfg.Storage.Password)
	str("DB_NAME", &cfg.Storage.Database)

	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FILE", &cfg.Logging.File)

	for key, dst := range map[string]*int{
		"OPEN_HOUR":  &cfg.Validation.OpenHour,
		"CLOSE_HOUR": &cfg.Validation.CloseHour,
		"SITE_COUNT": &cfg.Validation.SiteCount,
	} {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = "data_errors.log"
	}
	if cfg.Kafka.SecurityProtocol == "" {
		cfg.Kafka.SecurityProtocol = "PLAINTEXT"
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "latest"
	}
	if cfg.Kafka.PollTimeout <= 0 {
		cfg.Kafka.PollTimeout = 1 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "postgres"
	}
	if cfg.Storage.WriteTimeout <= 0 {
		cfg.Storage.WriteTimeout = 10 * time.Second
	}
	if cfg.Validation.SiteCount <= 0 {
		cfg.Validation.SiteCount = 6
	}
	if cfg.Rejects.StoreLimit <= 0 {
		cfg.Rejects.StoreLimit = 1000
	}
}

func Validate(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" || cfg.Kafka.GroupID == "" {
		return errors.New("kafka requires brokers, topic, group_id")
	}
	switch strings.ToUpper(cfg.Kafka.SecurityProtocol) {
	case "PLAINTEXT", "SSL":
	case "SASL_PLAINTEXT", "SASL_SSL":
		if cfg.Kafka.Username == "" {
			return errors.New("kafka.username required for SASL security protocols")
		}
	default:
		return fmt.Errorf("unsupported kafka.security_protocol: %q", cfg.Kafka.SecurityProtocol)
	}
	switch strings.ToLower(cfg.Kafka.AutoOffsetReset) {
	case "earliest", "smallest", "beginning", "latest", "largest", "end":
	default:
		return fmt.Errorf("unsupported kafka.auto_offset_reset: %q", cfg.Kafka.AutoOffsetReset)
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return err
	}
	v := cfg.Validation
	if v.OpenHour < 0 || v.CloseHour > 24 || v.OpenHour >= v.CloseHour {
		return fmt.Errorf("validation opening hours [%d, %d) are invalid", v.OpenHour, v.CloseHour)
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch strings.ToLower(s.Driver) {
	case "postgres", "postgresql":
		if s.DSN == "" && (s.Host == "" || s.Database == "") {
			return errors.New("storage requires dsn or host and database")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported storage.driver: %q", s.Driver)
	}
	return nil
}

// PostgresDSN builds a connection URL from the discrete storage options
// unless an explicit DSN was supplied.
func (s StorageConfig) PostgresDSN() string {
	if strings.TrimSpace(s.DSN) != "" {
		return s.DSN
	}
	host := s.Host
	if s.Port != "" {
		host = net.JoinHostPort(s.Host, s.Port)
	}
	u := url.URL{Scheme: "postgres", Host: host, Path: "/" + s.Database}
	if s.User != "" {
		if s.Password != "" {
			u.User = url.UserPassword(s.User, s.Password)
		} else {
			u.User = url.User(s.User)
		}
	}
	if s.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{s.SSLMode}}.Encode()
	}
	return u.String()
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
