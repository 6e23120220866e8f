package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    string            `json:"log_level" yaml:"log_level"`
	Chain       ChainConfig       `json:"chain" yaml:"chain"`
	Signals     SignalsConfig     `json:"signals" yaml:"signals"`
	Dispatch    DispatchConfig    `json:"dispatch" yaml:"dispatch"`
	API         APIConfig         `json:"api" yaml:"api"`
	Sink        SinkConfig        `json:"sink" yaml:"sink"`
	Kafka       KafkaConfig       `json:"kafka" yaml:"kafka"`
	Storage     StorageConfig     `json:"storage" yaml:"storage"`
	Attestation AttestationConfig `json:"attestation" yaml:"attestation"`
}

type ChainConfig struct {
	RPCURL         string   `json:"rpc_url" yaml:"rpc_url"`
	StartBlock     *uint64  `json:"start_block" yaml:"start_block"`
	CheckpointPath string   `json:"checkpoint_path" yaml:"checkpoint_path"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
}

type SignalsConfig struct {
	DefinitionsPath string `json:"definitions_path" yaml:"definitions_path"`
}

type DispatchConfig struct {
	PollInterval Duration `json:"poll_interval" yaml:"poll_interval"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type SinkConfig struct {
	APIURL  string   `json:"api_url" yaml:"api_url"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type AttestationConfig struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	RegistryAddress string   `json:"registry_address" yaml:"registry_address"`
	FromAddress     string   `json:"from_address" yaml:"from_address"`
	ConfirmTimeout  Duration `json:"confirm_timeout" yaml:"confirm_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Chain: ChainConfig{
			RPCURL:         "https://sepolia.base.org",
			CheckpointPath: "",
			RequestTimeout: Duration(10 * time.Second),
		},
		Signals: SignalsConfig{
			DefinitionsPath: "signals/definitions.yaml",
		},
		Dispatch: DispatchConfig{
			PollInterval: Duration(10 * time.Second),
		},
		API:  APIConfig{Enabled: true, Addr: ":3001"},
		Sink: SinkConfig{APIURL: "", Timeout: Duration(10 * time.Second)},
		Kafka: KafkaConfig{
			Enabled: false,
		},
		Storage: StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:basesignals.db?_pragma=busy_timeout(5000)"},
		Attestation: AttestationConfig{
			Enabled:        false,
			ConfirmTimeout: Duration(60 * time.Second),
		},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
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

func applyDefaults(cfg *Config) {
	if cfg.Chain.RequestTimeout <= 0 {
		cfg.Chain.RequestTimeout = Duration(10 * time.Second)
	}
	if cfg.Dispatch.PollInterval <= 0 {
		cfg.Dispatch.PollInterval = Duration(10 * time.Second)
	}
	if cfg.Sink.Timeout <= 0 {
		cfg.Sink.Timeout = Duration(10 * time.Second)
	}
	if cfg.Attestation.ConfirmTimeout <= 0 {
		cfg.Attestation.ConfirmTimeout = Duration(60 * time.Second)
	}
	if cfg.Signals.DefinitionsPath == "" {
		cfg.Signals.DefinitionsPath = "signals/definitions.yaml"
	}
}

func Validate(cfg *Config) error {
	if cfg.Chain.RPCURL == "" {
		return errors.New("chain.rpc_url is required")
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			return errors.New("kafka requires brokers and topic")
		}
	}
	if cfg.Storage.Enabled {
		switch strings.ToLower(cfg.Storage.Driver) {
		case "sqlite", "postgres", "postgresql":
		default:
			return fmt.Errorf("unsupported storage driver: %q", cfg.Storage.Driver)
		}
	}
	if cfg.Attestation.Enabled {
		if cfg.Attestation.RegistryAddress == "" || cfg.Attestation.FromAddress == "" {
			return errors.New("attestation requires registry_address and from_address")
		}
	}
	return nil
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
