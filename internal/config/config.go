package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
	"github.com/danmuck/ssrpctl/internal/resolver"
	"github.com/danmuck/ssrpctl/internal/transport"
)

// ClientConfig is everything ssrpctl needs to query one browser.
type ClientConfig struct {
	Host      string
	Port      int
	Instances []string
	Transport transport.Config
	Resolver  resolver.Config
}

type fileConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	LocalAddr       string   `toml:"local_addr"`
	ReadTimeout     string   `toml:"read_timeout"`
	ReadTimeoutMS   int64    `toml:"read_timeout_ms"`
	WriteTimeout    string   `toml:"write_timeout"`
	BufferSize      int      `toml:"buffer_size"`
	CacheTTL        string   `toml:"cache_ttl"`
	CacheSize       int      `toml:"cache_size"`
	BreakerFailures uint32   `toml:"breaker_failures"`
	BreakerOpenFor  string   `toml:"breaker_open_for"`
	Instances       []string `toml:"instances"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Host:      "127.0.0.1",
		Port:      ssrp.DefaultPort,
		Instances: []string{},
		Transport: transport.DefaultConfig(),
		Resolver:  resolver.DefaultConfig(),
	}
}

// LoadClientConfig overlays the keys present in path onto the defaults.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}

	if meta.IsDefined("host") {
		if host := strings.TrimSpace(raw.Host); host != "" {
			cfg.Host = host
		}
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("local_addr") {
		cfg.Transport.LocalAddr = strings.TrimSpace(raw.LocalAddr)
	}
	if meta.IsDefined("read_timeout") {
		d, err := parseDuration(raw.ReadTimeout)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.Transport.ReadTimeout = d
	}
	if meta.IsDefined("read_timeout_ms") {
		cfg.Transport.ReadTimeout = time.Duration(raw.ReadTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("write_timeout") {
		d, err := parseDuration(raw.WriteTimeout)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.Transport.WriteTimeout = d
	}
	if meta.IsDefined("buffer_size") {
		cfg.Transport.BufferSize = raw.BufferSize
	}
	if meta.IsDefined("cache_ttl") {
		d, err := parseDuration(raw.CacheTTL)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse cache_ttl: %w", err)
		}
		cfg.Resolver.CacheTTL = d
	}
	if meta.IsDefined("cache_size") {
		cfg.Resolver.CacheSize = raw.CacheSize
	}
	if meta.IsDefined("breaker_failures") {
		cfg.Transport.Breaker.ConsecutiveFailures = raw.BreakerFailures
	}
	if meta.IsDefined("breaker_open_for") {
		d, err := parseDuration(raw.BreakerOpenFor)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse breaker_open_for: %w", err)
		}
		cfg.Transport.Breaker.OpenFor = d
	}
	if meta.IsDefined("instances") {
		cfg.Instances = normalizeNames(raw.Instances)
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("client config missing host")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("client config port out of range: %d", cfg.Port)
	}
	if cfg.Transport.BufferSize < ssrp.HeaderLen {
		return fmt.Errorf("client config buffer_size too small: %d", cfg.Transport.BufferSize)
	}
	if cfg.Transport.BufferSize > ssrp.MaxResponseSize {
		return fmt.Errorf("client config buffer_size exceeds %d: %d", ssrp.MaxResponseSize, cfg.Transport.BufferSize)
	}
	for i, name := range cfg.Instances {
		if err := ValidateInstanceName(name); err != nil {
			return fmt.Errorf("instances[%d] invalid: %w", i, err)
		}
	}
	return nil
}

// ValidateInstanceName rejects names InstanceRequest cannot carry intact.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name is empty")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("instance name %q contains NUL", name)
	}
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(raw))
}

func normalizeNames(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, name := range in {
		v := strings.TrimSpace(name)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
