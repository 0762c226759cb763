package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
	"github.com/pelletier/go-toml/v2"
)

// TargetsConfig is an inventory of browsers to sweep in one run.
type TargetsConfig struct {
	Targets []TargetConfig `toml:"targets"`
}

type TargetConfig struct {
	Name      string   `toml:"name"`
	Host      string   `toml:"host"`
	Port      int      `toml:"port"`
	Instances []string `toml:"instances"`
	Browse    bool     `toml:"browse"`
}

func LoadTargetsConfig(path string) (TargetsConfig, error) {
	var cfg TargetsConfig
	if err := loadToml(path, &cfg); err != nil {
		return TargetsConfig{}, err
	}
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Port == 0 {
			t.Port = ssrp.DefaultPort
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = t.Host
		}
		t.Instances = normalizeNames(t.Instances)
	}
	if err := ValidateTargetsConfig(cfg); err != nil {
		return TargetsConfig{}, err
	}
	return cfg, nil
}

func ValidateTargetsConfig(cfg TargetsConfig) error {
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("targets config has no targets")
	}
	for i, t := range cfg.Targets {
		if err := ValidateTargetEntry(t); err != nil {
			return fmt.Errorf("target[%d] invalid: %w", i, err)
		}
	}
	return nil
}

func ValidateTargetEntry(t TargetConfig) error {
	if strings.TrimSpace(t.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if t.Port <= 0 || t.Port > 65535 {
		return fmt.Errorf("port out of range: %d", t.Port)
	}
	if len(t.Instances) == 0 && !t.Browse {
		return fmt.Errorf("instances or browse is required")
	}
	for _, name := range t.Instances {
		if err := ValidateInstanceName(name); err != nil {
			return err
		}
	}
	return nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
