package bootstrap

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-richtext"
	"github.com/goliatone/go-richtext/commands"
)

// Options captures the tunable configuration shared across CLI commands.
type Options struct {
	// ConfigPath points at an optional TOML file layered over the defaults.
	ConfigPath string
	// LogLevel enables go-logger output at the given level when set.
	LogLevel string
}

// Resources groups the module runtime and the command handlers built for it.
type Resources struct {
	Module   *richtext.Module
	Commands *commands.RegistrationResult
}

// Close releases dispatcher subscriptions held by the resources.
func (r *Resources) Close() {
	if r != nil {
		r.Commands.Close()
	}
}

// LoadConfig returns the default configuration overlaid with the TOML file at
// path. Unknown keys are rejected so typos surface early.
func LoadConfig(path string) (richtext.Config, error) {
	cfg := richtext.DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return decodeConfig(data, cfg)
}

func decodeConfig(data []byte, cfg richtext.Config) (richtext.Config, error) {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// BuildModule constructs a richtext.Module and its command handlers.
func BuildModule(opts Options) (*Resources, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Features.Logger = true
		cfg.Logging.Level = level
		if cfg.Logging.Provider == "" {
			cfg.Logging.Provider = "gologger"
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "console"
		}
	}

	module, err := richtext.New(cfg)
	if err != nil {
		return nil, err
	}
	result, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{})
	if err != nil {
		return nil, err
	}
	return &Resources{Module: module, Commands: result}, nil
}

// SplitList parses a comma separated flag value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
