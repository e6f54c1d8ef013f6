package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load loads the match configuration.
// Search order: customPath -> ~/.pong/configs/match.yaml -> ./configs/match.yaml -> embedded default.
// The returned config is validated.
func Load(customPath string) (MatchConfig, error) {
	cfg, err := load(customPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func load(customPath string) (MatchConfig, error) {
	// Start from defaults so partial files only override what they set
	cfg := DefaultMatchConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("match.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultMatchConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/match.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultMatchConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultMatchYAML, &cfg); err != nil {
		return DefaultMatchConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pong", "configs", filename)
}

// Environment keys understood by ApplyEnv.
const (
	EnvPlayers       = "PONG_PLAYERS"
	EnvMode          = "PONG_MODE"
	EnvTickRate      = "PONG_TICK_RATE"
	EnvBroadcastRate = "PONG_BROADCAST_RATE"
	EnvScoreLimit    = "PONG_SCORE_LIMIT"
)

// ApplyEnv overrides selected settings from the process environment and an
// optional .env file. Process environment wins over the file. A missing file is not an error.
func ApplyEnv(cfg *MatchConfig, envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("config: failed to read %s: %w", envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvMode); ok {
		cfg.Mode = v
	}
	if err := envInt(lookup, EnvPlayers, &cfg.Players); err != nil {
		return err
	}
	if err := envInt(lookup, EnvTickRate, &cfg.Loop.TickRate); err != nil {
		return err
	}
	if err := envInt(lookup, EnvScoreLimit, &cfg.ScoreLimit); err != nil {
		return err
	}
	if v, ok := lookup(EnvBroadcastRate); ok {
		hz, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvBroadcastRate, v, err)
		}
		cfg.Network.BroadcastRateHz = hz
	}
	return nil
}

func envInt(lookup func(string) (string, bool), key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

// Marshal renders a config as YAML.
func Marshal(cfg MatchConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}
