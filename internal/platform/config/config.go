package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = "config.yaml"

const (
	SynthLog    = "log"
	SynthMIDI   = "midi"
	SynthPlugin = "plugin"
)

type Config struct {
	DataDir      string        `yaml:"-"`
	DBPath       string        `yaml:"db_path"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
	Synth        string        `yaml:"synth"`
	MIDIPort     string        `yaml:"midi_port"`
	PluginBinary string        `yaml:"plugin_binary"`
	Listen       string        `yaml:"listen"`
	PollInterval time.Duration `yaml:"poll_interval"`
	TickInterval time.Duration `yaml:"tick_interval"`
	ClockStep    time.Duration `yaml:"clock_step"`

	// AllowedOrigins are the browser origins the HTTP API answers.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// New returns the defaults for dataDir overlaid with dataDir/config.yaml when
// that file exists.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)
	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", FileName, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}
	cfg.DataDir = dataDir
	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(dataDir, cfg.DBPath)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Default(dataDir string) Config {
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, "keyloop.db"),
		LogLevel:       "info",
		Synth:          SynthLog,
		Listen:         "127.0.0.1:8765",
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		PollInterval:   50 * time.Millisecond,
		TickInterval:   time.Second,
		ClockStep:      5 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch c.Synth {
	case SynthLog, SynthMIDI:
	case SynthPlugin:
		if c.PluginBinary == "" {
			return fmt.Errorf("synth %q requires plugin_binary", c.Synth)
		}
	default:
		return fmt.Errorf("unsupported synth %q", c.Synth)
	}
	if c.PollInterval <= 0 || c.TickInterval <= 0 || c.ClockStep <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	return nil
}

// Save writes the file form of c into its data dir.
func (c Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.DataDir, FileName), raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
