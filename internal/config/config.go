// YAML config loader with CUE schema validation.
package config

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry values like "100ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SafetyConfig tunes the command gate.
type SafetyConfig struct {
	SafeMode       bool     `yaml:"safe_mode"`
	MaxCommandRate float64  `yaml:"max_command_rate"`
	AllowCommands  []string `yaml:"allow_commands"`
}

// AdminConfig configures the admin HTTP server.
type AdminConfig struct {
	Listen string `yaml:"listen"`
}

// SinkConfig configures telemetry export targets.
type SinkConfig struct {
	GreptimeEndpoint string `yaml:"greptime_endpoint"`
	GreptimeDatabase string `yaml:"greptime_database"`
}

// Config is the root configuration passed into the core's constructor.
// There are no process-wide singletons; whoever loads this hands it down.
type Config struct {
	MachineID       string        `yaml:"machine_id"`
	TickInterval    Duration      `yaml:"tick_interval"`
	HistoryCapacity int           `yaml:"history_capacity"`
	Seed            int64         `yaml:"seed"`
	Safety          SafetyConfig  `yaml:"safety"`
	Admin           AdminConfig   `yaml:"admin"`
	Sinks           SinkConfig    `yaml:"sinks"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MachineID:       "edu-demo-01",
		TickInterval:    Duration(100 * time.Millisecond),
		HistoryCapacity: 1000,
		Safety: SafetyConfig{
			SafeMode:       true,
			MaxCommandRate: 10,
		},
		Admin: AdminConfig{Listen: ":8080"},
		Sinks: SinkConfig{GreptimeDatabase: "public"},
	}
}

// Load reads a YAML config, validates it against the CUE schema, and
// fills in defaults for omitted fields.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = Duration(100 * time.Millisecond)
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = 1000
	}
	return cfg, nil
}

// ValidateWithCue validates a YAML configuration file using a CUE schema file.
func ValidateWithCue(configFile, cueFile string) error {
	ctx := cuecontext.New()

	yamlBytes, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("cannot read YAML config: %w", err)
	}
	configAst, err := cueyaml.Extract(configFile, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(configAst)

	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("cannot read CUE schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaBytes)

	final := configVal.Unify(schemaVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}
	if err := final.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
