package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// duration decodes either a duration string ("750ms", "5s") or a plain
// number of seconds.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var secs float64
	if err := value.Decode(&secs); err == nil {
		*d = duration(secs * float64(time.Second))

		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = duration(parsed)

	return nil
}

// FileConfig is the optional YAML defaults file loaded with --config. Every
// field can still be overridden by environment variables and flags.
type FileConfig struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Format is the output layout (pretty, terse).
	Format string `yaml:"format"`

	// BytesFormat is the byte scaling base (decimal, binary).
	BytesFormat string `yaml:"bytes_format"`

	// Timer is the measurement clock (os, tsc).
	Timer string `yaml:"timer"`

	// Sort and Sortr are the ordering attribute; Sortr wins and flips the
	// direction, like the flags.
	Sort  string `yaml:"sort"`
	Sortr string `yaml:"sortr"`

	// SampleCount and SampleSize pin the sampling shape; zero auto-tunes.
	SampleCount uint32 `yaml:"sample_count"`
	SampleSize  uint32 `yaml:"sample_size"`

	// MinTime and MaxTime bound time spent per benchmark. Duration strings
	// ("750ms", "5s") or plain seconds; the flags take plain seconds.
	MinTime duration `yaml:"min_time"`
	MaxTime duration `yaml:"max_time"`

	// SkipExtTime counts only in-body time toward the time bounds.
	SkipExtTime *bool `yaml:"skip_ext_time"`

	// Skip patterns are appended to the --skip flags.
	Skip []string `yaml:"skip"`
}

// LoadFileConfig reads and parses a YAML defaults file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := &FileConfig{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}
