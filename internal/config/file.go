package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults holds the search settings a configuration file may provide.
// Zero values leave the corresponding Config field untouched.
type Defaults struct {
	// Region is the DuckDuckGo region code, e.g. "us-en".
	Region string `yaml:"region,omitempty"`

	// TimeRange is one of day, week, month or year.
	TimeRange string `yaml:"timeRange,omitempty"`

	// MaxResults caps the results per query.
	MaxResults int `yaml:"maxResults,omitempty"`

	// Retries is the number of attempts per query.
	Retries int `yaml:"retries,omitempty"`

	// Timeout is the per-attempt timeout as a Go duration string ("15s").
	Timeout Duration `yaml:"timeout,omitempty"`

	// ProxyFile is the path of a proxy list.
	ProxyFile string `yaml:"proxyFile,omitempty"`

	// UserAgent replaces the default User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .duckfetch configuration file.
type File struct {
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// ApplyTo copies every non-zero default into cfg.
func (f *File) ApplyTo(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}

	d := f.Defaults
	if d.Region != "" {
		cfg.Region = d.Region
	}
	if d.TimeRange != "" {
		cfg.TimeRange = d.TimeRange
	}
	if d.MaxResults != 0 {
		cfg.MaxResults = d.MaxResults
	}
	if d.Retries != 0 {
		cfg.Retries = d.Retries
	}
	if d.Timeout != 0 {
		cfg.Timeout = time.Duration(d.Timeout)
	}
	if d.ProxyFile != "" {
		cfg.ProxyFile = d.ProxyFile
	}
	if d.UserAgent != "" {
		cfg.UserAgent = d.UserAgent
	}
}

// Duration is a time.Duration read from YAML as a string such as "15s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
