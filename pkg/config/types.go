package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent rsum configuration stored as config.toml
// in the .rsum/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Model       ModelConfig       `toml:"model"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Dataset     DatasetConfig     `toml:"dataset"`
	Log         LogConfig         `toml:"log"`
	API         APIConfig         `toml:"api"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// ModelConfig holds the model endpoint and decoding settings.
type ModelConfig struct {
	Provider    string  `toml:"provider,omitempty"`
	Target      string  `toml:"target,omitempty"`
	Name        string  `toml:"name,omitempty"`
	APIKey      string  `toml:"api_key,omitempty"`
	Temperature float64 `toml:"temperature"`
	Seed        int     `toml:"seed"`
	NumCtx      int     `toml:"num_ctx,omitempty"`
	Stream      bool    `toml:"stream"`

	// Timeout bounds one model call, as a Go duration string ("5m").
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (m ModelConfig) TimeoutDuration() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid model.timeout: %w", err)
	}
	return d, nil
}

// PipelineConfig holds memory pipeline settings.
type PipelineConfig struct {
	Variant           string `toml:"variant,omitempty"`
	DraftStyle        string `toml:"draft_style,omitempty"`
	Strict            bool   `toml:"strict"`
	VerifyConcurrency int    `toml:"verify_concurrency,omitempty"`
	NoiseThreshold    int    `toml:"noise_threshold,omitempty"`
}

// DatasetConfig lists dataset files used when `rsum run` gets no arguments.
type DatasetConfig struct {
	Files []string `toml:"files,omitempty"`
}

// LogConfig holds transcript and log output settings.
type LogConfig struct {
	Dir  string `toml:"dir,omitempty"`
	JSON bool   `toml:"json"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen    string `toml:"listen,omitempty"`
	Workers   uint   `toml:"workers,omitempty"`
	QueueSize uint   `toml:"queue_size,omitempty"`
}

// EventStreamConfig holds stage event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func parseInt(key, v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = n
	return nil
}

func parseUint(key, v string, dst *uint) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = uint(n)
	return nil
}

func parseBool(key, v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = b
	return nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"model.provider": {
		get: func(c *Config) string { return c.Model.Provider },
		set: func(c *Config, v string) error { c.Model.Provider = v; return nil },
	},
	"model.target": {
		get: func(c *Config) string { return c.Model.Target },
		set: func(c *Config, v string) error { c.Model.Target = v; return nil },
	},
	"model.name": {
		get: func(c *Config) string { return c.Model.Name },
		set: func(c *Config, v string) error { c.Model.Name = v; return nil },
	},
	"model.api_key": {
		get: func(c *Config) string { return c.Model.APIKey },
		set: func(c *Config, v string) error { c.Model.APIKey = v; return nil },
	},
	"model.temperature": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Model.Temperature, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for model.temperature: %w", err)
			}
			c.Model.Temperature = f
			return nil
		},
	},
	"model.seed": {
		get: func(c *Config) string { return strconv.Itoa(c.Model.Seed) },
		set: func(c *Config, v string) error { return parseInt("model.seed", v, &c.Model.Seed) },
	},
	"model.num_ctx": {
		get: func(c *Config) string { return intString(c.Model.NumCtx) },
		set: func(c *Config, v string) error { return parseInt("model.num_ctx", v, &c.Model.NumCtx) },
	},
	"model.stream": {
		get: func(c *Config) string { return strconv.FormatBool(c.Model.Stream) },
		set: func(c *Config, v string) error { return parseBool("model.stream", v, &c.Model.Stream) },
	},
	"model.timeout": {
		get: func(c *Config) string { return c.Model.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for model.timeout: %w", err)
			}
			c.Model.Timeout = v
			return nil
		},
	},
	"pipeline.variant": {
		get: func(c *Config) string { return c.Pipeline.Variant },
		set: func(c *Config, v string) error { c.Pipeline.Variant = v; return nil },
	},
	"pipeline.draft_style": {
		get: func(c *Config) string { return c.Pipeline.DraftStyle },
		set: func(c *Config, v string) error { c.Pipeline.DraftStyle = v; return nil },
	},
	"pipeline.strict": {
		get: func(c *Config) string { return strconv.FormatBool(c.Pipeline.Strict) },
		set: func(c *Config, v string) error { return parseBool("pipeline.strict", v, &c.Pipeline.Strict) },
	},
	"pipeline.verify_concurrency": {
		get: func(c *Config) string { return intString(c.Pipeline.VerifyConcurrency) },
		set: func(c *Config, v string) error {
			return parseInt("pipeline.verify_concurrency", v, &c.Pipeline.VerifyConcurrency)
		},
	},
	"pipeline.noise_threshold": {
		get: func(c *Config) string { return intString(c.Pipeline.NoiseThreshold) },
		set: func(c *Config, v string) error {
			return parseInt("pipeline.noise_threshold", v, &c.Pipeline.NoiseThreshold)
		},
	},
	"dataset.files": {
		get: func(c *Config) string { return strings.Join(c.Dataset.Files, ",") },
		set: func(c *Config, v string) error { c.Dataset.Files = splitList(v); return nil },
	},
	"log.dir": {
		get: func(c *Config) string { return c.Log.Dir },
		set: func(c *Config, v string) error { c.Log.Dir = v; return nil },
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error { return parseBool("log.json", v, &c.Log.JSON) },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.workers": {
		get: func(c *Config) string { return strconv.FormatUint(uint64(c.API.Workers), 10) },
		set: func(c *Config, v string) error { return parseUint("api.workers", v, &c.API.Workers) },
	},
	"api.queue_size": {
		get: func(c *Config) string { return strconv.FormatUint(uint64(c.API.QueueSize), 10) },
		set: func(c *Config, v string) error { return parseUint("api.queue_size", v, &c.API.QueueSize) },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.Brokers = splitList(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}
