package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/rsum/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the RSUM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RSUM_MODEL_NAME, RSUM_PIPELINE_STRICT, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: RSUM_MODEL_NAME, RSUM_MODEL_API_KEY, etc.
	v.SetEnvPrefix("RSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Model
	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.target", d.Model.Target)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.api_key", d.Model.APIKey)
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.seed", d.Model.Seed)
	v.SetDefault("model.num_ctx", d.Model.NumCtx)
	v.SetDefault("model.stream", d.Model.Stream)
	v.SetDefault("model.timeout", d.Model.Timeout)

	// Pipeline
	v.SetDefault("pipeline.variant", d.Pipeline.Variant)
	v.SetDefault("pipeline.draft_style", d.Pipeline.DraftStyle)
	v.SetDefault("pipeline.strict", d.Pipeline.Strict)
	v.SetDefault("pipeline.verify_concurrency", d.Pipeline.VerifyConcurrency)
	v.SetDefault("pipeline.noise_threshold", d.Pipeline.NoiseThreshold)

	// Dataset
	v.SetDefault("dataset.files", d.Dataset.Files)

	// Log
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.json", d.Log.JSON)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.workers", d.API.Workers)
	v.SetDefault("api.queue_size", d.API.QueueSize)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}

// FromViper resolves a Config from v, so flag, env and file values all land
// in one struct after BindRegisteredFlags has run.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Model: ModelConfig{
			Provider:    v.GetString("model.provider"),
			Target:      v.GetString("model.target"),
			Name:        v.GetString("model.name"),
			APIKey:      v.GetString("model.api_key"),
			Temperature: v.GetFloat64("model.temperature"),
			Seed:        v.GetInt("model.seed"),
			NumCtx:      v.GetInt("model.num_ctx"),
			Stream:      v.GetBool("model.stream"),
			Timeout:     v.GetString("model.timeout"),
		},
		Pipeline: PipelineConfig{
			Variant:           v.GetString("pipeline.variant"),
			DraftStyle:        v.GetString("pipeline.draft_style"),
			Strict:            v.GetBool("pipeline.strict"),
			VerifyConcurrency: v.GetInt("pipeline.verify_concurrency"),
			NoiseThreshold:    v.GetInt("pipeline.noise_threshold"),
		},
		Dataset: DatasetConfig{
			Files: v.GetStringSlice("dataset.files"),
		},
		Log: LogConfig{
			Dir:  v.GetString("log.dir"),
			JSON: v.GetBool("log.json"),
		},
		API: APIConfig{
			Listen:    v.GetString("api.listen"),
			Workers:   v.GetUint("api.workers"),
			QueueSize: v.GetUint("api.queue_size"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetStringSlice("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
	}
}
