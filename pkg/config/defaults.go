package config

const (
	defaultProvider = "ollama"
	defaultTarget   = "http://localhost:11434"
	defaultModel    = "gpt-oss:20b"
	defaultTimeout  = "10m"

	defaultVariant           = "cove"
	defaultDraftStyle        = "plain"
	defaultVerifyConcurrency = 1
	defaultNoiseThreshold    = 5

	defaultLogDir = "logs"

	defaultAPIListen    = ":8090"
	defaultAPIWorkers   = 1
	defaultAPIQueueSize = 64

	defaultEventStreamProvider = "none"
	defaultEventStreamTopic    = "rsum.stages"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Temperature and
// seed default to zero for reproducible decoding.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Model: ModelConfig{
			Provider: defaultProvider,
			Target:   defaultTarget,
			Name:     defaultModel,
			Timeout:  defaultTimeout,
		},
		Pipeline: PipelineConfig{
			Variant:           defaultVariant,
			DraftStyle:        defaultDraftStyle,
			VerifyConcurrency: defaultVerifyConcurrency,
			NoiseThreshold:    defaultNoiseThreshold,
		},
		Log: LogConfig{
			Dir: defaultLogDir,
		},
		API: APIConfig{
			Listen:    defaultAPIListen,
			Workers:   defaultAPIWorkers,
			QueueSize: defaultAPIQueueSize,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
