package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// on "rsum run" and "rsum serve" cannot drift apart.
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "model.name").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider          = "provider"
	FlagTarget            = "target"
	FlagModel             = "model"
	FlagAPIKey            = "api-key"
	FlagTemperature       = "temperature"
	FlagSeed              = "seed"
	FlagNumCtx            = "num-ctx"
	FlagStream            = "stream"
	FlagTimeout           = "timeout"
	FlagVariant           = "variant"
	FlagDraftStyle        = "draft-style"
	FlagStrict            = "strict"
	FlagVerifyConcurrency = "verify-concurrency"
	FlagNoiseThreshold    = "noise-threshold"
	FlagLogDir            = "log-dir"
	FlagLogJSON           = "log-json"
	FlagListen            = "listen"
	FlagWorkers           = "workers"
	FlagQueueSize         = "queue-size"
	FlagEventStream       = "eventstream"
	FlagKafkaBrokers      = "kafka-brokers"
	FlagKafkaTopic        = "kafka-topic"
)

// RsumFlags is the registry shared by every rsum command.
var RsumFlags = FlagSet{
	FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "model.provider",
		Description: "Model provider (ollama, openai, anthropic, vertex)",
	},
	FlagTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "model.target",
		Description: "Model endpoint base URL",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "model.name",
		Description: "Model name used for every stage",
	},
	FlagAPIKey: {
		Name:        "api-key",
		ViperKey:    "model.api_key",
		Description: "API key for hosted providers",
	},
	FlagTemperature: {
		Name:        "temperature",
		ViperKey:    "model.temperature",
		Description: "Sampling temperature",
	},
	FlagSeed: {
		Name:        "seed",
		ViperKey:    "model.seed",
		Description: "Sampling seed",
	},
	FlagNumCtx: {
		Name:        "num-ctx",
		ViperKey:    "model.num_ctx",
		Description: "Context window size hint (0 leaves the provider default)",
	},
	FlagStream: {
		Name:        "stream",
		ViperKey:    "model.stream",
		Description: "Stream model output to the console as it is generated",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "model.timeout",
		Description: "Per-call model timeout (e.g. 5m)",
	},
	FlagVariant: {
		Name:        "variant",
		ViperKey:    "pipeline.variant",
		Description: "Pipeline variant (cove, rsum)",
	},
	FlagDraftStyle: {
		Name:        "draft-style",
		ViperKey:    "pipeline.draft_style",
		Description: "Memory draft style (plain, tagged)",
	},
	FlagStrict: {
		Name:        "strict",
		ViperKey:    "pipeline.strict",
		Description: "Fail the run on the first model call error",
	},
	FlagVerifyConcurrency: {
		Name:        "verify-concurrency",
		ViperKey:    "pipeline.verify_concurrency",
		Description: "Number of verification questions answered in parallel",
	},
	FlagNoiseThreshold: {
		Name:        "noise-threshold",
		ViperKey:    "pipeline.noise_threshold",
		Description: "Deltas shorter than this many characters are treated as empty",
	},
	FlagLogDir: {
		Name:        "log-dir",
		ViperKey:    "log.dir",
		Description: "Directory for run transcripts",
	},
	FlagLogJSON: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Emit console logs as JSON",
	},
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	FlagWorkers: {
		Name:        "workers",
		ViperKey:    "api.workers",
		Description: "Number of runs executed concurrently",
	},
	FlagQueueSize: {
		Name:        "queue-size",
		ViperKey:    "api.queue_size",
		Description: "Maximum number of queued runs",
	},
	FlagEventStream: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Stage event publisher (none, kafka)",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Kafka broker addresses",
	},
	FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for stage events",
	},
}

// ModelFlags are the registry keys shared by every command that calls a model.
var ModelFlags = []string{
	FlagProvider,
	FlagTarget,
	FlagModel,
	FlagAPIKey,
	FlagTemperature,
	FlagSeed,
	FlagNumCtx,
	FlagStream,
	FlagTimeout,
}

// PipelineFlags are the registry keys for pipeline and event settings.
var PipelineFlags = []string{
	FlagVariant,
	FlagDraftStyle,
	FlagStrict,
	FlagVerifyConcurrency,
	FlagNoiseThreshold,
	FlagEventStream,
	FlagKafkaBrokers,
	FlagKafkaTopic,
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a string slice flag on cmd from the given FlagSet.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, key string, target *[]string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *float64) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddRegisteredFlags registers every registry key on cmd, typed after the
// key's default value. Commands that read values back through viper use this
// instead of binding each flag to a local variable.
func AddRegisteredFlags(cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	d := defaults()
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok || cmd.Flags().Lookup(def.Name) != nil {
			continue
		}

		switch d.Get(def.ViperKey).(type) {
		case []string:
			AddStringSliceFlag(cmd, fs, registryKey, new([]string))
		case uint:
			AddUintFlag(cmd, fs, registryKey, new(uint))
		case int:
			AddIntFlag(cmd, fs, registryKey, new(int))
		case float64:
			AddFloatFlag(cmd, fs, registryKey, new(float64))
		case bool:
			AddBoolFlag(cmd, fs, registryKey, new(bool))
		default:
			AddStringFlag(cmd, fs, registryKey, new(string))
		}
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
