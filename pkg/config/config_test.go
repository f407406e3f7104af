package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/pkg/config"
)

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file", func() {
			data := `version = 0

[model]
provider = "openai"
target = "https://api.openai.com/v1"
name = "gpt-4o-mini"

[pipeline]
verify_concurrency = 4
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model.Provider).To(Equal("openai"))
			Expect(cfg.Model.Target).To(Equal("https://api.openai.com/v1"))
			Expect(cfg.Model.Name).To(Equal("gpt-4o-mini"))
			Expect(cfg.Pipeline.VerifyConcurrency).To(Equal(4))
		})

		It("loads all config fields", func() {
			data := `version = 0

[model]
provider = "ollama"
target = "http://gpu-box:11434"
name = "llama3.1:8b"
temperature = 0.2
seed = 7
num_ctx = 8192
stream = true
timeout = "90s"

[pipeline]
variant = "rsum"
draft_style = "tagged"
strict = true
verify_concurrency = 2
noise_threshold = 10

[dataset]
files = ["sessions.json", "extra.yaml"]

[log]
dir = "/tmp/rsum-logs"
json = true

[api]
listen = ":9000"
workers = 3
queue_size = 16

[eventstream]
provider = "kafka"
brokers = ["kafka-1:9092", "kafka-2:9092"]
topic = "memory.stages"
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model).To(Equal(config.ModelConfig{
				Provider:    "ollama",
				Target:      "http://gpu-box:11434",
				Name:        "llama3.1:8b",
				Temperature: 0.2,
				Seed:        7,
				NumCtx:      8192,
				Stream:      true,
				Timeout:     "90s",
			}))
			Expect(cfg.Pipeline).To(Equal(config.PipelineConfig{
				Variant:           "rsum",
				DraftStyle:        "tagged",
				Strict:            true,
				VerifyConcurrency: 2,
				NoiseThreshold:    10,
			}))
			Expect(cfg.Dataset.Files).To(Equal([]string{"sessions.json", "extra.yaml"}))
			Expect(cfg.Log).To(Equal(config.LogConfig{Dir: "/tmp/rsum-logs", JSON: true}))
			Expect(cfg.API).To(Equal(config.APIConfig{Listen: ":9000", Workers: 3, QueueSize: 16}))
			Expect(cfg.EventStream.Provider).To(Equal("kafka"))
			Expect(cfg.EventStream.Brokers).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
			Expect(cfg.EventStream.Topic).To(Equal("memory.stages"))
		})

		It("returns error for malformed TOML", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid toml [[["), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(cfg).To(BeNil())
		})

		It("returns error for unsupported config version", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 99\n"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported config version"))
			Expect(cfg).To(BeNil())
		})

		It("fills in defaults for unset fields in a partial config", func() {
			data := `[pipeline]
variant = "rsum"
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Pipeline.Variant).To(Equal("rsum"))
			Expect(cfg.Pipeline.DraftStyle).To(Equal(defaults.Pipeline.DraftStyle))
			Expect(cfg.Pipeline.VerifyConcurrency).To(Equal(defaults.Pipeline.VerifyConcurrency))
			Expect(cfg.Pipeline.NoiseThreshold).To(Equal(defaults.Pipeline.NoiseThreshold))
			Expect(cfg.Model.Provider).To(Equal(defaults.Model.Provider))
			Expect(cfg.Model.Target).To(Equal(defaults.Model.Target))
			Expect(cfg.Model.Name).To(Equal(defaults.Model.Name))
			Expect(cfg.Model.Timeout).To(Equal(defaults.Model.Timeout))
			Expect(cfg.Log.Dir).To(Equal(defaults.Log.Dir))
			Expect(cfg.API).To(Equal(defaults.API))
			Expect(cfg.EventStream.Provider).To(Equal(defaults.EventStream.Provider))
			Expect(cfg.EventStream.Topic).To(Equal(defaults.EventStream.Topic))
		})
	})

	Describe("SaveConfig", func() {
		It("persists config to disk", func() {
			cfg := config.NewDefaultConfig()
			cfg.Model.Name = "qwen2.5:14b"
			cfg.Pipeline.Strict = true

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(cfg)).To(Succeed())

			_, err = os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).NotTo(Succeed())
		})
	})

	Describe("SetConfigValue", func() {
		It("sets a string config key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SetConfigValue("model.name", "mistral:7b")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model.Name).To(Equal("mistral:7b"))
		})

		It("sets numeric and boolean keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SetConfigValue("model.temperature", "0.7")).To(Succeed())
			Expect(c.SetConfigValue("pipeline.verify_concurrency", "8")).To(Succeed())
			Expect(c.SetConfigValue("api.queue_size", "128")).To(Succeed())
			Expect(c.SetConfigValue("pipeline.strict", "true")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model.Temperature).To(Equal(0.7))
			Expect(cfg.Pipeline.VerifyConcurrency).To(Equal(8))
			Expect(cfg.API.QueueSize).To(Equal(uint(128)))
			Expect(cfg.Pipeline.Strict).To(BeTrue())
		})

		It("splits comma separated list keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SetConfigValue("eventstream.brokers", "a:9092, b:9092,,")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.EventStream.Brokers).To(Equal([]string{"a:9092", "b:9092"}))

			val, err := c.GetConfigValue("eventstream.brokers")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("a:9092,b:9092"))
		})

		It("returns error for unknown key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = c.SetConfigValue("nonexistent_key", "value")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown config key"))
		})

		It("returns error for invalid values", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = c.SetConfigValue("api.workers", "not-a-number")
			Expect(err).To(MatchError(ContainSubstring("invalid value")))

			err = c.SetConfigValue("model.timeout", "soon")
			Expect(err).To(MatchError(ContainSubstring("invalid value")))

			err = c.SetConfigValue("model.stream", "maybe")
			Expect(err).To(MatchError(ContainSubstring("invalid value")))
		})

		It("preserves existing values when setting a new key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SetConfigValue("model.provider", "openai")).To(Succeed())
			Expect(c.SetConfigValue("model.target", "https://api.openai.com/v1")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model.Provider).To(Equal("openai"))
			Expect(cfg.Model.Target).To(Equal("https://api.openai.com/v1"))
		})
	})

	Describe("GetConfigValue", func() {
		It("returns default value when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			val, err := c.GetConfigValue("pipeline.variant")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("cove"))

			val, err = c.GetConfigValue("api.workers")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("1"))
		})

		It("returns empty string for key with no default", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			val, err := c.GetConfigValue("model.api_key")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())

			val, err = c.GetConfigValue("model.num_ctx")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})

		It("returns error for unknown key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.GetConfigValue("proxy.upstream")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("ValidConfigKeys", func() {
		It("returns keys in section order", func() {
			keys := config.ValidConfigKeys()
			Expect(keys[0]).To(Equal("model.provider"))
			Expect(keys).To(ContainElements(
				"model.timeout",
				"pipeline.variant",
				"pipeline.draft_style",
				"dataset.files",
				"log.dir",
				"api.queue_size",
				"eventstream.brokers",
			))
			Expect(keys).To(Equal(config.ValidConfigKeys()))
		})
	})

	Describe("IsValidConfigKey", func() {
		It("accepts dotted keys only", func() {
			Expect(config.IsValidConfigKey("pipeline.strict")).To(BeTrue())
			Expect(config.IsValidConfigKey("strict")).To(BeFalse())
			Expect(config.IsValidConfigKey("")).To(BeFalse())
		})
	})
})

var _ = Describe("PresetConfig", func() {
	It("returns the ollama preset as the defaults", func() {
		cfg, err := config.PresetConfig("ollama")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.NewDefaultConfig()))
	})

	It("returns the openai preset", func() {
		cfg, err := config.PresetConfig("OpenAI")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model.Provider).To(Equal("openai"))
		Expect(cfg.Model.Target).To(Equal("https://api.openai.com/v1"))
		Expect(cfg.Model.Name).To(Equal("gpt-4o-mini"))
		Expect(cfg.Pipeline.Variant).To(Equal("cove"))
	})

	It("returns the anthropic preset", func() {
		cfg, err := config.PresetConfig("anthropic")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model.Provider).To(Equal("anthropic"))
		Expect(cfg.Model.Target).To(Equal("https://api.anthropic.com"))
	})

	It("leaves the vertex target to the SDK", func() {
		cfg, err := config.PresetConfig("vertex")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model.Provider).To(Equal("vertex"))
		Expect(cfg.Model.Target).To(BeEmpty())
	})

	It("returns error for unknown preset", func() {
		cfg, err := config.PresetConfig("nonexistent")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
		Expect(cfg).To(BeNil())
	})

	It("lists the preset names", func() {
		Expect(config.ValidPresetNames()).To(ConsistOf("ollama", "openai", "anthropic", "vertex"))
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("returns empty config for empty input", func() {
		cfg, err := config.ParseConfigTOML([]byte(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model.Provider).To(BeEmpty())
	})

	It("rejects unsupported config version", func() {
		cfg, err := config.ParseConfigTOML([]byte("version = 2\n"))
		Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
		Expect(cfg).To(BeNil())
	})
})

var _ = Describe("NewDefaultConfig", func() {
	It("returns fully-populated defaults", func() {
		cfg := config.NewDefaultConfig()
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Model.Provider).To(Equal("ollama"))
		Expect(cfg.Model.Target).To(Equal("http://localhost:11434"))
		Expect(cfg.Model.Name).To(Equal("gpt-oss:20b"))
		Expect(cfg.Model.Temperature).To(BeZero())
		Expect(cfg.Model.Seed).To(BeZero())
		Expect(cfg.Pipeline.Variant).To(Equal("cove"))
		Expect(cfg.Pipeline.DraftStyle).To(Equal("plain"))
		Expect(cfg.Pipeline.Strict).To(BeFalse())
		Expect(cfg.Pipeline.VerifyConcurrency).To(Equal(1))
		Expect(cfg.Pipeline.NoiseThreshold).To(Equal(5))
		Expect(cfg.Log.Dir).To(Equal("logs"))
		Expect(cfg.EventStream.Provider).To(Equal("none"))
	})

	It("parses the model timeout", func() {
		d, err := config.NewDefaultConfig().Model.TimeoutDuration()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(10 * time.Minute))

		d, err = config.ModelConfig{}.TimeoutDuration()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeZero())

		_, err = config.ModelConfig{Timeout: "later"}.TimeoutDuration()
		Expect(err).To(HaveOccurred())
	})
})
