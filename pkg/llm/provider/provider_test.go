package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/pkg/llm/provider"
)

var _ = Describe("New", func() {
	DescribeTable("selects the client by name",
		func(name string) {
			client, err := provider.New(provider.Config{Provider: name, APIKey: "test-key"})
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Name()).To(Equal(name))
		},
		Entry("ollama", provider.Ollama),
		Entry("openai", provider.OpenAI),
		Entry("anthropic", provider.Anthropic),
		Entry("vertex", provider.Vertex),
	)

	It("rejects an unknown provider", func() {
		_, err := provider.New(provider.Config{Provider: "bedrock"})
		Expect(err).To(MatchError(provider.ErrUnknownProvider))
		Expect(err.Error()).To(ContainSubstring(`"bedrock"`))
	})

	It("lists the supported providers", func() {
		Expect(provider.SupportedProviders()).To(ConsistOf("ollama", "openai", "anthropic", "vertex"))
	})

	It("knows each provider's default target", func() {
		Expect(provider.DefaultTarget(provider.Ollama)).To(Equal("http://localhost:11434"))
		Expect(provider.DefaultTarget(provider.OpenAI)).To(Equal("https://api.openai.com/v1"))
		Expect(provider.DefaultTarget(provider.Anthropic)).To(Equal("https://api.anthropic.com"))
		Expect(provider.DefaultTarget(provider.Vertex)).To(BeEmpty())
		Expect(provider.DefaultTarget("nope")).To(BeEmpty())
	})
})

var _ = Describe("ResolveTarget", func() {
	It("keeps an explicit target", func() {
		Expect(provider.ResolveTarget(provider.OpenAI, "https://llm.internal/v1")).To(Equal("https://llm.internal/v1"))
		Expect(provider.ResolveTarget(provider.Ollama, "http://gpu-box:11434")).To(Equal("http://gpu-box:11434"))
	})

	It("fills in the provider default for an empty target", func() {
		Expect(provider.ResolveTarget(provider.Anthropic, "")).To(Equal("https://api.anthropic.com"))
	})

	It("replaces the ollama default for other providers", func() {
		Expect(provider.ResolveTarget(provider.OpenAI, "http://localhost:11434")).To(Equal("https://api.openai.com/v1"))
		Expect(provider.ResolveTarget(provider.Ollama, "http://localhost:11434")).To(Equal("http://localhost:11434"))
	})
})
