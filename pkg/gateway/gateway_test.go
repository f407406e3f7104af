package gateway_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/rsum/pkg/gateway"
	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/prompt"
	testutils "github.com/papercomputeco/rsum/pkg/utils/test"
)

var _ = Describe("Gateway", func() {
	var (
		client *testutils.MockClient
		m      *metrics.Metrics
		p      prompt.Prompt
	)

	BeforeEach(func() {
		client = testutils.NewMockClient("  User enjoys hiking.\n")
		m = metrics.New()
		p = prompt.MemoryDraft(prompt.DraftPlain, "none", "User: I hike every weekend.", 1)
	})

	It("sends system then user with deterministic options and trims the reply", func() {
		g := gateway.New(&gateway.Config{Client: client, Model: "gemma3:27b", Metrics: m})

		out, err := g.Generate(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("User enjoys hiking."))

		reqs := client.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("gemma3:27b"))
		Expect(reqs[0].Stream).To(BeFalse())
		Expect(reqs[0].Options).To(Equal(llm.Options{Temperature: 0, Seed: 0}))
		Expect(reqs[0].Messages).To(Equal([]llm.Message{
			{Role: llm.RoleSystem, Content: p.System},
			{Role: llm.RoleUser, Content: p.User},
		}))
		Expect(testutil.ToFloat64(m.ModelCalls.WithLabelValues("draft", metrics.OutcomeOK))).To(Equal(1.0))
	})

	It("streams chunks to the writer and still returns the full text", func() {
		var out bytes.Buffer
		g := gateway.New(&gateway.Config{Client: client, Stream: true, StreamWriter: &out})

		text, err := g.Generate(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("User enjoys hiking."))
		Expect(client.Requests()[0].Stream).To(BeTrue())
		Expect(out.String()).To(ContainSubstring("User enjoys hiking."))
	})

	Context("when the call fails", func() {
		BeforeEach(func() {
			client.Reply = func(*llm.ChatRequest) (string, error) {
				return "", errors.New("connection refused")
			}
		})

		It("returns the error marker as content in lenient mode", func() {
			g := gateway.New(&gateway.Config{Client: client, Metrics: m})

			out, err := g.Generate(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("LLM call error: connection refused"))
			Expect(gateway.IsErrorMarker(out)).To(BeTrue())
			Expect(testutil.ToFloat64(m.ModelCalls.WithLabelValues("draft", metrics.OutcomeError))).To(Equal(1.0))
		})

		It("returns ErrModelCall in strict mode", func() {
			g := gateway.New(&gateway.Config{Client: client, Strict: true})
			Expect(g.Strict()).To(BeTrue())

			out, err := g.Generate(context.Background(), p)
			Expect(out).To(BeEmpty())
			Expect(err).To(MatchError(gateway.ErrModelCall))
			Expect(err.Error()).To(ContainSubstring("Memory Generation (S1)"))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})
	})

	It("logs prompts at debug and responses at info", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		g := gateway.New(&gateway.Config{Client: client, Logger: l})

		_, err := g.Generate(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring("level=DEBUG"))
		Expect(lines[0]).To(ContainSubstring("Memory Generation (S1)"))
		Expect(lines[1]).To(ContainSubstring("level=INFO"))
		Expect(lines[1]).To(ContainSubstring("User enjoys hiking."))
	})
})
