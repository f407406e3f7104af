package mcp_test

import (
	"context"
	"encoding/json"
	"errors"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/api/mcp"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/pipeline"
	"github.com/papercomputeco/rsum/pkg/prompt"
	"github.com/papercomputeco/rsum/pkg/runner"
	testutils "github.com/papercomputeco/rsum/pkg/utils/test"
)

// connect wires an in-memory client session to the server.
func connect(ctx context.Context, server *mcp.Server) *sdk.ClientSession {
	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	_, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	Expect(err).NotTo(HaveOccurred())

	client := sdk.NewClient(&sdk.Implementation{Name: "rsum-test", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(session.Close)
	return session
}

func textOf(res *sdk.CallToolResult) string {
	Expect(res.Content).To(HaveLen(1))
	text, ok := res.Content[0].(*sdk.TextContent)
	Expect(ok).To(BeTrue())
	return text.Text
}

var _ = Describe("MCP Server", func() {
	var (
		ctx    context.Context
		gen    *testutils.ScriptedGenerator
		server *mcp.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		gen = testutils.NewScriptedGenerator().
			On(prompt.StageDraft, "User lives in Oslo.").
			On(prompt.StageDelta, prompt.NoChanges).
			On(prompt.StageResponse, "You live in Oslo.")

		cove, err := pipeline.New(&pipeline.Config{Generator: gen, Variant: pipeline.VariantCoVe})
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{
			Executors: map[pipeline.Variant]runner.Executor{pipeline.VariantCoVe: cove},
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when no executor is configured", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("executor is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Executors: map[pipeline.Variant]runner.Executor{pipeline.VariantCoVe: nil},
			})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("builds an empty server in noop mode", func() {
			noop, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop.Handler()).NotTo(BeNil())
		})

		It("exposes an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("reconstruct_memory", func() {
		It("is listed as a tool", func() {
			session := connect(ctx, server)

			tools, err := session.ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools.Tools).To(HaveLen(1))
			Expect(tools.Tools[0].Name).To(Equal("reconstruct_memory"))
		})

		It("runs the pipeline and returns memory, response, and outcomes", func() {
			session := connect(ctx, server)

			res, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name: "reconstruct_memory",
				Arguments: map[string]any{
					"sessions":        [][]string{{"User: I moved to Oslo.", "Assistant: Nice!"}},
					"current_context": []string{"User: Where do I live?"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			var out mcp.ReconstructOutput
			Expect(json.Unmarshal([]byte(textOf(res)), &out)).To(Succeed())
			Expect(out.Variant).To(Equal("cove"))
			Expect(out.Memory).To(Equal("User lives in Oslo."))
			Expect(out.Response).To(Equal("You live in Oslo."))
			Expect(out.Sessions).To(Equal([]mcp.SessionOutcome{
				{Session: 1, Outcome: string(pipeline.OutcomeNoDelta)},
			}))
		})

		It("answers once with no sessions when sessions is omitted", func() {
			session := connect(ctx, server)

			res, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name:      "reconstruct_memory",
				Arguments: map[string]any{"current_context": []string{"User: Hello?"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			var out mcp.ReconstructOutput
			Expect(json.Unmarshal([]byte(textOf(res)), &out)).To(Succeed())
			Expect(out.Memory).To(Equal(prompt.EmptyMemory))
			Expect(out.Sessions).To(BeEmpty())
			Expect(gen.Stages()).To(Equal([]prompt.Stage{prompt.StageResponse}))
		})

		It("reports an omitted current context as a tool error", func() {
			session := connect(ctx, server)

			res, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name:      "reconstruct_memory",
				Arguments: map[string]any{},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring("current_context is required"))
			Expect(gen.Prompts()).To(BeEmpty())
		})

		It("reports a missing current context as a tool error", func() {
			session := connect(ctx, server)

			res, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name:      "reconstruct_memory",
				Arguments: map[string]any{"sessions": [][]string{}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring("current_context is required"))
			Expect(gen.Prompts()).To(BeEmpty())
		})

		It("reports unserved variants as a tool error", func() {
			session := connect(ctx, server)

			res, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name: "reconstruct_memory",
				Arguments: map[string]any{
					"current_context": []string{"User: hi"},
					"variant":         "rsum",
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring("not served"))
		})

		It("reports pipeline failures as a tool error", func() {
			gen.Fail[prompt.StageResponse] = errors.New("boom")
			broken, err := pipeline.New(&pipeline.Config{Generator: gen})
			Expect(err).NotTo(HaveOccurred())

			failing, err := mcp.NewServer(mcp.Config{
				Executors: map[pipeline.Variant]runner.Executor{pipeline.VariantCoVe: broken},
				Logger:    logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())
			session := connect(ctx, failing)

			res, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name:      "reconstruct_memory",
				Arguments: map[string]any{"current_context": []string{"User: hi"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring("Reconstruction failed"))
		})
	})
})
