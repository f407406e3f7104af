package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Client", func() {
	var (
		server   *httptest.Server
		received map[string]any
		handler  http.HandlerFunc
	)

	BeforeEach(func() {
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	newClient := func() *openai.Client {
		return openai.New(server.URL+"/v1", "test-key", 0)
	}

	request := func(stream bool) *llm.ChatRequest {
		return &llm.ChatRequest{
			Model: "gpt-4o-mini",
			Messages: []llm.Message{
				llm.NewSystemMessage("You are a fact checker."),
				llm.NewUserMessage("Is it true?"),
			},
			Stream: stream,
		}
	}

	It("returns its name", func() {
		Expect(newClient().Name()).To(Equal("openai"))
	})

	It("sends temperature and seed and decodes the completion", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"created": 1700000000,
				"model": "gpt-4o-mini",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Yes."}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 2, "total_tokens": 14}
			}`)
		}

		resp, err := newClient().Chat(context.Background(), request(false), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message.Content).To(Equal("Yes."))
		Expect(resp.StopReason).To(Equal("stop"))
		Expect(resp.Usage.TotalTokens).To(Equal(14))

		Expect(received["model"]).To(Equal("gpt-4o-mini"))
		Expect(received).To(HaveKeyWithValue("temperature", BeNumerically("==", 0)))
		Expect(received).To(HaveKeyWithValue("seed", BeNumerically("==", 0)))
		messages, ok := received["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(2))
		Expect(messages[0]).To(HaveKeyWithValue("role", "system"))
	})

	It("reports a completion without choices", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
		}

		_, err := newClient().Chat(context.Background(), request(false), nil)
		Expect(err).To(MatchError(openai.ErrNoChoices))
	})

	It("does not retry a failed call", func() {
		calls := 0
		handler = func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
		}

		_, err := newClient().Chat(context.Background(), request(false), nil)
		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("streams server-sent chunks in order", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, piece := range []string{"No, ", "the user ", "said Tuesday."} {
				fmt.Fprintf(w, "data: {\"id\":\"c\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", piece)
			}
			fmt.Fprint(w, "data: {\"id\":\"c\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
		}

		var chunks []string
		resp, err := newClient().Chat(context.Background(), request(true), func(c llm.StreamChunk) {
			chunks = append(chunks, c.Content)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(received["stream"]).To(BeTrue())
		Expect(chunks).To(Equal([]string{"No, ", "the user ", "said Tuesday.", ""}))
		Expect(resp.Message.Content).To(Equal("No, the user said Tuesday."))
		Expect(resp.StopReason).To(Equal("stop"))
	})
})
