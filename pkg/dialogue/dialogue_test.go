package dialogue_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/pkg/dialogue"
)

var _ = Describe("Dialogue", func() {
	It("joins session lines with newlines", func() {
		s := dialogue.NewSession(3, []string{"User: hi", "Assistant: hello"})
		Expect(s.Ordinal).To(Equal(3))
		Expect(s.Text).To(Equal("User: hi\nAssistant: hello"))
	})

	It("numbers sessions from one", func() {
		sessions := dialogue.NewSessions([][]string{{"a"}, {"b", "c"}})
		Expect(sessions).To(Equal([]dialogue.Session{
			{Ordinal: 1, Text: "a"},
			{Ordinal: 2, Text: "b\nc"},
		}))
	})

	It("returns no sessions for no groups", func() {
		Expect(dialogue.NewSessions(nil)).To(BeEmpty())
	})

	It("ends the context with the assistant cue", func() {
		c := dialogue.NewContext([]string{"User: Where should I go?"})
		Expect(c.String()).To(Equal("User: Where should I go?\nAssistant: "))
	})
})
