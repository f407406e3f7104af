package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/pkg/eventstream"
	"github.com/papercomputeco/rsum/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	var _ eventstream.Publisher = nop.NewPublisher()

	It("returns ErrNilStageEvent for nil events", func() {
		err := nop.NewPublisher().PublishStage(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilStageEvent))
	})

	It("accepts stage events", func() {
		event := eventstream.NewStageEvent("run", "cove", 1, "draft", "Memory Generation (S1)")
		Expect(nop.NewPublisher().PublishStage(context.Background(), event)).To(Succeed())
	})

	It("closes successfully", func() {
		Expect(nop.NewPublisher().Close()).To(Succeed())
	})
})
