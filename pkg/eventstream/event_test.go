package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rsum/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals StageEvent with expected top-level keys", func() {
		event := eventstream.StageEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeStageCompleted,
			EventID:       "evt_123",
			EmittedAt:     time.Unix(1735689600, 0).UTC(),
			RunID:         "run_1",
			Variant:       "cove",
			Session:       2,
			Stage:         "verify",
			Task:          "Fact Verification (Q: Does the user...)",
			DurationMs:    1200,
			OutputPreview: "No, the user...",
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		for _, key := range []string{
			"schema_version", "event_type", "event_id", "emitted_at",
			"run_id", "variant", "session", "stage", "task", "duration_ms", "output_preview",
		} {
			Expect(got).To(HaveKey(key))
		}
	})

	It("stamps new events", func() {
		event := eventstream.NewStageEvent("run_1", "rsum", 1, "draft", "Memory Generation (S1)")

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal("rsum.stage.completed"))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.EmittedAt).To(BeTemporally("~", time.Now(), time.Second))
		Expect(event.Session).To(Equal(1))
	})

	It("gives every event a distinct id", func() {
		a := eventstream.NewStageEvent("run", "cove", 1, "draft", "t")
		b := eventstream.NewStageEvent("run", "cove", 1, "draft", "t")
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("provides ErrNilStageEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilStageEvent).To(MatchError("nil stage event"))
	})
})
