// Package dialogue holds the read-only conversation inputs of a run: the past
// sessions to summarize and the open exchange to answer.
package dialogue

import "strings"

// AssistantCue ends a Context so the model continues as the assistant.
const AssistantCue = "\nAssistant: "

// Session is one past conversation episode.
type Session struct {
	// Ordinal is the 1-based position of the session in the run.
	Ordinal int `json:"ordinal"`

	// Text is the session's utterance lines joined by newlines.
	Text string `json:"text"`
}

// Context is the current, not yet answered exchange.
type Context string

// NewSession joins lines into a session.
func NewSession(ordinal int, lines []string) Session {
	return Session{Ordinal: ordinal, Text: strings.Join(lines, "\n")}
}

// NewSessions numbers groups of lines 1..N in order.
func NewSessions(groups [][]string) []Session {
	sessions := make([]Session, 0, len(groups))
	for i, lines := range groups {
		sessions = append(sessions, NewSession(i+1, lines))
	}
	return sessions
}

// NewContext joins lines and appends the assistant cue.
func NewContext(lines []string) Context {
	return Context(strings.Join(lines, "\n") + AssistantCue)
}

func (c Context) String() string {
	return string(c)
}
