// Package eventstream defines stage events and the Publisher abstraction used
// to ship them to an event stream backend.
package eventstream

import "context"

// Publisher publishes stage events to an event stream backend.
type Publisher interface {
	PublishStage(ctx context.Context, event *StageEvent) error
	Close() error
}
