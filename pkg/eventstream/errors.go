package eventstream

import "errors"

// ErrNilStageEvent indicates a nil stage event payload was provided to a publisher.
var ErrNilStageEvent = errors.New("nil stage event")
