package eventstream

import "errors"

// ErrNilExampleEvent indicates a nil event was passed to a publisher.
var ErrNilExampleEvent = errors.New("nil example event")
