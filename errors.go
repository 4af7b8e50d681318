package videograph

import "errors"

var (
	// ErrFrameInProgress is returned when RenderFrame, Resize or Close is
	// called from within a frame.
	ErrFrameInProgress = errors.New("videograph: frame in progress")

	// ErrClosed is returned when a closed Engine is used.
	ErrClosed = errors.New("videograph: engine closed")

	// ErrNilBackend is returned by New without a backend.
	ErrNilBackend = errors.New("videograph: nil backend")
)
