package wgpu

import "errors"

var (
	// ErrNoAdapter is returned when the HAL backend exposes no adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter")

	// ErrProvider is returned when a device provider does not expose a HAL
	// device and queue.
	ErrProvider = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrDestroyed is returned when a destroyed texture or target is used.
	ErrDestroyed = errors.New("wgpu: resource destroyed")
)
