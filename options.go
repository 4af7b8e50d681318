package videograph

// DefaultDimensionsIdentifier is the identifier of the companion binding
// that carries the raster size to nodes reading upstream images.
const DefaultDimensionsIdentifier = "inputTextureDimensions"

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := videograph.New(b,
//	    videograph.WithTimeIdentifier("t"),
//	    videograph.WithStepCacheSize(8),
//	)
type Option func(*options)

type options struct {
	dimensionsIdentifier string
	timeIdentifier       string
	stepCacheSize        int
	locationCacheSize    int
}

func defaultOptions() options {
	return options{
		dimensionsIdentifier: DefaultDimensionsIdentifier,
		stepCacheSize:        0, // graph.DefaultResolverSize
		locationCacheSize:    1024,
	}
}

// WithDimensionsIdentifier renames the companion binding that carries the
// raster width and height as a vec2. It is bound only to programs that
// declare it. An empty name disables the binding.
func WithDimensionsIdentifier(id string) Option {
	return func(o *options) {
		o.dimensionsIdentifier = id
	}
}

// WithTimeIdentifier makes the engine bind the frame counter as an int to
// id on every program that declares it. Nodes naming their own
// TimeIdentifier are bound regardless of this option.
func WithTimeIdentifier(id string) Option {
	return func(o *options) {
		o.timeIdentifier = id
	}
}

// WithStepCacheSize bounds the number of memoized execution orders.
func WithStepCacheSize(n int) Option {
	return func(o *options) {
		o.stepCacheSize = n
	}
}

// WithLocationCacheSize bounds the number of memoized binding locations.
// Zero means unbounded.
func WithLocationCacheSize(n int) Option {
	return func(o *options) {
		o.locationCacheSize = n
	}
}
