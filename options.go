package obfptr

import (
	"math/rand/v2"

	"github.com/hupe1980/obfptr/alloc"
	"github.com/hupe1980/obfptr/keysource"
	"github.com/hupe1980/obfptr/transform"
)

type options struct {
	allocator        alloc.Allocator
	keySource        keysource.Source
	rand             *rand.Rand
	method           transform.Method
	methodSet        bool
	logger           *Logger
	metricsCollector MetricsCollector
	leakCleanup      bool
}

// Option configures pointer and box construction.
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{
		allocator:        alloc.Default(),
		keySource:        keysource.Default,
		logger:           noopLogger,
		metricsCollector: NoopMetricsCollector{},
		leakCleanup:      true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithAllocator configures the off-heap allocator.
//
// Adopt and FreeRaw must be given the allocator that Alloc used.
// If nil is passed, alloc.Default is used.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) {
		if a == nil {
			a = alloc.Default()
		}
		o.allocator = a
	}
}

// WithKeySource configures where keys come from.
// If nil is passed, keysource.Default (the wall clock) is used.
//
// Example with a deterministic key for tests:
//
//	p, _ := obfptr.New(v, obfptr.WithKeySource(keysource.Static(0x1234567890ABCDEF)))
func WithKeySource(s keysource.Source) Option {
	return func(o *options) {
		if s == nil {
			s = keysource.Default
		}
		o.keySource = s
	}
}

// WithRand configures the generator used to pick a transform method.
// By default a generator is seeded from the key itself.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithMethod pins the transform method instead of choosing one at random.
func WithMethod(m transform.Method) Option {
	return func(o *options) {
		o.method = m
		o.methodSet = true
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = noopLogger
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &obfptr.BasicMetricsCollector{}
//	p, _ := obfptr.New(v, obfptr.WithMetricsCollector(metrics))
//	fmt.Println(metrics.ConstructCount.Load())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithoutLeakCleanup disables the garbage-collector backstop that frees the
// allocation of a pointer dropped without Destroy. Such a pointer then leaks
// its off-heap memory for the life of the process.
func WithoutLeakCleanup() Option {
	return func(o *options) {
		o.leakCleanup = false
	}
}
