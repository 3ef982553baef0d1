// Package di wires the client's singletons together: the query cache, the
// segment serializer, the invalidation router and the mutation runner. One
// container per backend session.
package di

import (
	"log/slog"

	"github.com/propkit/client-go/cache"
	"github.com/propkit/client-go/internal/cacheinfra"
	"github.com/propkit/client-go/invalidation"
	"github.com/propkit/client-go/metrics"
	"github.com/propkit/client-go/mutation"
	"github.com/propkit/client-go/pagelist"
)

// Container manages singleton instances of the cache service, key
// serialization, invalidation routing and mutation execution.
type Container struct {
	queryCache cache.QueryCache
	serializer cache.SegmentSerializer
	router     *invalidation.Router
	runner     *mutation.Runner
	metrics    *metrics.Metrics
	log        *slog.Logger
	config     cache.Config
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	log        *slog.Logger
	metrics    *metrics.Metrics
	queryCache cache.QueryCache
}

// WithLogger sets the logger shared by the router and runner.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics attaches Prometheus counters to the wired components.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithQueryCache substitutes the cache backend, e.g. the Redis adapter for
// deployments that share a cache across processes. When unset the container
// builds the in-memory sturdyc backend from its config.
func WithQueryCache(qc cache.QueryCache) Option {
	return func(o *options) { o.queryCache = qc }
}

// NewContainer creates a container from the provided cache configuration.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	qc := o.queryCache
	if qc == nil {
		var err error
		qc, err = cacheinfra.NewSturdycCache(config)
		if err != nil {
			return nil, err
		}
	}

	router := invalidation.NewRouter(qc,
		invalidation.WithLogger(o.log),
		invalidation.WithMetrics(o.metrics),
	)

	return &Container{
		queryCache: qc,
		serializer: cache.NewSegmentSerializer(),
		router:     router,
		runner:     mutation.NewRunner(router, o.log),
		metrics:    o.metrics,
		log:        o.log,
		config:     config,
	}, nil
}

// NewContainerWithDefaults creates a container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// QueryCache returns the singleton query cache instance.
func (c *Container) QueryCache() cache.QueryCache {
	return c.queryCache
}

// Serializer returns the singleton segment serializer, used to render filter
// values into deterministic key segments.
func (c *Container) Serializer() cache.SegmentSerializer {
	return c.serializer
}

// Router returns the invalidation router.
func (c *Container) Router() *invalidation.Router {
	return c.router
}

// Runner returns the mutation runner.
func (c *Container) Runner() *mutation.Runner {
	return c.runner
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewListView builds a paginated list view over the given fetcher factory
// and materializer, sharing the container's logger and metrics.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function. Example: NewListView[entity.Unit, pagelist.UnitView](c, makeFetch, mat).
func NewListView[T any, V any](
	c *Container,
	makeFetch func(filter any) pagelist.FetchFunc[T],
	mat *pagelist.Materializer[T, V],
	opts ...pagelist.AccumulatorOption[T],
) *pagelist.View[T, V] {
	opts = append([]pagelist.AccumulatorOption[T]{
		pagelist.WithAccumulatorLogger[T](c.log),
		pagelist.WithAccumulatorMetrics[T](c.metrics),
	}, opts...)
	return pagelist.NewView(makeFetch, mat, opts...)
}
