package repository

// DefaultCapacity is how many episodes are retained when not configured.
const DefaultCapacity = 500

// DefaultRedisKey is the list key used by the Redis store.
const DefaultRedisKey = "ridershield:episodes"

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	capacity int
	key      string
}

func defaultOptions() options {
	return options{capacity: DefaultCapacity, key: DefaultRedisKey}
}

// WithCapacity bounds the number of retained records.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithKey sets the Redis list key.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}
