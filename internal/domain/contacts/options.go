package contacts

import "github.com/ridershield/ridershield/pkg/logger"

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.log = l
		}
	}
}

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(d *Directory) {
		if gen != nil {
			d.newID = gen
		}
	}
}
