package store

// Options control visibility and locking of a read.
type Options struct {
	IncludeInactive bool
	ForUpdate       bool
}

// Option mutates Options.
type Option func(*Options)

// IncludeInactive makes soft-deleted rows visible.
func IncludeInactive() Option {
	return func(o *Options) { o.IncludeInactive = true }
}

// ForUpdate locks the row until the surrounding transaction ends. Outside a transaction it
// has no effect.
func ForUpdate() Option {
	return func(o *Options) { o.ForUpdate = true }
}

// Apply folds opts into Options.
func Apply(opts []Option) Options {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
