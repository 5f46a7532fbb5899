package granular

const defaultSeed = 1

// Option configures engines, players and processors.
type Option func(*options)

type options struct {
	seed int64
}

func applyOptions(opts []Option) options {
	o := options{seed: defaultSeed}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithSeed sets the seed of the random source used for spray, panning and
// probabilistic grain seeding. Equal seeds give bit-identical output.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}
