package verifying

import (
	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/chain"
)

type option struct {
	logger   *zap.Logger
	progress chain.ProgressFunc
}

func applyOpts(options ...OptionFunc) *option {
	opts := &option{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(opts)
	}
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	return opts
}

type OptionFunc func(*option)

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		o.logger = logger
	}
}

// WithProgress sets a callback receiving the number of rounds rewound since its previous call.
// In a batch it is shared by all workers and must be safe for concurrent use.
func WithProgress(f chain.ProgressFunc) OptionFunc {
	return func(o *option) {
		o.progress = f
	}
}
