package proving

import (
	"errors"

	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/chain"
)

type option struct {
	logger   *zap.Logger
	progress chain.ProgressFunc
}

func (o *option) validate() error {
	if o.logger == nil {
		return errors.New("`logger` is required")
	}
	return nil
}

type OptionFunc func(*option) error

// WithLogger sets the logger to use.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		o.logger = logger
		return nil
	}
}

// WithProgress sets a callback receiving the number of rounds completed since its previous call.
func WithProgress(f chain.ProgressFunc) OptionFunc {
	return func(o *option) error {
		o.progress = f
		return nil
	}
}
