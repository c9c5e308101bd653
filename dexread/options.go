package dexread

import (
	"go.uber.org/zap"
)

// Option is the property setter function for New.
type Option func(*options)

type options struct {
	strict       bool
	cacheStrings bool
	logger       *zap.Logger
}

func defaultOptions() options {
	return options{
		cacheStrings: true,
		logger:       zap.NewNop(),
	}
}

// WithStrict turns on validation of every section bound, string offset
// and record index against the buffer before any query runs. Violations
// come back as *BoundsError instead of a runtime panic.
//
// The default is off: the DEX file is trusted as written.
func WithStrict(v bool) Option {
	return func(o *options) { o.strict = v }
}

// WithStringCache controls memoization of decoded strings. On by default.
func WithStringCache(v bool) Option {
	return func(o *options) { o.cacheStrings = v }
}

// WithLogger sets the logger used for debug tracing of the decode.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
