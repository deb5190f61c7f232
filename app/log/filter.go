// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package log

import (
	"math"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/obolnetwork/wagyu/app/z"
)

// FilterOption configures a Filter.
type FilterOption func(*filter)

// WithFilterRateLimit returns a filter option that sets the rate limit.
func WithFilterRateLimit(limit rate.Limit) FilterOption {
	return func(f *filter) {
		f.limit = limit
	}
}

type filter struct {
	limit rate.Limit
}

func defaultFilter() filter {
	return filter{limit: rate.Every(time.Minute)}
}

// Filter returns a stateful structured logging field that results in logs being dropped
// if the rate limit is exceeded. The default rate limit is 1 log per minute.
// Usage:
//
//	filter := log.Filter()
//	for event := range events {
//	  log.Info(ctx, "Waiting for deposit cli", filter)
//	}
func Filter(opts ...FilterOption) z.Field {
	f := defaultFilter()
	for _, opt := range opts {
		opt(&f)
	}

	limiter := rate.NewLimiter(f.limit, 1)

	return func(add func(zap.Field)) {
		if !limiter.Allow() {
			add(zap.Field{Type: filterFieldType})
		}
	}
}

// filterFieldType is a custom zap field type that indicates the log should be dropped.
var filterFieldType = zapcore.FieldType(math.MaxUint8)
