package service

import (
	"time"

	"taskFlow/internal/metrics"
)

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option настраивает сервисы. По умолчанию используется time.Now и метрики не пишутся.
type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
