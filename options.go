package draft

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/draft/config"
	"github.com/gogpu/draft/text"
)

// Option configures an Engine during creation.
//
// Example:
//
//	cfg, _ := config.Load("draft.yaml")
//	e, err := draft.New(draft.WithConfig(cfg), draft.WithRegisterer(prometheus.DefaultRegisterer))
type Option func(*options)

type options struct {
	cfg         config.Config
	logger      *slog.Logger
	registerer  prometheus.Registerer
	constLabels prometheus.Labels
	text        *text.Engine
}

func defaultOptions() options {
	return options{
		cfg:    config.Default(),
		logger: Logger(),
	}
}

// WithConfig replaces the default configuration. The configuration must
// pass Validate.
func WithConfig(c config.Config) Option {
	return func(o *options) {
		o.cfg = c
	}
}

// WithHistoryDepth overrides the configured undo depth.
func WithHistoryDepth(n int) Option {
	return func(o *options) {
		o.cfg.HistoryDepth = n
	}
}

// WithLogger sets the engine logger. nil silences the engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = newNopLogger()
		}
		o.logger = l
	}
}

// WithRegisterer registers the engine metrics on r. constLabels tell engines
// sharing one registry apart. Without this option metrics are collected but
// not registered.
func WithRegisterer(r prometheus.Registerer, constLabels prometheus.Labels) Option {
	return func(o *options) {
		o.registerer = r
		o.constLabels = constLabels
	}
}

// WithTextEngine shares a text layout engine, for example between engines
// using the same fonts. The configured font is ignored.
func WithTextEngine(t *text.Engine) Option {
	return func(o *options) {
		o.text = t
	}
}
