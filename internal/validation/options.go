package validation

import "log/slog"

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// Parallel runs the checkers concurrently. Results are identical either way.
	Parallel bool

	// Rules are the code tables and thresholds. Nil means DefaultRuleSet.
	Rules *RuleSet

	// Checkers replaces the standard field-integrity, data-logic and
	// compliance stages. Order is the presentation order of findings.
	Checkers []Checker

	Metrics *Metrics
	Logger  *slog.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Parallel: true,
	}
}

// WithParallel enables or disables concurrent checker execution.
func WithParallel(enable bool) Option {
	return func(o *Options) {
		o.Parallel = enable
	}
}

// WithRules sets the rule tables.
func WithRules(rules *RuleSet) Option {
	return func(o *Options) {
		o.Rules = rules
	}
}

// WithCheckers replaces the checker stages.
func WithCheckers(checkers ...Checker) Option {
	return func(o *Options) {
		o.Checkers = checkers
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
