package config

import "context"

// configKey is used to store the loaded config in context.
type configKey struct{}

type loaded struct {
	cfg *Config
	err error
}

// WithConfig stores the loaded config, and the error that occurred while
// loading it, in ctx. A nil cfg is replaced with defaults.
func WithConfig(ctx context.Context, cfg *Config, loadErr error) context.Context {
	if cfg == nil {
		cfg = Default()
	}
	return context.WithValue(ctx, configKey{}, loaded{cfg: cfg, err: loadErr})
}

// FromContext returns the config stored by WithConfig and its load error.
// Without one it returns defaults.
func FromContext(ctx context.Context) (*Config, error) {
	if l, ok := ctx.Value(configKey{}).(loaded); ok {
		return l.cfg, l.err
	}
	return Default(), nil
}
