package internal

// application carries the dependencies assembled before Run starts serving.
type application struct {
	config *Config
}

// Option configures the application prior to startup.
type Option func(*application)

// WithConfig supplies the loaded configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) { a.config = cfg }
}
