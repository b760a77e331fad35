package mixdj

// Config collects service settings. Zero values fall back to the
// defaults below.
type Config struct {
	// MixDuration is the target output length in seconds.
	MixDuration float64
	// SampleRate of rendered output. Zero takes the lead track's.
	SampleRate int
	// DBPath locates the history database when no Store is supplied.
	DBPath string
	// MaxConcurrentRenders bounds simultaneous render jobs.
	MaxConcurrentRenders int

	Logger Logger
	Store  Store
}

type Option func(*Config)

func WithMixDuration(seconds float64) Option {
	return func(c *Config) {
		c.MixDuration = seconds
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithMaxConcurrentRenders(n int) Option {
	return func(c *Config) {
		c.MaxConcurrentRenders = n
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStore(store Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

func defaultConfig() *Config {
	return &Config{
		MixDuration:          120,
		DBPath:               "aidj.sqlite3",
		MaxConcurrentRenders: 2,
	}
}
