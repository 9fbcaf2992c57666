package ethermq

// Option defines an option for the ethermq Manager.
type Option func(m *manager) error

func withOverride(override func(c *Config)) Option {
	return func(m *manager) error {
		m.overrides = append(m.overrides, override)

		return nil
	}
}

// WithConfigFile provides a config filepath to the manager.
func WithConfigFile(s string) Option {
	return func(m *manager) error {
		m.configPath = s

		return nil
	}
}

// WithLiveReload instructs the manager to watch the config file for changes and apply them (for
// now only the log level) while running.
func WithLiveReload(b bool) Option {
	return func(m *manager) error {
		m.liveReload = b

		return nil
	}
}

// WithCIDR sets the address/prefix of the local interface, overriding the config file.
func WithCIDR(s string) Option {
	return withOverride(func(c *Config) {
		c.CIDR = s
	})
}

// WithSegment sets the segment to join, overriding the config file.
func WithSegment(s string) Option {
	return withOverride(func(c *Config) {
		c.Segment = s
	})
}

// WithBrokerURL sets the broker url, overriding the config file.
func WithBrokerURL(s string) Option {
	return withOverride(func(c *Config) {
		c.Broker.URL = s
	})
}

// WithInterfaceName sets the name (template) of the tap interface, overriding the config file.
func WithInterfaceName(s string) Option {
	return withOverride(func(c *Config) {
		c.Interface = s
	})
}

// WithLogLevel sets the log level, overriding the config file.
func WithLogLevel(s string) Option {
	return withOverride(func(c *Config) {
		c.LogLevel = s
	})
}

// WithMetricsAddress sets the address to serve metrics on, overriding the config file.
func WithMetricsAddress(s string) Option {
	return withOverride(func(c *Config) {
		c.MetricsAddress = s
	})
}

// WithUnicast enables delivery to learned node topics, overriding the config file.
func WithUnicast(b bool) Option {
	return withOverride(func(c *Config) {
		c.Unicast = b
	})
}
