package ethermq

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the yaml config at path. An empty path yields an empty config, everything can
// come from flags instead.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		return config, nil
	}

	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed reading config file at path %q, err: %s", ErrConfig, path, err)
	}

	err = yaml.Unmarshal(configBytes, config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed unmarshaling config file, err: %s", ErrConfig, err)
	}

	return config, nil
}

// Validate fills in defaults for anything unset and checks the config is usable.
func (c *Config) Validate() error {
	if c.CIDR == "" {
		return fmt.Errorf("%w: cidr is required", ErrConfig)
	}

	_, _, err := net.ParseCIDR(c.CIDR)
	if err != nil {
		return fmt.Errorf("%w: invalid cidr %q, err: %s", ErrConfig, c.CIDR, err)
	}

	if c.Segment == "" {
		return fmt.Errorf("%w: segment is required", ErrConfig)
	}

	if c.Interface == "" {
		c.Interface = DefaultInterfaceName
	}

	if c.MTU <= 0 {
		c.MTU = DefaultMTU
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	_, err = parseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	if c.LearningTableSize <= 0 {
		c.LearningTableSize = DefaultLearningTableSize
	}

	return c.Broker.validate()
}

func (b *Broker) validate() error {
	if b.URL == "" {
		b.URL = DefaultBrokerURL
	}

	if b.ClientIDPrefix == "" {
		b.ClientIDPrefix = DefaultClientIDPrefix
	}

	if b.QoS > 2 { //nolint:gomnd
		return fmt.Errorf("%w: qos must be 0, 1 or 2, got %d", ErrConfig, b.QoS)
	}

	if b.KeepAlive <= 0 {
		b.KeepAlive = DefaultKeepAlive
	}

	if b.ConnectTimeout <= 0 {
		b.ConnectTimeout = DefaultConnectTimeout
	}

	if b.ConnectRetries == nil {
		retries := DefaultConnectRetries
		b.ConnectRetries = &retries
	}

	if *b.ConnectRetries < 0 {
		return fmt.Errorf("%w: connect retries must not be negative", ErrConfig)
	}

	return nil
}

func (m *manager) loadConfig() (*Config, error) {
	config, err := LoadConfig(m.configPath)
	if err != nil {
		return nil, err
	}

	for _, override := range m.overrides {
		override(config)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (m *manager) watchConfig() error {
	if !m.liveReload || m.configPath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				m.logger.Debugf("got config watch event %q", event)

				if event.Name == m.configPath &&
					(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					m.reloadConfig()
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				m.logger.Warnf("got config watch error, ignoring, err: %s", watchErr)
			}
		}
	}()

	// watch the directory, editors tend to replace files rather than write them in place, which
	// shows up as a create of the config path
	err = watcher.Add(filepath.Dir(m.configPath))
	if err != nil {
		return err
	}

	return nil
}

func (m *manager) reloadConfig() {
	m.logger.Info("processing config update...")

	newConfig, err := m.loadConfig()
	if err != nil {
		m.logger.Warnf("failed loading updated config, keeping running config, err: %s", err)

		return
	}

	if configsEqual(m.config, newConfig) {
		m.logger.Info("previous and current parsed config are equal, nothing to do...")

		return
	}

	if newConfig.LogLevel != m.config.LogLevel {
		level, _ := parseLevel(newConfig.LogLevel)

		m.logger.Infof("changing log level from %q to %q", m.config.LogLevel, newConfig.LogLevel)

		m.level.SetLevel(level)
		m.config.LogLevel = newConfig.LogLevel
	}

	if !configsEqual(m.config, newConfig) {
		// there is no pausing the pumps, anything but the log level needs a restart
		m.logger.Warn("config has changes that only apply after a restart, ignoring them for now")
	}
}

func configsEqual(existingConfig, newConfig *Config) bool {
	return reflect.DeepEqual(existingConfig, newConfig)
}
