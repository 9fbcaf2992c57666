package ethermq

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `---
cidr: 10.10.0.2/24
segment: lab
interface: lab%d
mtu: 9000
log_level: debug
metrics_address: 127.0.0.1:0
unicast: true
learning_table_size: 16
broker:
  url: tcp://127.0.0.1:1883
  client_id_prefix: lab
  qos: 1
  username: user
  password: pass
  keep_alive: 15s
  connect_timeout: 2s
  connect_retries: 3
`

func ptr[T any](v T) *T {
	return &v
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ethermq.yaml")

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, &Config{
		CIDR:              "10.10.0.2/24",
		Segment:           "lab",
		Interface:         "lab%d",
		MTU:               9000,
		LogLevel:          "debug",
		MetricsAddress:    "127.0.0.1:0",
		Unicast:           true,
		LearningTableSize: 16,
		Broker: Broker{
			URL:            "tcp://127.0.0.1:1883",
			ClientIDPrefix: "lab",
			QoS:            1,
			Username:       "user",
			Password:       "pass",
			KeepAlive:      15 * time.Second,
			ConnectTimeout: 2 * time.Second,
			ConnectRetries: ptr(3),
		},
	}, config)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = LoadConfig(writeConfig(t, "cidr: [oops"))
	assert.ErrorIs(t, err, ErrConfig)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, config)
}

func TestConfig_ValidateDefaults(t *testing.T) {
	config := &Config{CIDR: "10.10.0.2/24", Segment: "lab"}

	require.NoError(t, config.Validate())

	assert.Equal(t, DefaultInterfaceName, config.Interface)
	assert.Equal(t, DefaultMTU, config.MTU)
	assert.Equal(t, DefaultLogLevel, config.LogLevel)
	assert.Equal(t, DefaultLearningTableSize, config.LearningTableSize)
	assert.Equal(t, DefaultBrokerURL, config.Broker.URL)
	assert.Equal(t, DefaultClientIDPrefix, config.Broker.ClientIDPrefix)
	assert.Equal(t, DefaultKeepAlive, config.Broker.KeepAlive)
	assert.Equal(t, DefaultConnectTimeout, config.Broker.ConnectTimeout)
	assert.Equal(t, ptr(DefaultConnectRetries), config.Broker.ConnectRetries)

	assert.Equal(
		t, "ethermq-AA:AA:AA:AA:AA:AA", config.Broker.ClientID(mustIdentity(t, ownMAC)),
	)
}

func TestConfig_ZeroConnectRetriesKept(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "cidr: 10.10.0.2/24\nsegment: lab\n"+
		"broker:\n  connect_retries: 0\n"))
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, ptr(0), config.Broker.ConnectRetries)
	assert.Equal(t, 0, config.Broker.retries())
}

func TestConfig_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "missing-cidr", config: Config{Segment: "lab"}},
		{name: "missing-segment", config: Config{CIDR: "10.10.0.2/24"}},
		{name: "bad-cidr", config: Config{CIDR: "10.10.0.2", Segment: "lab"}},
		{
			name:   "bad-log-level",
			config: Config{CIDR: "10.10.0.2/24", Segment: "lab", LogLevel: "chatty"},
		},
		{
			name:   "bad-qos",
			config: Config{CIDR: "10.10.0.2/24", Segment: "lab", Broker: Broker{QoS: 3}},
		},
		{
			name: "negative-retries",
			config: Config{
				CIDR: "10.10.0.2/24", Segment: "lab", Broker: Broker{ConnectRetries: ptr(-1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.config.Validate(), ErrConfig)
		})
	}
}

func TestConfigsEqual(t *testing.T) {
	a := &Config{CIDR: "10.10.0.2/24", Segment: "lab"}
	b := &Config{CIDR: "10.10.0.2/24", Segment: "lab"}

	assert.True(t, configsEqual(a, b))

	b.Broker.QoS = 1
	assert.False(t, configsEqual(a, b))
}

func TestManager_FlagsOverrideConfigFile(t *testing.T) {
	m, err := newManager(
		WithConfigFile(writeConfig(t, testConfig)),
		WithSegment("other"),
		WithCIDR("10.20.0.1/16"),
		WithBrokerURL("tcp://broker:1883"),
		WithInterfaceName("tap0"),
		WithLogLevel("warn"),
		WithMetricsAddress(""),
		WithUnicast(false),
	)
	require.NoError(t, err)

	assert.Equal(t, "other", m.config.Segment)
	assert.Equal(t, "10.20.0.1/16", m.config.CIDR)
	assert.Equal(t, "tcp://broker:1883", m.config.Broker.URL)
	assert.Equal(t, "tap0", m.config.Interface)
	assert.Equal(t, "warn", m.config.LogLevel)
	assert.Equal(t, "", m.config.MetricsAddress)
	assert.False(t, m.config.Unicast)
	assert.Equal(t, zap.WarnLevel, m.level.Level())

	// untouched values still come from the file
	assert.Equal(t, 9000, m.config.MTU)
	assert.Equal(t, byte(1), m.config.Broker.QoS)
}

func TestManager_MissingRequiredValues(t *testing.T) {
	_, err := newManager(WithSegment("lab"))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = newManager(WithCIDR("10.10.0.2/24"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestManager_ReloadConfigAppliesLogLevel(t *testing.T) {
	path := writeConfig(t, testConfig)

	m, err := newManager(WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, zap.DebugLevel, m.level.Level())

	require.NoError(t, os.WriteFile(path, []byte(
		"cidr: 10.10.0.2/24\nsegment: lab\nlog_level: error\n",
	), 0o600))

	m.reloadConfig()

	assert.Equal(t, zap.ErrorLevel, m.level.Level())
	assert.Equal(t, "error", m.config.LogLevel)
	// everything else needs a restart, so the running config keeps it
	assert.Equal(t, "lab%d", m.config.Interface)
}

func TestManager_ReloadConfigKeepsRunningConfigOnError(t *testing.T) {
	path := writeConfig(t, testConfig)

	m, err := newManager(WithConfigFile(path))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("segment: lab\nlog_level: error\n"), 0o600))

	m.reloadConfig()

	assert.Equal(t, zap.DebugLevel, m.level.Level())
	assert.Equal(t, "debug", m.config.LogLevel)
}

func TestManager_WatchConfig(t *testing.T) {
	path := writeConfig(t, testConfig)

	m, err := newManager(WithConfigFile(path), WithLiveReload(true))
	require.NoError(t, err)

	require.NoError(t, m.watchConfig())
	defer func() {
		_ = m.shutdown()
	}()

	require.NoError(t, os.WriteFile(path, []byte(
		"cidr: 10.10.0.2/24\nsegment: lab\nlog_level: warn\n",
	), 0o600))

	require.Eventually(t, func() bool {
		return m.level.Level() == zap.WarnLevel
	}, waitTimeout, 10*time.Millisecond)
}

func TestManager_WatchConfigReplacedFile(t *testing.T) {
	path := writeConfig(t, testConfig)

	m, err := newManager(WithConfigFile(path), WithLiveReload(true))
	require.NoError(t, err)

	require.NoError(t, m.watchConfig())
	defer func() {
		_ = m.shutdown()
	}()

	replacement := filepath.Join(filepath.Dir(path), "ethermq.yaml.swp")

	require.NoError(t, os.WriteFile(replacement, []byte(
		"cidr: 10.10.0.2/24\nsegment: lab\nlog_level: error\n",
	), 0o600))
	require.NoError(t, os.Rename(replacement, path))

	require.Eventually(t, func() bool {
		return m.level.Level() == zap.ErrorLevel
	}, waitTimeout, 10*time.Millisecond)
}
