package ethermq

import (
	"fmt"
	"time"
)

// Config holds the yaml configuration used for ethermq.
type Config struct {
	// CIDR is the address/prefix assigned to the local tap interface, i.e. "10.10.0.2/24".
	CIDR string `yaml:"cidr"`
	// Segment is the identifier of the ethernet segment this node joins -- it is the topic shared
	// by every node on the segment.
	Segment string `yaml:"segment"`
	// Interface is the name (template) of the tap interface to create, the kernel replaces any %d.
	Interface string `yaml:"interface"`
	// MTU sizes reads from the interface; frames bigger than MTU plus the prefix are truncated.
	MTU int `yaml:"mtu"`
	// LogLevel is one of debug, info, warn, error. It can be changed with live reload.
	LogLevel string `yaml:"log_level"`
	// MetricsAddress is the address to serve prometheus metrics on, no metrics listener if empty.
	MetricsAddress string `yaml:"metrics_address"`
	// Unicast enables sending frames for learned remote macs to that node's topic instead of the
	// whole segment. This only works if remote nodes do not bridge other hosts behind their tap.
	Unicast bool `yaml:"unicast"`
	// LearningTableSize is the number of remote macs remembered when Unicast is enabled.
	LearningTableSize int `yaml:"learning_table_size"`
	// Broker holds the mqtt broker settings.
	Broker Broker `yaml:"broker"`
}

// Broker holds the settings for the mqtt broker used as backhaul.
type Broker struct {
	// URL of the broker, i.e. "tcp://broker.hivemq.com:1883" or "ssl://host:8883".
	URL string `yaml:"url"`
	// ClientIDPrefix is prepended to the node mac to build the client id.
	ClientIDPrefix string `yaml:"client_id_prefix"`
	// QoS used for subscriptions and publishes.
	QoS byte `yaml:"qos"`
	// Username and Password are optional broker credentials.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// KeepAlive is the mqtt keep alive interval.
	KeepAlive time.Duration `yaml:"keep_alive"`
	// ConnectTimeout bounds a single connect attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// ConnectRetries is how many times a failed initial connect is retried, 0 disables retrying.
	// Unset means DefaultConnectRetries.
	ConnectRetries *int `yaml:"connect_retries"`
}

func (b *Broker) retries() int {
	if b.ConnectRetries == nil {
		return DefaultConnectRetries
	}

	return *b.ConnectRetries
}

// ClientID returns the client id for the node own.
func (b *Broker) ClientID(own NodeIdentity) string {
	return fmt.Sprintf("%s-%s", b.ClientIDPrefix, own)
}
