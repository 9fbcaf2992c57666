package ethermq

import "time"

const (
	// Version is the version of ethermq, set w/ build flags in ci; only useful/relevant for cli.
	Version = "0.0.0"
)

const (
	// TCP is a const for... TCP!
	TCP = "tcp"

	// FramePrefixSize is the size of the packet information prefix the tap device puts in front of
	// every frame (two bytes of flags, two bytes of protocol).
	FramePrefixSize = 4

	// MinFrameSize is the smallest frame we accept -- the prefix plus destination and source
	// hardware addresses.
	MinFrameSize = FramePrefixSize + 2*HardwareAddrSize

	// HardwareAddrSize is the size of an ethernet (mac) address.
	HardwareAddrSize = 6

	// DefaultMTU is the mtu we size interface reads for if nothing else is configured.
	DefaultMTU = 1500

	// DefaultInterfaceName is the name template handed to the kernel when creating the tap device;
	// the kernel replaces %d with the first free index.
	DefaultInterfaceName = "ethermq%d"

	// DefaultBrokerURL is the broker ethermq connects to if no other is configured.
	DefaultBrokerURL = "tcp://broker.hivemq.com:1883"

	// DefaultClientIDPrefix is prepended to the node mac address to build the mqtt client id.
	DefaultClientIDPrefix = "ethermq"

	// DefaultKeepAlive is the default mqtt keep alive interval.
	DefaultKeepAlive = 30 * time.Second

	// DefaultConnectTimeout is the default max time for a single broker connect attempt.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultConnectRetries is how many times we try to reach the broker before giving up.
	DefaultConnectRetries = 10

	// DefaultLearningTableSize is the number of remote mac addresses remembered when unicast
	// delivery is enabled.
	DefaultLearningTableSize = 1024

	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"
)

const (
	connectRetryDelay       = 500 * time.Millisecond
	maxConnectRetryWait     = 30 * time.Second
	dropLogInterval         = time.Second
	sessionBufferSize       = 256
	disconnectQuiesceMillis = 250
	metricsReadTimeout      = 10 * time.Second
	shutdownGracePeriod     = 5 * time.Second
)
