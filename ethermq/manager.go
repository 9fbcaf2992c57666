package ethermq

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager is an interface representing the manager singleton's methods.
type Manager interface {
	Run() error
}

type manager struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	configPath string
	config     *Config
	overrides  []func(c *Config)
	liveReload bool
	watcher    *fsnotify.Watcher

	level  zap.AtomicLevel
	logger *zap.SugaredLogger

	// swapped out in tests, CreateTAP and Connect otherwise
	createInterface func(name, cidr string) (Interface, error)
	connect         func(
		ctx context.Context, config Broker, clientID string, logger *zap.SugaredLogger,
	) (Session, error)

	metricsServer *http.Server
}

var managerInst *manager //nolint:gochecknoglobals

// GetManager returns the singleton implementation of Manager.
func GetManager(opts ...Option) (Manager, error) {
	if managerInst != nil {
		return managerInst, nil
	}

	m, err := newManager(opts...)
	if err != nil {
		return nil, err
	}

	m.ctx, m.ctxCancel = SignalHandledContext(m.logger.Infof)

	managerInst = m

	return managerInst, nil
}

func newManager(opts ...Option) (*manager, error) {
	m := &manager{
		level:           zap.NewAtomicLevel(),
		createInterface: CreateTAP,
		connect:         Connect,
	}

	for _, opt := range opts {
		err := opt(m)
		if err != nil {
			return nil, err
		}
	}

	if m.configPath != "" {
		qualifiedConfigPath, err := filepath.Abs(m.configPath)
		if err != nil {
			return nil, err
		}

		m.configPath = qualifiedConfigPath
	}

	config, err := m.loadConfig()
	if err != nil {
		return nil, err
	}

	m.config = config

	level, err := parseLevel(config.LogLevel)
	if err != nil {
		return nil, err
	}

	m.level.SetLevel(level)

	m.logger, err = newLogger(m.level)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Run creates the local interface, connects to the broker and runs the bridge until sigint or
// failure.
func (m *manager) Run() error {
	defer func() {
		_ = m.logger.Sync()
	}()

	m.logger.Infof(
		"manager run started, joining segment %q as %s via %q...",
		m.config.Segment, m.config.CIDR, m.config.Broker.URL,
	)

	iface, err := m.createInterface(m.config.Interface, m.config.CIDR)
	if err != nil {
		m.logger.Errorf("error creating interface: %s", err)

		return err
	}

	own, err := NewNodeIdentity(iface.HardwareAddr())
	if err != nil {
		_ = iface.Close()

		return err
	}

	m.logger.Infof("created interface %q with mac %s", iface.Name(), own)

	session, err := m.connect(
		m.ctx, m.config.Broker, m.config.Broker.ClientID(own), m.logger.Named("mqtt"),
	)
	if err != nil {
		_ = iface.Close()

		if m.ctx.Err() != nil {
			m.logger.Info("interrupted while connecting to broker, exiting")

			return nil
		}

		m.logger.Errorf("error connecting to broker: %s", err)

		return err
	}

	bridge, err := NewBridge(m.config, iface, session, m.logger)
	if err != nil {
		m.logger.Errorf("error creating bridge: %s", err)

		return multierror.Append(err, iface.Close(), session.Close()).ErrorOrNil()
	}

	err = m.serveMetrics(bridge.Metrics())
	if err != nil {
		m.logger.Errorf("error setting up metrics listener: %s", err)

		return multierror.Append(err, bridge.Close()).ErrorOrNil()
	}

	err = m.watchConfig()
	if err != nil {
		m.logger.Errorf("error setting up config watch: %s", err)

		return multierror.Append(err, bridge.Close()).ErrorOrNil()
	}

	runErr := bridge.Run(m.ctx)

	return multierror.Append(runErr, m.shutdown()).ErrorOrNil()
}

func (m *manager) serveMetrics(metrics *Metrics) error {
	if m.config.MetricsAddress == "" {
		return nil
	}

	l, err := net.Listen(TCP, m.config.MetricsAddress)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	m.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	m.logger.Infof("serving metrics on %s", l.Addr())

	go func() {
		serveErr := m.metricsServer.Serve(l)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			m.logger.Warnf("metrics listener stopped, err: %s", serveErr)
		}
	}()

	return nil
}

func (m *manager) shutdown() error {
	var errs *multierror.Error

	if m.watcher != nil {
		errs = multierror.Append(errs, m.watcher.Close())
	}

	if m.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()

		errs = multierror.Append(errs, m.metricsServer.Shutdown(ctx))
	}

	return errs.ErrorOrNil()
}
