package ethermq

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	outboundQueueName = "local-to-backhaul"
	inboundQueueName  = "backhaul-to-local"
)

// NewBridge returns a new Bridge between the local interface iface and the backhaul session. The
// bridge takes ownership of both, closing them when it is done.
func NewBridge(
	config *Config,
	iface Interface,
	session Session,
	logger *zap.SugaredLogger,
) (*Bridge, error) {
	own, err := NewNodeIdentity(iface.HardwareAddr())
	if err != nil {
		return nil, err
	}

	var learning *learningTable

	if config.Unicast {
		learning, err = newLearningTable(config.LearningTableSize)
		if err != nil {
			return nil, err
		}
	}

	outbound := NewQueue(outboundQueueName)
	inbound := NewQueue(inboundQueueName)
	metrics := NewMetrics(outbound, inbound)

	b := &Bridge{
		own:     own,
		iface:   iface,
		session: session,
		logger:  logger,
		metrics: metrics,
		interfacePump: newInterfacePump(
			iface,
			own,
			config.MTU,
			outbound,
			inbound,
			logger.Named("interface"),
			metrics,
		),
		backhaulPump: newBackhaulPump(
			session,
			own,
			config.Segment,
			outbound,
			inbound,
			learning,
			logger.Named("backhaul"),
			metrics,
		),
	}

	return b, nil
}

// Bridge wires an InterfacePump and a BackhaulPump together through two queues -- frames captured
// locally flow out to the backhaul, frames received from the backhaul flow in to the interface.
type Bridge struct {
	own     NodeIdentity
	iface   Interface
	session Session

	logger  *zap.SugaredLogger
	metrics *Metrics

	interfacePump *InterfacePump
	backhaulPump  *BackhaulPump

	closeOnce sync.Once
	closeErr  error
}

// Identity returns the identity (mac address) of the node this bridge runs on.
func (b *Bridge) Identity() NodeIdentity {
	return b.own
}

// Metrics returns the bridge's metrics.
func (b *Bridge) Metrics() *Metrics {
	return b.metrics
}

// States returns the states of the interface and backhaul pumps.
func (b *Bridge) States() (interfaceState, backhaulState State) {
	return b.interfacePump.State(), b.backhaulPump.State()
}

// Run subscribes to the node's topics and runs the four pump loops until ctx is canceled or one
// of the loops hits a fatal error, which is returned. The interface and session are closed before
// Run returns.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Infof("begin bridge run for node %s on segment %q", b.own, b.backhaulPump.segmentTopic)

	err := b.backhaulPump.Subscribe()
	if err != nil {
		b.closeLogged()

		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return b.interfacePump.Capture(gCtx) })
	g.Go(func() error { return b.interfacePump.Inject(gCtx) })
	g.Go(func() error { return b.backhaulPump.Receive(gCtx) })
	g.Go(func() error { return b.backhaulPump.Publish(gCtx) })

	g.Go(func() error {
		<-gCtx.Done()

		// closing the interface is the only way to unblock a pending read
		b.closeLogged()

		return nil
	})

	err = g.Wait()
	if err != nil {
		b.logger.Errorf("bridge for node %s stopped, err: %s", b.own, err)

		return err
	}

	b.logger.Infof("bridge for node %s stopped", b.own)

	return nil
}

// Close closes the interface and the session. It is safe to call more than once.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		var errs *multierror.Error

		err := b.iface.Close()
		if err != nil {
			errs = multierror.Append(errs, err)
		}

		err = b.session.Close()
		if err != nil {
			errs = multierror.Append(errs, err)
		}

		b.closeErr = errs.ErrorOrNil()
	})

	return b.closeErr
}

func (b *Bridge) closeLogged() {
	err := b.Close()
	if err != nil {
		b.logger.Warnf("ignoring error closing bridge for node %s, err: %s", b.own, err)
	}
}
