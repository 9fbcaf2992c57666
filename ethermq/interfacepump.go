package ethermq

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	captureLoop = iota
	injectLoop
)

// InterfacePump owns the local interface. Its capture loop moves frames from the interface onto
// the outbound queue, its inject loop moves frames from the inbound queue onto the interface. The
// loops share the interface handle without locking -- one only reads, the other only writes.
type InterfacePump struct {
	iface    Interface
	own      NodeIdentity
	readSize int

	// outbound carries captured frames to the backhaul, inbound carries received frames to us
	outbound *Queue
	inbound  *Queue

	logger  *zap.SugaredLogger
	metrics *Metrics
	dropLog *rate.Sometimes
	loops   *loopStates
}

func newInterfacePump(
	iface Interface,
	own NodeIdentity,
	mtu int,
	outbound, inbound *Queue,
	logger *zap.SugaredLogger,
	metrics *Metrics,
) *InterfacePump {
	if mtu <= 0 {
		mtu = DefaultMTU
	}

	return &InterfacePump{
		iface:    iface,
		own:      own,
		readSize: mtu + FramePrefixSize,
		outbound: outbound,
		inbound:  inbound,
		logger:   logger,
		metrics:  metrics,
		dropLog:  &rate.Sometimes{Interval: dropLogInterval},
		loops:    newLoopStates(2), //nolint:gomnd
	}
}

// State returns the current state of the pump.
func (p *InterfacePump) State() State {
	return p.loops.state()
}

// Capture reads frames from the interface until the interface fails or ctx is canceled. Short
// frames and frames addressed to this node are dropped, everything else is queued for the
// backhaul. A read error is returned wrapped in ErrInterfaceRead -- there is no recovering from a
// broken interface.
func (p *InterfacePump) Capture(ctx context.Context) error {
	defer p.loops.set(captureLoop, Terminated)

	p.logger.Infof("begin capture from interface %q", p.iface.Name())

	data := make([]byte, p.readSize)

	for {
		p.loops.set(captureLoop, Running)

		readN, err := p.iface.Read(data)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			p.logger.Errorf(
				"encountered error reading from interface %q, err: %s", p.iface.Name(), err,
			)

			return fmt.Errorf("%w: interface %q, err: %s", ErrInterfaceRead, p.iface.Name(), err)
		}

		f, err := NewFrame(append([]byte(nil), data[:readN]...))
		if err != nil {
			p.drop(dropUndersized, err)

			continue
		}

		if !ShouldForward(f, p.own, LocalToBackhaul) {
			p.metrics.drop(dropLoop)

			continue
		}

		p.metrics.captured.Inc()
		p.outbound.Push(f)
	}
}

// Inject writes frames from the inbound queue to the interface until ctx is canceled. A failed
// write only costs that frame.
func (p *InterfacePump) Inject(ctx context.Context) error {
	defer p.loops.set(injectLoop, Terminated)

	p.logger.Infof("begin inject to interface %q", p.iface.Name())

	for {
		p.loops.set(injectLoop, Running)

		f, err := p.inbound.Pop(ctx)
		if err != nil {
			return nil
		}

		if p.logger.Level().Enabled(zap.DebugLevel) {
			p.logger.Debugf("injecting frame %s", describeFrame(f))
		}

		_, err = p.iface.Write(f)
		if err != nil {
			p.drop(
				dropWrite,
				fmt.Errorf("%w: interface %q, err: %s", ErrInterfaceWrite, p.iface.Name(), err),
			)

			continue
		}

		p.metrics.injected.Inc()
	}
}

func (p *InterfacePump) drop(reason string, err error) {
	p.metrics.drop(reason)

	p.dropLog.Do(func() {
		p.logger.Warnf("dropping frame on interface %q, err: %s", p.iface.Name(), err)
	})
}
