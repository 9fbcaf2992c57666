package ethermq

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	receiveLoop = iota
	publishLoop
)

// BackhaulPump owns the backhaul session. Its receive loop decodes messages from the session onto
// the inbound queue, its publish loop encodes frames from the outbound queue onto the segment
// topic.
type BackhaulPump struct {
	session      Session
	own          NodeIdentity
	segmentTopic string

	outbound *Queue
	inbound  *Queue

	// learning is nil unless unicast delivery to node topics is enabled
	learning *learningTable

	logger  *zap.SugaredLogger
	metrics *Metrics
	dropLog *rate.Sometimes
	loops   *loopStates
}

func newBackhaulPump(
	session Session,
	own NodeIdentity,
	segmentTopic string,
	outbound, inbound *Queue,
	learning *learningTable,
	logger *zap.SugaredLogger,
	metrics *Metrics,
) *BackhaulPump {
	return &BackhaulPump{
		session:      session,
		own:          own,
		segmentTopic: segmentTopic,
		outbound:     outbound,
		inbound:      inbound,
		learning:     learning,
		logger:       logger,
		metrics:      metrics,
		dropLog:      &rate.Sometimes{Interval: dropLogInterval},
		loops:        newLoopStates(2), //nolint:gomnd
	}
}

// State returns the current state of the pump.
func (p *BackhaulPump) State() State {
	return p.loops.state()
}

// Topics returns the topics this node subscribes to -- the segment topic and its own node topic.
func (p *BackhaulPump) Topics() []string {
	return []string{p.segmentTopic, p.own.String()}
}

// Subscribe subscribes the session to the topics of this node.
func (p *BackhaulPump) Subscribe() error {
	err := p.session.Subscribe(p.Topics()...)
	if err != nil {
		return fmt.Errorf("%w: failed subscribing to %v, err: %s", ErrConnectivity, p.Topics(), err)
	}

	return nil
}

// Receive consumes messages from the session until ctx is canceled or the session stops
// delivering. Malformed payloads and frames this node sent itself are dropped, everything else is
// queued for the local interface.
func (p *BackhaulPump) Receive(ctx context.Context) error {
	defer p.loops.set(receiveLoop, Terminated)

	p.logger.Infof("begin receive from topics %v", p.Topics())

	messages := p.session.Messages()

	for {
		p.loops.set(receiveLoop, Running)

		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}

				return fmt.Errorf("%w: session message stream closed", ErrConnectivity)
			}

			p.handle(msg)
		}
	}
}

func (p *BackhaulPump) handle(msg Message) {
	f, err := DecodeFrame(msg.Payload)
	if err != nil {
		p.metrics.drop(dropMalformed)

		p.dropLog.Do(func() {
			p.logger.Warnf("dropping message from topic %q, err: %s", msg.Topic, err)
		})

		return
	}

	if !ShouldForward(f, p.own, BackhaulToLocal) {
		p.metrics.drop(dropLoop)

		return
	}

	if p.learning != nil {
		p.learning.learn(f.Source())
	}

	p.metrics.received.Inc()
	p.inbound.Push(f)
}

// Publish publishes frames from the outbound queue until ctx is canceled. A failed publish is
// returned wrapped in ErrPublish, the session is expected to have exhausted its own retries.
func (p *BackhaulPump) Publish(ctx context.Context) error {
	defer p.loops.set(publishLoop, Terminated)

	p.logger.Infof("begin publish to topic %q", p.segmentTopic)

	for {
		p.loops.set(publishLoop, Running)

		f, err := p.outbound.Pop(ctx)
		if err != nil {
			return nil
		}

		topic := p.topicFor(f)

		err = p.session.Publish(topic, EncodeFrame(f))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			p.logger.Errorf("encountered error publishing to topic %q, err: %s", topic, err)

			return fmt.Errorf("%w: topic %q, err: %s", ErrPublish, topic, err)
		}

		p.metrics.published.Inc()
	}
}

func (p *BackhaulPump) topicFor(f Frame) string {
	if p.learning == nil {
		return p.segmentTopic
	}

	topic, ok := p.learning.topicFor(f.Destination())
	if !ok {
		return p.segmentTopic
	}

	return topic
}
