package ethermq

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type mqttSession struct {
	client mqtt.Client
	qos    byte
	logger *zap.SugaredLogger

	topicsLock sync.Mutex
	topics     []string

	messages  chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// Connect opens an mqtt session to the broker described by config, identified by clientID. The
// session reconnects on its own; subscriptions are restored every time it does.
func Connect(
	ctx context.Context,
	config Broker,
	clientID string,
	logger *zap.SugaredLogger,
) (Session, error) {
	routePahoLogs(logger)

	s := &mqttSession{
		qos:      config.QoS,
		logger:   logger,
		messages: make(chan Message, sessionBufferSize),
		done:     make(chan struct{}),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(config.URL).
		SetClientID(clientID).
		SetUsername(config.Username).
		SetPassword(config.Password).
		SetKeepAlive(config.KeepAlive).
		SetConnectTimeout(config.ConnectTimeout).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warnf("lost connection to broker %q, err: %s", config.URL, err)
		}).
		SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
			logger.Infof("reconnecting to broker %q...", config.URL)
		})

	s.client = mqtt.NewClient(opts)

	err := s.connect(ctx, config, clientID)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *mqttSession) connect(ctx context.Context, config Broker, clientID string) error {
	logger := s.logger

	logger.Infof("connecting to broker %q as %q", config.URL, clientID)

	var retries int

	delay := connectRetryDelay

	for {
		err := waitToken(ctx, s.client.Connect())
		if err == nil {
			logger.Infof("connected to broker on attempt %d, continuing...", retries+1)

			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		retries++

		if retries > config.retries() {
			return fmt.Errorf(
				"%w: maximum retries exceeded attempting to connect to broker %q, last err: %s",
				ErrConnectivity, config.URL, err,
			)
		}

		logger.Warnf(
			"connecting to broker %q failed on attempt %d, sleeping %s before trying again, err: %s",
			config.URL, retries, delay, err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxConnectRetryWait {
			delay = maxConnectRetryWait
		}
	}
}

func (s *mqttSession) onConnect(c mqtt.Client) {
	s.topicsLock.Lock()
	topics := append([]string(nil), s.topics...)
	s.topicsLock.Unlock()

	if len(topics) == 0 {
		return
	}

	s.logger.Infof("(re)connected to broker, restoring subscriptions %v", topics)

	// this runs on the client's own goroutine, do not wait on the token here
	c.SubscribeMultiple(s.filters(topics), s.handle)
}

func (s *mqttSession) filters(topics []string) map[string]byte {
	filters := make(map[string]byte, len(topics))

	for _, topic := range topics {
		filters[topic] = s.qos
	}

	return filters
}

func (s *mqttSession) handle(_ mqtt.Client, m mqtt.Message) {
	select {
	case s.messages <- Message{Topic: m.Topic(), Payload: m.Payload()}:
	case <-s.done:
	}
}

func (s *mqttSession) Subscribe(topics ...string) error {
	s.topicsLock.Lock()
	s.topics = append(s.topics, topics...)
	s.topicsLock.Unlock()

	s.logger.Infof("subscribing to topics %v", topics)

	return waitToken(context.Background(), s.client.SubscribeMultiple(s.filters(topics), s.handle))
}

func (s *mqttSession) Publish(topic, payload string) error {
	return waitToken(context.Background(), s.client.Publish(topic, s.qos, false, payload))
}

func (s *mqttSession) Messages() <-chan Message {
	return s.messages
}

func (s *mqttSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.client.Disconnect(disconnectQuiesceMillis)
	})

	return nil
}

func waitToken(ctx context.Context, t mqtt.Token) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Done():
		return t.Error()
	}
}

// routePahoLogs sends the paho client's own warnings and errors through our logger.
func routePahoLogs(logger *zap.SugaredLogger) {
	pahoLogger, err := zap.NewStdLogAt(logger.Desugar().Named("paho"), zap.WarnLevel)
	if err != nil {
		logger.Warnf("failed routing mqtt client logs, ignoring, err: %s", err)

		return
	}

	mqtt.CRITICAL = pahoLogger
	mqtt.ERROR = pahoLogger
	mqtt.WARN = pahoLogger
}
