package ethermq

// Message is one message delivered by the backhaul session.
type Message struct {
	Topic   string
	Payload []byte
}

// Session is a publish/subscribe session with the backhaul. Reconnecting and delivery guarantees
// are the session's job; a bridge only publishes and consumes.
type Session interface {
	// Subscribe subscribes the session to topics; messages show up on Messages.
	Subscribe(topics ...string) error
	// Publish publishes payload to topic.
	Publish(topic, payload string) error
	// Messages returns the stream of messages from subscribed topics, in arrival order per topic.
	Messages() <-chan Message
	// Close closes the session.
	Close() error
}
