package ethermq

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const waitTimeout = 2 * time.Second

var (
	ownMAC       = net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}
	otherMAC     = net.HardwareAddr{0xba, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb}
	thirdMAC     = net.HardwareAddr{0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc}
	broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	multicastMAC = net.HardwareAddr{0x01, 0x00, 0x5e, 0x00, 0x00, 0xfb}

	// group bit set in the first octet, easy to mistake for a unicast address
	groupMAC = net.HardwareAddr{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb}

	errBoom = errors.New("boom")
)

// makeFrame builds a tap frame: packet info prefix, ethernet header (arp) and payload.
func makeFrame(dst, src net.HardwareAddr, payload ...byte) Frame {
	f := []byte{0x00, 0x00, 0x08, 0x06}
	f = append(f, dst...)
	f = append(f, src...)
	f = append(f, 0x08, 0x06)
	f = append(f, payload...)

	return Frame(f)
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	return zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)).Sugar()
}

func mustIdentity(t *testing.T, addr net.HardwareAddr) NodeIdentity {
	t.Helper()

	id, err := NewNodeIdentity(addr)
	require.NoError(t, err)

	return id
}

func receiveWithin[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting on channel")
	}

	var zero T

	return zero
}

func requireNothingOn[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case v := <-ch:
		t.Fatalf("expected nothing on channel, got %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeInterface struct {
	name string
	addr net.HardwareAddr

	reads    chan []byte
	readErrs chan error
	writes   chan []byte

	// failWrites is the number of upcoming writes that fail
	failWrites atomic.Int32

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeInterface(addr net.HardwareAddr) *fakeInterface {
	return &fakeInterface{
		name:     "tap-test",
		addr:     addr,
		reads:    make(chan []byte, 64),
		readErrs: make(chan error, 1),
		writes:   make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

func (f *fakeInterface) Name() string {
	return f.name
}

func (f *fakeInterface) HardwareAddr() net.HardwareAddr {
	return f.addr
}

func (f *fakeInterface) Read(b []byte) (int, error) {
	select {
	case data := <-f.reads:
		return copy(b, data), nil
	case err := <-f.readErrs:
		return 0, err
	case <-f.closed:
		return 0, os.ErrClosed
	}
}

func (f *fakeInterface) Write(b []byte) (int, error) {
	if f.failWrites.Load() > 0 {
		f.failWrites.Add(-1)

		return 0, errBoom
	}

	f.writes <- append([]byte(nil), b...)

	return len(b), nil
}

func (f *fakeInterface) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
	})

	return nil
}

func (f *fakeInterface) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

type fakeSession struct {
	messages  chan Message
	published chan Message

	publishErr   error
	subscribeErr error

	topicsLock sync.Mutex
	topics     []string

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		messages:  make(chan Message, 64),
		published: make(chan Message, 64),
		closed:    make(chan struct{}),
	}
}

func (s *fakeSession) Subscribe(topics ...string) error {
	if s.subscribeErr != nil {
		return s.subscribeErr
	}

	s.topicsLock.Lock()
	defer s.topicsLock.Unlock()

	s.topics = append(s.topics, topics...)

	return nil
}

func (s *fakeSession) subscribed() []string {
	s.topicsLock.Lock()
	defer s.topicsLock.Unlock()

	return append([]string(nil), s.topics...)
}

func (s *fakeSession) Publish(topic, payload string) error {
	if s.publishErr != nil {
		return s.publishErr
	}

	s.published <- Message{Topic: topic, Payload: []byte(payload)}

	return nil
}

func (s *fakeSession) Messages() <-chan Message {
	return s.messages
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})

	return nil
}

func (s *fakeSession) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// deliver queues frame f as a message on topic, as the broker would.
func (s *fakeSession) deliver(topic string, f Frame) {
	s.messages <- Message{Topic: topic, Payload: []byte(EncodeFrame(f))}
}
