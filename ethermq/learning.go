package ethermq

import (
	"net"

	lru "github.com/hashicorp/golang-lru/v2"
)

// learningTable remembers the hardware addresses of remote nodes so unicast frames can be sent to
// the owning node's topic rather than the whole segment.
type learningTable struct {
	cache *lru.Cache[NodeIdentity, struct{}]
}

func newLearningTable(size int) (*learningTable, error) {
	if size <= 0 {
		size = DefaultLearningTableSize
	}

	cache, err := lru.New[NodeIdentity, struct{}](size)
	if err != nil {
		return nil, err
	}

	return &learningTable{cache: cache}, nil
}

// learn records addr as a reachable remote node; group addresses are ignored.
func (t *learningTable) learn(addr net.HardwareAddr) {
	if !isUnicast(addr) {
		return
	}

	id, err := NewNodeIdentity(addr)
	if err != nil {
		return
	}

	t.cache.Add(id, struct{}{})
}

// topicFor returns the node topic for addr and true if addr has been learned.
func (t *learningTable) topicFor(addr net.HardwareAddr) (string, bool) {
	if !isUnicast(addr) {
		return "", false
	}

	id, err := NewNodeIdentity(addr)
	if err != nil {
		return "", false
	}

	if !t.cache.Contains(id) {
		return "", false
	}

	return id.String(), true
}
