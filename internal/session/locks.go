package session

import (
	"hash/fnv"
	"sync"
)

// keyedLocks serializes mutations per session id with a fixed set of
// striped mutexes, so the lock table stays bounded no matter how many
// sessions come and go.
type keyedLocks struct {
	shards [64]sync.Mutex
}

func (l *keyedLocks) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	m := &l.shards[h.Sum32()%uint32(len(l.shards))]
	m.Lock()
	return m
}
