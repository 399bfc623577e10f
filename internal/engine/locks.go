package engine

import "sync"

const orderLockShards = 64

// orderLocks serializes status and evidence mutations per order id. Two
// orders hashing to the same shard serialize unnecessarily.
type orderLocks [orderLockShards]sync.Mutex

func (l *orderLocks) lock(orderID int64) func() {
	m := &l[uint64(orderID)%orderLockShards]
	m.Lock()
	return m.Unlock
}
