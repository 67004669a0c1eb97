// Package zxid decomposes ZooKeeper transaction ids for diagnostics. A zxid
// is a 64-bit number: the high 32 bits are the leader epoch, the low 32 bits
// a counter the leader increments per proposal. Rendering the two halves
// separately makes it obvious in logs when a stat's mzxid crossed a leader
// election.
package zxid

import "fmt"

type ZXID int64

func New(epoch, counter int32) ZXID {
	return ZXID(int64(epoch)<<32 | int64(uint32(counter)))
}

// Epoch returns the leader epoch from the high 32 bits.
func (z ZXID) Epoch() int32 {
	return int32(z >> 32)
}

// Counter returns the proposal counter from the low 32 bits.
func (z ZXID) Counter() int32 {
	return int32(z & 0xFFFFFFFF)
}

// String renders the zxid as "epoch.counter" so log lines show a leader
// election as an epoch bump instead of one opaque number.
func (z ZXID) String() string {
	return fmt.Sprintf("%d.%d", z.Epoch(), z.Counter())
}
