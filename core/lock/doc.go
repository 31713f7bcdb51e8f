// Package lock provides the shared single-flight lock that keeps sync runs from
// overlapping.
//
// A Locker hands out a lease to one owner at a time. MemoryLocker covers a single
// process; DBLocker stores the lease in the sync_locks table so every process sharing
// the database sees it. Leases expire after their TTL so a crashed owner never blocks
// later runs forever.
package lock
