// Package util holds small concurrency and bookkeeping helpers shared by the
// library packages.
//
//   - MapHeap: a min-heap addressable by key, used to expire stale state
//     (e.g. incomplete chunk transfers) in deadline order.
//   - LockFreeMPSC: an unbounded multi-producer single-consumer queue, used to
//     decouple callers from background workers (e.g. queued remote execs).
package util
