// Package memstore implements store.IStore in memory.
//
// Each keyspace is a concurrent map (xsync.MapOf). Hash fields live in a
// nested concurrent map, lists are slices guarded by a per-list mutex, so
// operations on different keys never contend.
package memstore
