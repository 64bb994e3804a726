package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the in-memory data set of the extension. It holds three
// independent keyspaces: plain key-value strings, hashes (field -> value)
// and lists. The same key may exist in more than one keyspace.
//
// Values are opaque strings, usually literals already encoded by the caller.
// All methods are safe for concurrent use.
type IStore interface {
	// Exists returns how many of the keys exist, counting a key once per
	// keyspace it occurs in.
	Exists(keys ...string) int
	// Del removes the keys from all keyspaces and returns the number of removals.
	Del(keys ...string) int

	// Set inserts or replaces a value.
	Set(key, value string)
	// Get returns the value of key.
	Get(key string) (value string, ok bool)
	// IncrBy adds delta to the integer stored at key. Missing or non numeric
	// values count as 0. Returns the new value.
	IncrBy(key string, delta int64) int64
	// IncrByFloat is IncrBy for floating point values.
	IncrByFloat(key string, delta float64) float64

	// HSet sets field in the hash at key and reports whether the field is new.
	HSet(key, field, value string) (created bool)
	// HMSet sets every field/value pair and returns the number of new fields.
	HMSet(key string, pairs map[string]string) (created int)
	// HGet returns a field of the hash at key.
	HGet(key, field string) (value string, ok bool)
	// HGetAll returns the hash at key as flat field/value list ordered by field.
	HGetAll(key string) []string
	// HDel removes fields and returns how many existed.
	HDel(key string, fields ...string) int
	// HExists reports whether field exists in the hash at key.
	HExists(key, field string) bool
	// HLen returns the number of fields of the hash at key.
	HLen(key string) int
	// HKeys returns the fields of the hash at key in order.
	HKeys(key string) []string
	// HVals returns the values of the hash at key ordered by field.
	HVals(key string) []string
	// HIncrBy is IncrBy on a hash field.
	HIncrBy(key, field string, delta int64) int64
	// HIncrByFloat is IncrByFloat on a hash field.
	HIncrByFloat(key, field string, delta float64) float64

	// LPush prepends values one by one and returns the new length.
	LPush(key string, values ...string) int
	// RPush appends values and returns the new length.
	RPush(key string, values ...string) int
	// LPop removes up to count values from the head.
	// ok is false if the list is missing or empty.
	LPop(key string, count int) (values []string, ok bool)
	// RPop removes up to count values from the tail, last value first.
	RPop(key string, count int) (values []string, ok bool)
	// LRange returns the values from start to end inclusive. Negative
	// indices count from the tail, so end -1 is the last value.
	LRange(key string, start, end int) []string
	// LIndex returns the value at index. Negative indices count from the tail.
	LIndex(key string, index int) (value string, ok bool)
	// LLen returns the length of the list at key.
	LLen(key string) int
	// LInsert inserts value before or after the first occurrence of pivot.
	// Returns the new length, 0 if the list is missing and -1 if pivot is not found.
	LInsert(key string, before bool, pivot, value string) int
	// LRem removes occurrences of value. count > 0 removes from the head,
	// count < 0 from the tail, 0 removes all. Returns the number removed.
	LRem(key string, count int, value string) int
	// LSet replaces the value at index. ok is false if the index is out of range.
	LSet(key string, index int, value string) (ok bool)
	// LTrim keeps only the values from start to end inclusive. Negative indices
	// count from the tail and are clamped. ok is false if the list is missing or empty.
	LTrim(key string, start, end int) (ok bool)

	// Export returns a copy of the whole data set.
	Export() *Data
	// Import replaces the whole data set.
	Import(data *Data)
	// Info returns the number of keys per keyspace.
	Info() Info
}

// Data is a detached copy of a store's content.
type Data struct {
	KV     map[string]string
	Hashes map[string]map[string]string
	Lists  map[string][]string
}

// NewData returns an empty data set.
func NewData() *Data {
	return &Data{
		KV:     make(map[string]string),
		Hashes: make(map[string]map[string]string),
		Lists:  make(map[string][]string),
	}
}

// Info holds per keyspace key counts.
type Info struct {
	Keys   int `json:"keys"`
	Hashes int `json:"hashes"`
	Lists  int `json:"lists"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying error, may be nil.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code and message around err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Command executed successfully.
	RetCInternalError                     // 1: Command failed due to an internal error (I/O, codec).
	RetCNotFound                          // 2: The requested file or entry does not exist.
	RetCInvalidOperation                  // 3: Invalid operation.
	RetCUnsupportedVersion                // 4: Snapshot was written by an unsupported format version.
	RetCChecksumMismatch                  // 5: Snapshot content does not match its checksum.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCNotFound:
		return "NotFound"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCUnsupportedVersion:
		return "UnsupportedVersion"
	case RetCChecksumMismatch:
		return "ChecksumMismatch"
	default:
		return "Unknown"
	}
}
