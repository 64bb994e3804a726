// Package extension hosts the ArmaRAMDb extension: the function table the
// game calls into, backed by a store.IStore.
//
// Every call returns a result string and a status code:
//
//	100  write operation succeeded
//	200  read operation succeeded
//	-1   error, or the key/field/index was not found ("NotFound")
//
// Results larger than the output buffer are not truncated when the caller can
// receive callbacks. They are split into chunk frames (see ramdb.Frame) sent
// to the registered callback, and the call itself answers "OK".
//
// Keys may use the placeholder "_SP_PLAYER_" (or the prefix "_SP_PLAYER_:")
// which resolves to the Steam id of the calling context. An empty key
// resolves to the Steam id as well.
package extension
