// Package store provides the data set behind the extension together with its
// on-disk snapshot format.
//
// The package focuses on:
//   - A unified interface (IStore) for the key-value, hash and list keyspaces
//   - A binary snapshot codec (WriteSnapshot, ReadSnapshot) compatible with
//     the files written by earlier extension versions
//   - A Persister that saves and loads snapshot files, keeps rotating backups
//     and runs the automatic backup timer
//
// Key Components:
//
//   - IStore Interface: the operations the extension dispatches to. The only
//     implementation is the in-memory store in
//     "github.com/IDSolutions/ramdb/lib/store/memstore".
//
//   - Snapshot format: a little endian int32 format version (currently 1)
//     followed by three sections (key-value, hash, list). Every section starts
//     with an int32 entry count, strings are prefixed with their UTF-8 byte
//     length as 7-bit varint. Files are compressed with gzip (".gz") or
//     zstd (".zst"). A blake3 digest of the compressed file is written next to
//     it with the suffix ".b3" and verified on load when present.
//
//   - Error System: file and codec failures are reported as *Error with a
//     RetCode so callers can tell missing files from corrupt ones.
package store
