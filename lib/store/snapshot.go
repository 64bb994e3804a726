package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
)

// SnapshotVersion is the format version written by WriteSnapshot.
const SnapshotVersion int32 = 1

// maxStringLen bounds a single decoded string.
const maxStringLen = 1 << 30

// --------------------------------------------------------------------------
// Writer
// --------------------------------------------------------------------------

type snapshotWriter struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func (sw *snapshotWriter) int32(v int32) {
	if sw.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(sw.buf[:4], uint32(v))
	_, sw.err = sw.w.Write(sw.buf[:4])
}

func (sw *snapshotWriter) count(n int) {
	if n > math.MaxInt32 && sw.err == nil {
		sw.err = fmt.Errorf("section too large: %d entries", n)
	}
	sw.int32(int32(n))
}

func (sw *snapshotWriter) string(s string) {
	if sw.err != nil {
		return
	}
	n := binary.PutUvarint(sw.buf[:], uint64(len(s)))
	if _, sw.err = sw.w.Write(sw.buf[:n]); sw.err != nil {
		return
	}
	_, sw.err = sw.w.WriteString(s)
}

// WriteSnapshot encodes d in snapshot format. Keys are written in sorted
// order so equal data sets produce equal snapshots.
func WriteSnapshot(w io.Writer, d *Data) error {
	sw := &snapshotWriter{w: bufio.NewWriter(w)}
	sw.int32(SnapshotVersion)

	sw.count(len(d.KV))
	for _, k := range sortedKeys(d.KV) {
		sw.string(k)
		sw.string(d.KV[k])
	}

	sw.count(len(d.Hashes))
	for _, k := range sortedKeys(d.Hashes) {
		h := d.Hashes[k]
		sw.string(k)
		sw.count(len(h))
		for _, f := range sortedKeys(h) {
			sw.string(f)
			sw.string(h[f])
		}
	}

	sw.count(len(d.Lists))
	for _, k := range sortedKeys(d.Lists) {
		l := d.Lists[k]
		sw.string(k)
		sw.count(len(l))
		for _, v := range l {
			sw.string(v)
		}
	}

	if sw.err != nil {
		return WrapError(RetCInternalError, "write snapshot", sw.err)
	}
	if err := sw.w.Flush(); err != nil {
		return WrapError(RetCInternalError, "write snapshot", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Reader
// --------------------------------------------------------------------------

type snapshotReader struct {
	r   *bufio.Reader
	buf [4]byte
	err error
}

func (sr *snapshotReader) int32() int32 {
	if sr.err != nil {
		return 0
	}
	if _, sr.err = io.ReadFull(sr.r, sr.buf[:]); sr.err != nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(sr.buf[:]))
}

func (sr *snapshotReader) count() int {
	n := sr.int32()
	if n < 0 && sr.err == nil {
		sr.err = fmt.Errorf("negative entry count %d", n)
	}
	if sr.err != nil {
		return 0
	}
	return int(n)
}

func (sr *snapshotReader) string() string {
	if sr.err != nil {
		return ""
	}
	n, err := binary.ReadUvarint(sr.r)
	if err != nil {
		sr.err = err
		return ""
	}
	if n > maxStringLen {
		sr.err = fmt.Errorf("string length %d exceeds limit", n)
		return ""
	}
	b := make([]byte, n)
	if _, sr.err = io.ReadFull(sr.r, b); sr.err != nil {
		return ""
	}
	return string(b)
}

// ReadSnapshot decodes a snapshot. A version other than SnapshotVersion
// yields an *Error with RetCUnsupportedVersion.
func ReadSnapshot(r io.Reader) (*Data, error) {
	sr := &snapshotReader{r: bufio.NewReader(r)}

	version := sr.int32()
	if sr.err != nil {
		return nil, WrapError(RetCInternalError, "read snapshot header", sr.err)
	}
	if version != SnapshotVersion {
		return nil, NewError(RetCUnsupportedVersion, fmt.Sprintf("unsupported snapshot format version %d", version))
	}

	d := NewData()

	for i, n := 0, sr.count(); i < n && sr.err == nil; i++ {
		k := sr.string()
		d.KV[k] = sr.string()
	}

	for i, n := 0, sr.count(); i < n && sr.err == nil; i++ {
		k := sr.string()
		fields := sr.count()
		h := make(map[string]string, min(fields, 1024))
		for j := 0; j < fields && sr.err == nil; j++ {
			f := sr.string()
			h[f] = sr.string()
		}
		d.Hashes[k] = h
	}

	for i, n := 0, sr.count(); i < n && sr.err == nil; i++ {
		k := sr.string()
		items := sr.count()
		l := make([]string, 0, min(items, 1024))
		for j := 0; j < items && sr.err == nil; j++ {
			l = append(l, sr.string())
		}
		d.Lists[k] = l
	}

	if sr.err != nil {
		if errors.Is(sr.err, io.EOF) {
			sr.err = io.ErrUnexpectedEOF
		}
		return nil, WrapError(RetCInternalError, "read snapshot", sr.err)
	}
	return d, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
