package store

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/zeebo/blake3"
)

var log = logger.GetLogger("store")

// checksumSuffix is appended to a snapshot path to name its digest file.
const checksumSuffix = ".b3"

// backupTimeLayout formats the timestamp in backup file names.
const backupTimeLayout = "20060102_150405"

// PersistConfig configures where and how snapshots are stored.
type PersistConfig struct {
	// Dir is the base directory, relative paths are resolved against it.
	Dir string
	// File is the snapshot file. The extension selects the compression:
	// ".zst" for zstd, gzip otherwise.
	File string
	// BackupDir is the directory of timestamped backups.
	BackupDir string
	// MaxBackups is the number of backups kept by PruneBackups. 0 keeps all.
	MaxBackups int
	// BackupInterval enables automatic backups when > 0.
	BackupInterval time.Duration
}

// DefaultPersistConfig returns the layout used by the extension: "@ramdb/data.rdb.gz"
// with backups in "@ramdb/backups".
func DefaultPersistConfig() PersistConfig {
	return PersistConfig{
		Dir:       "@ramdb",
		File:      "data.rdb.gz",
		BackupDir: "backups",
	}
}

// Persister saves and loads an IStore.
type Persister struct {
	store IStore
	cfg   PersistConfig

	mu   sync.Mutex // serializes file operations
	now  func() time.Time
	stop chan struct{}
	done chan struct{}
}

// NewPersister creates a persister for s.
func NewPersister(s IStore, cfg PersistConfig) *Persister {
	return &Persister{
		store: s,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Path returns the snapshot file path.
func (p *Persister) Path() string {
	return p.resolve(p.cfg.File)
}

func (p *Persister) backupDir() string {
	return p.resolve(p.cfg.BackupDir)
}

func (p *Persister) resolve(path string) string {
	if filepath.IsAbs(path) || p.cfg.Dir == "" {
		return path
	}
	return filepath.Join(p.cfg.Dir, path)
}

// --------------------------------------------------------------------------
// Save / Load
// --------------------------------------------------------------------------

// Save writes the snapshot file. With backup set a timestamped copy is also
// written to the backup directory and its path returned.
func (p *Persister) Save(backup bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.store.Export()

	if err := writeSnapshotFile(p.Path(), data); err != nil {
		log.Errorf("error while saving snapshot: %v", err)
		return "", err
	}
	if !backup {
		log.Infof("snapshot saved to %s", p.Path())
		return "", nil
	}

	name := "data_" + p.now().UTC().Format(backupTimeLayout) + ".rdb" + compressionSuffix(p.cfg.File)
	path := filepath.Join(p.backupDir(), name)
	if err := writeSnapshotFile(path, data); err != nil {
		log.Errorf("error while writing backup: %v", err)
		return "", err
	}
	log.Infof("snapshot saved to %s (backup: %s)", p.Path(), path)
	return path, nil
}

// Load replaces the store content with the snapshot at path. A relative
// path is resolved against the base directory. The store is left untouched
// on error.
func (p *Persister) Load(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path = p.resolve(path)
	data, err := readSnapshotFile(path)
	if err != nil {
		log.Errorf("error while loading snapshot: %v", err)
		return err
	}
	p.store.Import(data)
	info := p.store.Info()
	log.Infof("snapshot loaded from %s (%d keys, %d hashes, %d lists)", path, info.Keys, info.Hashes, info.Lists)
	return nil
}

// LoadExisting loads the snapshot file if it exists.
func (p *Persister) LoadExisting() (bool, error) {
	if _, err := os.Stat(p.Path()); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := p.Load(p.cfg.File); err != nil {
		return false, err
	}
	return true, nil
}

// --------------------------------------------------------------------------
// Backups
// --------------------------------------------------------------------------

// Backups returns the backup file names, newest first.
func (p *Persister) Backups() ([]string, error) {
	entries, err := os.ReadDir(p.backupDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapError(RetCInternalError, "list backups", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "data_") || strings.HasSuffix(name, checksumSuffix) {
			continue
		}
		if !strings.Contains(name, ".rdb") {
			continue
		}
		names = append(names, name)
	}
	// the timestamp layout sorts lexicographically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// PruneBackups deletes all but the MaxBackups newest backups and returns
// how many were deleted.
func (p *Persister) PruneBackups() (int, error) {
	if p.cfg.MaxBackups <= 0 {
		return 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	names, err := p.Backups()
	if err != nil || len(names) <= p.cfg.MaxBackups {
		return 0, err
	}

	deleted := 0
	for _, name := range names[p.cfg.MaxBackups:] {
		path := filepath.Join(p.backupDir(), name)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deleted, WrapError(RetCInternalError, "delete backup "+name, err)
		}
		_ = os.Remove(path + checksumSuffix)
		deleted++
		log.Infof("deleted backup file %s", name)
	}
	return deleted, nil
}

// Backup writes a backup and prunes old ones. It is what the automatic
// backup timer runs.
func (p *Persister) Backup() error {
	if _, err := p.Save(true); err != nil {
		return err
	}
	_, err := p.PruneBackups()
	return err
}

// StartAutoBackup starts the backup timer if BackupInterval is set.
// Calling it twice has no effect.
func (p *Persister) StartAutoBackup() {
	if p.cfg.BackupInterval <= 0 || p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(p.cfg.BackupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := p.Backup(); err != nil {
					log.Errorf("automatic backup failed: %v", err)
				}
			}
		}
	}(p.stop, p.done)

	log.Infof("automatic backup initialized (every %s, keep %d)", p.cfg.BackupInterval, p.cfg.MaxBackups)
}

// Close stops the backup timer and writes a final snapshot with backup.
func (p *Persister) Close() error {
	if p.stop != nil {
		close(p.stop)
		<-p.done
		p.stop = nil
	}
	return p.Backup()
}

// --------------------------------------------------------------------------
// Files
// --------------------------------------------------------------------------

func compressionSuffix(file string) string {
	if strings.HasSuffix(file, ".zst") {
		return ".zst"
	}
	return ".gz"
}

// writeSnapshotFile encodes and compresses data, then replaces path and its
// digest file via rename.
func writeSnapshotFile(path string, data *Data) error {
	var buf bytes.Buffer
	if err := compress(&buf, compressionSuffix(path), data); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WrapError(RetCInternalError, "create directory", err)
	}
	sum := blake3.Sum256(buf.Bytes())
	if err := writeFileAtomic(path+checksumSuffix, []byte(hex.EncodeToString(sum[:])+"\n")); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func compress(w io.Writer, suffix string, data *Data) error {
	var zw io.WriteCloser
	if suffix == ".zst" {
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return WrapError(RetCInternalError, "create zstd encoder", err)
		}
		zw = enc
	} else {
		zw = gzip.NewWriter(w)
	}

	if err := WriteSnapshot(zw, data); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return WrapError(RetCInternalError, "compress snapshot", err)
	}
	return nil
}

func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return WrapError(RetCInternalError, "write "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return WrapError(RetCInternalError, "rename "+tmp, err)
	}
	return nil
}

// readSnapshotFile verifies the digest (if present), decompresses and decodes path.
func readSnapshotFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, WrapError(RetCNotFound, "snapshot file not found: "+path, err)
	}
	if err != nil {
		return nil, WrapError(RetCInternalError, "read "+path, err)
	}

	if want, err := os.ReadFile(path + checksumSuffix); err == nil {
		sum := blake3.Sum256(raw)
		if got := hex.EncodeToString(sum[:]); got != strings.TrimSpace(string(want)) {
			return nil, NewError(RetCChecksumMismatch, fmt.Sprintf("checksum mismatch for %s", path))
		}
	}

	var r io.Reader
	if compressionSuffix(path) == ".zst" {
		dec, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, WrapError(RetCInternalError, "create zstd decoder", err)
		}
		defer dec.Close()
		r = dec
	} else {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, WrapError(RetCInternalError, "open gzip stream", err)
		}
		defer zr.Close()
		r = zr
	}

	return ReadSnapshot(r)
}
