// Package cache holds lint verdicts between runs. The disk cache keys a
// file's issue list by content, configuration, and rule set, so unchanged
// files skip classification and rule execution entirely. An in-process LRU
// keeps zone partitions warm across watch-mode reruns.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"relint/internal/diag"
	"relint/internal/scan"
	"relint/internal/source"
)

// Increment when the Entry format changes; stale payloads turn into misses.
const schemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// HashBytes digests raw file content.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// Key derives the cache key for one file: its content plus everything
// that can change the verdict without the content changing. The format
// is part of the key because the same bytes lint differently as code
// and as markdown.
func Key(content []byte, format source.Format, configFingerprint string, ruleIDs []string) Digest {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0, byte(format), 0})
	io.WriteString(h, configFingerprint)
	for _, id := range ruleIDs {
		io.WriteString(h, "\x00")
		io.WriteString(h, id)
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// IssueRecord is the serialized form of one issue. Spans are stored as
// bare offsets; the file id is rebound on the run that reads the entry.
// Fixes are not cached: fix mode always lints fresh.
type IssueRecord struct {
	Rule     string
	Severity uint8
	Message  string
	Start    uint32
	End      uint32
}

// Entry is the disk payload for one file's verdict.
type Entry struct {
	Schema uint16
	Issues []IssueRecord
}

// Pack converts a file's issues into a cacheable entry.
func Pack(issues []diag.Issue) *Entry {
	e := &Entry{Schema: schemaVersion}
	e.Issues = make([]IssueRecord, len(issues))
	for i, is := range issues {
		e.Issues[i] = IssueRecord{
			Rule:     is.Rule,
			Severity: uint8(is.Severity),
			Message:  is.Message,
			Start:    is.Primary.Start,
			End:      is.Primary.End,
		}
	}
	return e
}

// Unpack rehydrates the entry's issues against the current run's file id.
func (e *Entry) Unpack(file source.FileID) []diag.Issue {
	out := make([]diag.Issue, len(e.Issues))
	for i, rec := range e.Issues {
		out[i] = diag.Issue{
			Rule:     rec.Rule,
			Severity: diag.Severity(rec.Severity),
			Message:  rec.Message,
			Primary:  source.Span{File: file, Start: rec.Start, End: rec.End},
		}
	}
	return out
}

// Disk is an on-disk verdict cache. Safe for concurrent use. A nil Disk
// is valid and behaves as an always-miss cache.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the cache under $XDG_CACHE_HOME/<app> (or
// ~/.cache/<app> when unset).
func Open(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes the cache at an explicit directory.
func OpenAt(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

func (c *Disk) pathFor(key Digest) string {
	return filepath.Join(c.dir, "runs", key.String()+".mp")
}

// Put serializes and writes an entry. The write is atomic: a temp file
// in the target directory renamed into place.
func (c *Disk) Put(key Digest, entry *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads an entry. A missing key or a schema mismatch is a miss, not
// an error.
func (c *Disk) Get(key Digest) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != schemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll invalidates everything, e.g. after a version upgrade.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// IndexKey identifies one classified partition. The format is part of
// the key: the same bytes classify differently as code and as markdown.
type IndexKey struct {
	Content Digest
	Format  source.Format
}

// IndexCache keeps recently computed zone partitions, so watch-mode
// reruns skip reclassifying unchanged files. Partitions are stored
// without file identity; callers rebind them to the current run's file
// (scan.IndexFromZones), so a hit never leaks another file's id or a
// previous run's file handle into issue spans.
type IndexCache struct {
	lru *lru.Cache[IndexKey, []scan.Zone]
}

// NewIndexCache builds a cache holding up to size partitions.
func NewIndexCache(size int) (*IndexCache, error) {
	inner, err := lru.New[IndexKey, []scan.Zone](size)
	if err != nil {
		return nil, err
	}
	return &IndexCache{lru: inner}, nil
}

// Get returns the cached partition for a key, if present. A nil cache
// always misses.
func (c *IndexCache) Get(key IndexKey) ([]scan.Zone, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// Put stores a partition under a key.
func (c *IndexCache) Put(key IndexKey, zones []scan.Zone) {
	if c == nil {
		return
	}
	c.lru.Add(key, zones)
}
