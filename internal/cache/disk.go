// Package cache stores the results of earlier runs on disk, keyed by the
// hash of everything a run depends on.
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"weave/internal/diag"
	"weave/internal/project"
)

// SchemaVersion is bumped whenever Payload changes shape; older entries become misses.
const SchemaVersion uint16 = 1

// Disk хранит результаты запусков по ключу на диске.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the cached result of one run.
type Payload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16 `msgpack:"schema"`

	Text            string            `msgpack:"text"`
	Diagnostics     []diag.Diagnostic `msgpack:"diagnostics"`
	Transformations int               `msgpack:"transformations"`
	Created         time.Time         `msgpack:"created"`
}

// Key hashes the inputs of a run. Parts are hashed in the given order.
func Key(parts ...[]byte) project.Digest {
	digests := make([]project.Digest, 0, len(parts)+1)
	digests = append(digests, project.Sum([]byte{byte(SchemaVersion >> 8), byte(SchemaVersion)}))
	for _, p := range parts {
		digests = append(digests, project.Sum(p))
	}
	return project.Combine(digests...)
}

// Open returns a cache rooted at dir, creating it if needed.
func Open(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Disk) Dir() string { return c.dir }

func (c *Disk) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не держать все файлы в одном месте
	return filepath.Join(c.dir, "runs", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload. The write is atomic.
func (c *Disk) Put(key project.Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = SchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or an entry written with another
// schema is a miss.
func (c *Disk) Get(key project.Digest) (*Payload, bool, error) {
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

	var out Payload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	if out.Schema != SchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll invalidates the cache.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
