package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps cache entries as plain files below a directory,
// typically ~/.cache/ascompose. Screenshot and video payloads are
// stored verbatim with a small expiry header, so a warm cache costs no
// more disk than the media itself.
type FileCache struct {
	dir string
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Entry layout: 8 bytes big-endian unix seconds of the expiry time
// (0 = never expires), followed by the raw payload.
const headerLen = 8

// Get reads an entry. Expired or corrupt entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fname := c.entryPath(key)

	raw, err := os.ReadFile(fname)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < headerLen {
		_ = os.Remove(fname)
		return nil, false, nil
	}

	expiry := int64(binary.BigEndian.Uint64(raw[:headerLen]))
	if expiry != 0 && time.Now().Unix() >= expiry {
		_ = os.Remove(fname)
		return nil, false, nil
	}
	return raw[headerLen:], true, nil
}

// Set writes an entry. A TTL of 0 stores it without expiry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var header [headerLen]byte
	if ttl > 0 {
		binary.BigEndian.PutUint64(header[:], uint64(time.Now().Add(ttl).Unix()))
	}

	fname := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return err
	}
	return os.WriteFile(fname, append(header[:], data...), 0644)
}

// Delete removes an entry, tolerating keys that were never stored.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error {
	return nil
}

// entryPath maps a key to its file, fanning entries out over 256
// subdirectories so large media caches stay listable.
func (c *FileCache) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, name[:2], name[2:])
}

var _ Cache = (*FileCache)(nil)
