// Package diskcache is an LRU cache that reads and writes to the filesystem.
// Entries are keyed by arbitrary bytes (e.g. a request URL) and stored one file
// per key, named by the key's spooky hash.
package diskcache

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	spooky "github.com/dgryski/go-spooky"
)

const tmpSuffix = ".tmp"

var (
	// ErrNoSuchKey is returned by Cache.Get when a key does not exist in the cache
	ErrNoSuchKey = errors.New("key does not exist in cache")
)

// Options represents options for a cache
type Options struct {
	// MaxSize is the maximum total size of the cache in bytes; zero means unbounded
	MaxSize         int64
	BytesUntilFlush int64
}

// Cache represents a disk-based LRU cache
type Cache struct {
	Path            string
	opts            Options
	bytesSinceFlush int64 // bytes written since last flushCapacity
}

// Open creates a cache with contents stored as files in the given directory.
// It creates the directory if it does not already exist.
func Open(path string, opts Options) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		Path: path,
		opts: opts,
	}, nil
}

// Get looks up the value for the given key and returns it. If the key does not
// exist then ErrNoSuchKey is returned.
func (c *Cache) Get(key []byte) ([]byte, error) {
	buf, err := ioutil.ReadFile(c.pathFor(key))
	if os.IsNotExist(err) {
		return nil, ErrNoSuchKey
	}
	return buf, err
}

// Put adds a key/value pair to the cache. The value becomes visible atomically,
// so a concurrent or interrupted Put never leaves a truncated entry behind.
func (c *Cache) Put(key []byte, val []byte) error {
	c.bytesSinceFlush += int64(len(val))
	if c.opts.MaxSize > 0 && c.bytesSinceFlush > c.opts.BytesUntilFlush {
		if err := c.flushCapacity(int64(len(val))); err != nil {
			return fmt.Errorf("error cleaning up cache: %v", err)
		}
		c.bytesSinceFlush = 0
	}

	path := c.pathFor(key)
	tmp := path + tmpSuffix
	if err := ioutil.WriteFile(tmp, val, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// flushCapacity deletes old entries until there are at least n bytes left
// in the cache budget.
func (c *Cache) flushCapacity(n int64) error {
	entries, err := ioutil.ReadDir(c.Path)
	if err != nil {
		return err
	}

	var files []os.FileInfo
	var sum int64
	for _, f := range entries {
		if f.IsDir() || strings.HasSuffix(f.Name(), tmpSuffix) {
			continue
		}
		files = append(files, f)
		sum += f.Size()
	}

	if sum+n <= c.opts.MaxSize {
		return nil
	}

	sort.Sort(byModTime(files))

	for _, f := range files {
		if err := os.Remove(filepath.Join(c.Path, f.Name())); err != nil {
			return err
		}
		sum -= f.Size()
		if sum+n <= c.opts.MaxSize {
			break
		}
	}
	return nil
}

func (c *Cache) pathFor(key []byte) string {
	return filepath.Join(c.Path, hash(key))
}

type byModTime []os.FileInfo

func (xs byModTime) Len() int           { return len(xs) }
func (xs byModTime) Swap(i, j int)      { xs[i], xs[j] = xs[j], xs[i] }
func (xs byModTime) Less(i, j int) bool { return xs[i].ModTime().Before(xs[j].ModTime()) }

func hash(key []byte) string {
	return fmt.Sprintf("%016x", spooky.Hash64(key))
}
