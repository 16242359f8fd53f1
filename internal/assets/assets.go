// Package assets resolves blockstate, model, face and texture documents from
// layered asset roots.
package assets

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"

	"github.com/Faultbox/blockctm/internal/engine/variant"
)

var (
	// ErrNotFound is returned when no root provides an asset.
	ErrNotFound = errors.New("asset not found")
	// ErrMalformed is returned when an asset fails to decode or validate.
	ErrMalformed = errors.New("malformed asset")
)

// compressedExt marks zstd-compressed files. A request for "a.json" is
// served from "a.json.zst" when only the compressed file exists.
const compressedExt = ".zst"

// decoder is shared; DecodeAll is safe for concurrent use.
var decoder = mustDecoder(zstd.WithDecoderConcurrency(0))

func mustDecoder(opts ...zstd.DOption) *zstd.Decoder {
	d, err := zstd.NewReader(nil, opts...)
	if err != nil {
		panic(fmt.Sprintf("assets: zstd decoder: %v", err))
	}
	return d
}

// Manager handles asset loading from layered roots.
type Manager struct {
	roots   []fs.FS
	closers []io.Closer
	cache   *Cache
	mu      sync.RWMutex

	facesMu sync.Mutex
	faces   map[string]*variant.Face
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		faces: make(map[string]*variant.Face),
	}
}

// AddRoot adds an asset root. Roots are searched in reverse order (last
// added = highest priority).
func (m *Manager) AddRoot(root fs.FS) {
	m.mu.Lock()
	m.roots = append(m.roots, root)
	m.mu.Unlock()
}

// AddDir adds a directory on disk as an asset root.
func (m *Manager) AddDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening asset root %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset root %s is not a directory", path)
	}
	m.AddRoot(os.DirFS(path))
	return nil
}

// AddArchive adds a zip resource pack as an asset root.
func (m *Manager) AddArchive(path string) error {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.roots = append(m.roots, archive)
	m.closers = append(m.closers, archive)
	m.mu.Unlock()

	return nil
}

// AddPath adds path as a directory root, or as an archive when it is a
// regular file.
func (m *Manager) AddPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening asset root %s: %w", path, err)
	}
	if info.IsDir() {
		return m.AddDir(path)
	}
	return m.AddArchive(path)
}

// Load loads a file from the roots.
func (m *Manager) Load(path string) ([]byte, error) {
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: invalid path %q", ErrNotFound, path)
	}

	// Check cache first
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Search roots in reverse order
	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := m.read(m.roots[i], path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.cache.Set(path, data)
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (m *Manager) read(root fs.FS, path string) ([]byte, error) {
	data, err := fs.ReadFile(root, path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	compressed, err := fs.ReadFile(root, path+compressedExt)
	if err != nil {
		return nil, err
	}
	data, err = decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing %s: %v", ErrMalformed, path+compressedExt, err)
	}
	return data, nil
}

// Reset drops cached files and faces so the next lookups read the roots
// again.
func (m *Manager) Reset() {
	m.cache.Clear()
	m.facesMu.Lock()
	m.faces = make(map[string]*variant.Face)
	m.facesMu.Unlock()
}

// Close closes all archives and drops every root.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	for _, c := range m.closers {
		err = multierr.Append(err, c.Close())
	}
	m.roots = nil
	m.closers = nil
	m.cache.Clear()
	return err
}

// Stats returns file cache hits and misses over every asset kind.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Totals()
}

// KindStats returns file cache lookups for one asset kind, e.g. KindFace.
func (m *Manager) KindStats(kind string) CacheStats {
	return m.cache.Stats(kind)
}
