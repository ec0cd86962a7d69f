// Package cache persists parsed book structures keyed by content hash.
// Validity is checked with an mtime+size fast path and a SHA-256 slow
// path, so a touched-but-unchanged file never forces a reparse.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/deckgen/deckgen/internal/book"
)

const (
	indexFile     = "index.json"
	booksDir      = "books"
	structureFile = "structure.json"

	// Version is bumped whenever the on-disk structure format changes;
	// mismatched entries are treated as misses.
	Version = "1.1"
)

// Metadata identifies the source file a cached structure belongs to.
type Metadata struct {
	FilePath     string    `json:"file_path"`
	FileHash     string    `json:"file_hash"`
	FileSize     int64     `json:"file_size"`
	FileMtime    int64     `json:"file_mtime"` // unix nanoseconds
	CachedAt     time.Time `json:"cached_at"`
	CacheVersion string    `json:"cache_version"`
}

// Structure is a parsed book without chapter content. Chapter raw bytes
// never reach disk; callers reparse when they need content.
type Structure struct {
	CacheMetadata        Metadata              `json:"cache_metadata"`
	BookMetadata         book.Metadata         `json:"book_metadata"`
	TOC                  []book.TOCEntry       `json:"toc,omitempty"`
	Chapters             []book.Chapter        `json:"chapters"`
	SpineOrder           []string              `json:"spine_order,omitempty"`
	SourceFormat         string                `json:"source_format"`
	ExtractionMethod     book.ExtractionMethod `json:"extraction_method"`
	ExtractionConfidence float64               `json:"extraction_confidence"`
}

// index maps absolute source paths to content hashes.
type index struct {
	Entries map[string]string `json:"entries"`
}

// Entry is one cached book as reported by List.
type Entry struct {
	Path string
	Hash string
}

// Manager owns one cache directory.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a manager rooted at dir. The directory is created
// lazily on first write.
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{root: dir, logger: logger}
}

// FileHash computes the SHA-256 digest of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached structure for path, or nil on any miss:
// unknown file, stale content, version mismatch, or unreadable entry.
func (m *Manager) Get(path string) *Structure {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}

	idx := m.loadIndex()
	hash, ok := idx.Entries[abs]
	if !ok {
		return nil
	}

	cached, err := m.readStructure(hash)
	if err != nil {
		m.logger.Warn("unreadable cache entry", "path", abs, "error", err)
		return nil
	}
	if cached.CacheMetadata.CacheVersion != Version {
		return nil
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil
	}

	// Fast path: same mtime and size means the file is unchanged.
	if cached.CacheMetadata.FileMtime == stat.ModTime().UnixNano() &&
		cached.CacheMetadata.FileSize == stat.Size() {
		return cached
	}

	// Slow path: mtime moved, confirm with the content hash.
	current, err := FileHash(path)
	if err != nil || current != cached.CacheMetadata.FileHash {
		return nil
	}

	// Unchanged content under a new mtime; refresh so the fast path
	// works next time.
	cached.CacheMetadata.FileMtime = stat.ModTime().UnixNano()
	if err := m.writeStructure(hash, cached); err != nil {
		m.logger.Warn("failed to refresh cache entry", "path", abs, "error", err)
	}
	return cached
}

// Put caches the structure of the parsed book at path.
func (m *Manager) Put(path string, parsed *book.ParsedBook) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	hash, err := FileHash(path)
	if err != nil {
		return err
	}

	// Chapters are stored without content (RawContent is not marshaled).
	structure := &Structure{
		CacheMetadata: Metadata{
			FilePath:     abs,
			FileHash:     hash,
			FileSize:     stat.Size(),
			FileMtime:    stat.ModTime().UnixNano(),
			CachedAt:     time.Now(),
			CacheVersion: Version,
		},
		BookMetadata:         parsed.Metadata,
		TOC:                  parsed.TOC,
		Chapters:             parsed.Chapters,
		SpineOrder:           parsed.SpineOrder,
		SourceFormat:         parsed.SourceFormat,
		ExtractionMethod:     parsed.ExtractionMethod,
		ExtractionConfidence: parsed.ExtractionConfidence,
	}

	if err := m.writeStructure(hash, structure); err != nil {
		return err
	}

	idx := m.loadIndex()
	idx.Entries[abs] = hash
	return m.saveIndex(idx)
}

// Clear removes the entire cache directory and reports how many books
// were evicted.
func (m *Manager) Clear() (int, error) {
	entries, err := os.ReadDir(filepath.Join(m.root, booksDir))
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read cache: %w", err)
	}
	count := len(entries)

	if err := os.RemoveAll(m.root); err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return count, nil
}

// List returns every indexed book, in no particular order.
func (m *Manager) List() []Entry {
	idx := m.loadIndex()
	entries := make([]Entry, 0, len(idx.Entries))
	for path, hash := range idx.Entries {
		entries = append(entries, Entry{Path: path, Hash: hash})
	}
	return entries
}

func (m *Manager) structurePath(hash string) string {
	return filepath.Join(m.root, booksDir, hash, structureFile)
}

func (m *Manager) readStructure(hash string) (*Structure, error) {
	data, err := os.ReadFile(m.structurePath(hash))
	if err != nil {
		return nil, err
	}
	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("malformed cache entry: %w", err)
	}
	return &s, nil
}

func (m *Manager) writeStructure(hash string, s *Structure) error {
	dir := filepath.Dir(m.structurePath(hash))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(m.structurePath(hash), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// loadIndex reads the index, tolerating absence and corruption; a bad
// index degrades to an empty cache rather than an error.
func (m *Manager) loadIndex() *index {
	idx := &index{Entries: map[string]string{}}
	data, err := os.ReadFile(filepath.Join(m.root, indexFile))
	if err != nil {
		return idx
	}
	if err := json.Unmarshal(data, idx); err != nil {
		m.logger.Warn("corrupt cache index, starting fresh", "error", err)
		return &index{Entries: map[string]string{}}
	}
	if idx.Entries == nil {
		idx.Entries = map[string]string{}
	}
	return idx
}

func (m *Manager) saveIndex(idx *index) error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.root, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache index: %w", err)
	}
	return nil
}
