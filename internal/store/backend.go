package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind names one of the three dataset documents
type Kind string

const (
	KindDoctors         Kind = "doctors"
	KindAppointments    Kind = "appointments"
	KindReportSummaries Kind = "report_summaries"
)

// Kinds lists every dataset kind
var Kinds = []Kind{KindDoctors, KindAppointments, KindReportSummaries}

// ErrNoDocument is returned by a Backend when a dataset has never been written
var ErrNoDocument = errors.New("dataset document absent")

// Backend reads and writes whole serialized dataset documents
type Backend interface {
	Read(ctx context.Context, kind Kind) ([]byte, error)
	Write(ctx context.Context, kind Kind, data []byte) error
}

// FileBackend keeps each dataset as a JSON file in one directory
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory is created on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Dir returns the dataset directory
func (b *FileBackend) Dir() string {
	return b.dir
}

// Path returns the file backing kind
func (b *FileBackend) Path(kind Kind) string {
	return filepath.Join(b.dir, FileName(kind))
}

// IsDatasetFile reports whether name is the file of a dataset kind. The
// comparison ignores case so case-insensitive filesystems are covered.
func IsDatasetFile(name string) bool {
	for _, kind := range Kinds {
		if strings.EqualFold(name, FileName(kind)) {
			return true
		}
	}
	return false
}

// FileName maps a kind to its file name inside the dataset directory
func FileName(kind Kind) string {
	switch kind {
	case KindReportSummaries:
		return "reports_summary.json"
	default:
		return string(kind) + ".json"
	}
}

func (b *FileBackend) Read(_ context.Context, kind Kind) ([]byte, error) {
	data, err := os.ReadFile(b.Path(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return data, nil
}

func (b *FileBackend) Write(_ context.Context, kind Kind, data []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	if err := os.WriteFile(b.Path(kind), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

// MemoryBackend keeps documents in memory. Used by tests and the CLI dry runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[Kind][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[Kind][]byte)}
}

func (b *MemoryBackend) Read(_ context.Context, kind Kind) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.docs[kind]
	if !ok {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), data...), nil
}

func (b *MemoryBackend) Write(_ context.Context, kind Kind, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[kind] = append([]byte(nil), data...)
	return nil
}

// Put seeds a raw document, bypassing serialization
func (b *MemoryBackend) Put(kind Kind, raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[kind] = []byte(raw)
}
