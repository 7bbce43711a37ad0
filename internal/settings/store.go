// Package settings persists the handful of user settings that survive a
// power cycle: pattern index, brightness and LED count.
package settings

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const Namespace = "jos_led_controller"

const (
	KeyPattern    = "pattern"
	KeyBrightness = "brightness"
	KeyNumLEDs    = "numLeds"
)

// Store is a flat int key/value store.
type Store interface {
	// Get returns def when key is absent.
	Get(key string, def int) int
	Set(key string, v int) error
}

// MemStore keeps values in memory only.
type MemStore struct {
	mu     sync.Mutex
	m      map[string]int
	Writes int
}

func NewMemStore() *MemStore { return &MemStore{m: map[string]int{}} }

func (s *MemStore) Get(key string, def int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[key]; ok {
		return v
	}
	return def
}

func (s *MemStore) Set(key string, v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
	s.Writes++
	return nil
}

// FileStore keeps one TOML table per namespace in a single file. Every Set
// re-reads the file so tables owned by other namespaces survive.
type FileStore struct {
	path string
	ns   string

	mu    sync.Mutex
	cache map[string]int
}

type document map[string]map[string]int

// OpenFile loads path (a missing file is an empty store).
func OpenFile(path, namespace string) (*FileStore, error) {
	if namespace == "" {
		namespace = Namespace
	}
	s := &FileStore{path: path, ns: namespace, cache: map[string]int{}}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for k, v := range doc[namespace] {
		s.cache[k] = v
	}
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(key string, def int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[key]; ok {
		return v
	}
	return def
}

func (s *FileStore) Set(key string, v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc[s.ns] == nil {
		doc[s.ns] = map[string]int{}
	}
	doc[s.ns][key] = v
	if err := s.write(doc); err != nil {
		return err
	}
	s.cache[key] = v
	return nil
}

func (s *FileStore) read() (document, error) {
	doc := document{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read settings %s", s.path)
	}
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode settings %s", s.path)
	}
	return doc, nil
}

// write replaces the file atomically via a sibling temp file.
func (s *FileStore) write(doc document) error {
	b, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace settings")
}
