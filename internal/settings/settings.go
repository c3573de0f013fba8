package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrKeyRequired = errors.New("setting key is required")

// Well-known keys. The store itself is schema-free; these are the keys
// the CLI reads and writes.
const (
	KeyGeminiAPIKey    = "gemini_api_key"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyTheme           = "theme"
	KeyFont            = "font"
	KeySubtitleStyle   = "subtitle_style"
)

// Store is the process-wide key-value configuration boundary. The core
// never depends on a concrete storage mechanism; a Store is injected at
// the CLI layer.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Keys() []string
}

// FileStore persists settings as a flat JSON object, loaded once at
// construction and rewritten atomically on every change.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(configDir, "katha", "settings.json"), nil
}

// Open loads (or initializes) a file-backed store at the given path.
func Open(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings path is required")
	}

	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

func (s *FileStore) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.save()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// Keys returns all stored keys in sorted order.
func (s *FileStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}
	return nil
}

// save writes to a temp file and renames it into place so a crash never
// leaves a half-written settings file. Callers hold the write lock.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
