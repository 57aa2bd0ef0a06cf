package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const sessionFileName = "session.json"

// errCorruptFile marks a session file that exists but is not valid JSON
var errCorruptFile = errors.New("session file is corrupt")

// FileStore persists session fields in a single JSON file shared by all
// servers. Each server gets its own object: {"<server>": {"token": ...}}.
type FileStore struct {
	path   string
	server string
	mu     sync.Mutex
}

// NewFileStore creates a store for server backed by the file at path.
// The file and its directory are created on first write.
func NewFileStore(path, server string) *FileStore {
	return &FileStore{path: path, server: server}
}

// DefaultFilePath returns ~/.config/paperpush/session.json
func DefaultFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "paperpush", sessionFileName), nil
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	servers, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := servers[f.server][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	servers, _, err := f.loadForWrite()
	if err != nil {
		return err
	}

	if servers[f.server] == nil {
		servers[f.server] = make(map[string]string)
	}
	servers[f.server][key] = value
	return f.save(servers)
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	servers, reset, err := f.loadForWrite()
	if err != nil {
		return err
	}

	values := servers[f.server]
	if _, ok := values[key]; !ok {
		if reset {
			return f.save(servers)
		}
		return nil
	}

	delete(values, key)
	if len(values) == 0 {
		delete(servers, f.server)
	}
	return f.save(servers)
}

func (f *FileStore) load() (map[string]map[string]string, error) {
	servers := make(map[string]map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return servers, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if len(data) == 0 {
		return servers, nil
	}

	if err := json.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w: %v", f.path, errCorruptFile, err)
	}

	return servers, nil
}

// loadForWrite is load, except that a corrupt file reads as empty and reset
// is set, so the next save replaces it and login or logout can recover.
func (f *FileStore) loadForWrite() (servers map[string]map[string]string, reset bool, err error) {
	servers, err = f.load()
	if errors.Is(err, errCorruptFile) {
		return make(map[string]map[string]string), true, nil
	}
	return servers, false, err
}

func (f *FileStore) save(servers map[string]map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(servers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Holds bearer tokens, keep it private to the user
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}
