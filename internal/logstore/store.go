// Package logstore persists training sessions as JSON files in a directory.
//
// Each session lives in <dir>/<name>.json, where name is the session name
// reduced to ASCII letters, digits and underscores. Writes go to a temporary
// file that is renamed into place, so readers never see a partial log.
package logstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const extension = ".json"

// Config holds the configuration for Open.
type Config struct {
	Dir   string           // Directory holding the logs (default: ".logs")
	Clock func() time.Time // Default: time.Now
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Dir:   ".logs",
		Clock: time.Now,
	}
}

// Store reads and writes session logs. It is safe for concurrent use.
type Store struct {
	dir   string
	clock func() time.Time
	mu    sync.RWMutex
}

// Open creates the store directory if needed and returns a store over it.
func Open(config Config) (*Store, error) {
	defaults := DefaultConfig()
	if config.Dir == "" {
		config.Dir = defaults.Dir
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Store{dir: config.Dir, clock: config.Clock}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// SanitizeName drops every character of name outside [A-Za-z0-9_].
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, name)
}

func (s *Store) path(session string) (string, error) {
	name := SanitizeName(session)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, session)
	}
	return filepath.Join(s.dir, name+extension), nil
}

// List returns the headers of every stored log, ordered by session name.
func (s *Store) List() ([]Header, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	headers := make([]Header, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, extension) || strings.HasPrefix(name, ".") {
			continue
		}
		log, err := read(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		headers = append(headers, log.Header)
	}

	sort.Slice(headers, func(i, j int) bool {
		return headers[i].SessionName < headers[j].SessionName
	})
	return headers, nil
}

// Get returns the log of session.
func (s *Store) Get(session string) (Log, error) {
	path, err := s.path(session)
	if err != nil {
		return Log{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return read(path)
}

// Update creates or extends the log of session.
//
// A new log starts with the update's epochs and content. An existing log
// adds AdditionalEpochsTrained, takes the new content and bumps LastUpdate;
// its agent type, simplified flag and session name must match the update,
// otherwise ErrMismatch is returned and nothing is written. created reports
// whether the log is new.
func (s *Store) Update(session string, update Update) (created bool, err error) {
	if !update.AgentType.Valid() {
		return false, fmt.Errorf("%w: unknown agent type %q", ErrInvalidUpdate, update.AgentType)
	}
	if update.AdditionalEpochsTrained < 0 {
		return false, fmt.Errorf("%w: negative epochs %d", ErrInvalidUpdate, update.AdditionalEpochsTrained)
	}
	path, err := s.path(session)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UnixMilli()
	log, err := read(path)
	switch {
	case errors.Is(err, ErrNotFound):
		created = true
		log = Log{
			Header: Header{
				SessionName:   session,
				AgentType:     update.AgentType,
				Simplified:    update.Simplified,
				EpochsTrained: update.AdditionalEpochsTrained,
				LastUpdate:    now,
			},
			CreationTime:      now,
			SerializedContent: update.SerializedContent,
		}
	case err != nil:
		return false, err
	default:
		if log.AgentType != update.AgentType || log.Simplified != update.Simplified || log.SessionName != session {
			return false, fmt.Errorf("%w: %s", ErrMismatch, filepath.Base(path))
		}
		log.EpochsTrained += update.AdditionalEpochsTrained
		log.SerializedContent = update.SerializedContent
		log.LastUpdate = now
	}

	if err := s.write(path, log); err != nil {
		return false, err
	}
	return created, nil
}

// Delete removes the log of session. Deleting a missing log is not an error.
func (s *Store) Delete(session string) error {
	path, err := s.path(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	return nil
}

func read(path string) (Log, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Log{}, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return Log{}, fmt.Errorf("failed to read log: %w", err)
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return Log{}, fmt.Errorf("%w: %s: %v", ErrMalformedLog, filepath.Base(path), err)
	}
	return log, nil
}

// write stores log at path through a temporary file in the same directory.
func (s *Store) write(path string, log Log) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to encode log: %w", err)
	}

	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
