// Package kv is the lightweight key-value layer that sits beside the record
// store: the active timer blob, preferences and the signed-in identity live
// here as string values in a single JSON file.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "studyhub/internal/platform/errors"
)

const (
	lockRetry = 10 * time.Millisecond
	lockWait  = 2 * time.Second
	// A lock file older than this belongs to a process that died mid-write.
	lockStale = 10 * time.Second
)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) (map[string]string, error)
}

type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", apperrors.ErrInvalidInput)
	}
	return s.update(ctx, func(values map[string]string) bool {
		values[key] = value
		return true
	})
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(values map[string]string) bool {
		if _, ok := values[key]; !ok {
			return false
		}
		delete(values, key)
		return true
	})
}

// update runs a read-modify-write under both the in-process mutex and the
// on-disk lock, so a CLI command and a running TUI do not drop each other's
// keys.
func (s *FileStore) update(ctx context.Context, change func(map[string]string) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	if !change(values) {
		return nil
	}
	return s.save(values)
}

func (s *FileStore) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create kv dir: %v", apperrors.ErrStorageUnavailable, err)
	}
	lockPath := s.path + ".lock"
	deadline := time.Now().Add(lockWait)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: lock kv: %v", apperrors.ErrStorageUnavailable, err)
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStale {
			_ = os.Remove(lockPath)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: kv is locked by another process (%s)", apperrors.ErrStorageUnavailable, lockPath)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (s *FileStore) All(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Keys returns the stored keys in sorted order.
func Keys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: read kv: %v", apperrors.ErrStorageUnavailable, err)
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: decode kv: %v", apperrors.ErrStorageUnavailable, err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode kv: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create kv temp: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write kv: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: chmod kv: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write kv: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace kv: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
