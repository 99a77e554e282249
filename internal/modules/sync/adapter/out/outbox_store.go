package out

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"studyhub/internal/modules/sync/domain"
	syncout "studyhub/internal/modules/sync/port/out"
	apperrors "studyhub/internal/platform/errors"
)

// FileOutbox is an append-only JSONL queue of pending mirror calls.
type FileOutbox struct {
	path string
	mu   sync.Mutex
}

func NewFileOutbox(path string) syncout.Outbox {
	return &FileOutbox{path: path}
}

func (s *FileOutbox) Append(_ context.Context, op domain.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create outbox dir: %v", apperrors.ErrStorageUnavailable, err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open outbox: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer file.Close()
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encode outbox op: %w", err)
	}
	if _, err := file.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("%w: write outbox: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileOutbox) List(_ context.Context) ([]domain.Op, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Drop removes the n oldest entries. Entries appended meanwhile survive.
func (s *FileOutbox) Drop(_ context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ops, err := s.read()
	if err != nil {
		return err
	}
	if n > len(ops) {
		n = len(ops)
	}
	rest := ops[n:]
	if len(rest) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: clear outbox: %v", apperrors.ErrStorageUnavailable, err)
		}
		return nil
	}
	var buf bytes.Buffer
	for _, op := range rest {
		payload, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("encode outbox op: %w", err)
		}
		buf.Write(payload)
		buf.WriteByte('\n')
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: rewrite outbox: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace outbox: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileOutbox) read() ([]domain.Op, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Op{}, nil
		}
		return nil, fmt.Errorf("%w: open outbox: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer file.Close()

	out := []domain.Op{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		op := domain.Op{}
		if err := json.Unmarshal(line, &op); err != nil {
			return nil, fmt.Errorf("%w: decode outbox line: %v", apperrors.ErrStorageUnavailable, err)
		}
		out = append(out, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan outbox: %v", apperrors.ErrStorageUnavailable, err)
	}
	return out, nil
}
