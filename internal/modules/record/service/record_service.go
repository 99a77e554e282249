package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"studyhub/internal/modules/record/domain"
	recordout "studyhub/internal/modules/record/port/out"
	apperrors "studyhub/internal/platform/errors"
)

// RecordService is the write path every record goes through. Local writes
// commit first; the observer hears about them only afterwards.
type RecordService struct {
	engine recordout.Engine

	mu       sync.RWMutex
	observer recordout.WriteObserver

	// journalMu makes the day lookup and the write one step.
	journalMu sync.Mutex
}

func NewRecordService(engine recordout.Engine) *RecordService {
	return &RecordService{engine: engine}
}

// SetObserver wires the push path once the sync module exists.
func (s *RecordService) SetObserver(o recordout.WriteObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

func (s *RecordService) notifier() recordout.WriteObserver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.observer
}

func (s *RecordService) Put(ctx context.Context, r domain.Record) error {
	r, doc, err := s.store(ctx, r)
	if err != nil {
		return err
	}
	if o := s.notifier(); o != nil {
		o.RecordPut(r.Collection(), doc.ID, doc.Body)
	}
	return nil
}

// Apply stores a record that arrived from the remote without echoing it back.
func (s *RecordService) Apply(ctx context.Context, c domain.Collection, body []byte) (domain.Record, error) {
	r, err := domain.Decode(c, body)
	if err != nil {
		return nil, err
	}
	r, _, err = s.store(ctx, r)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// store writes r and returns what was written. A journal entry for a day
// that already has one takes over that entry's id, whichever path it came in
// through, so a day never holds two entries.
func (s *RecordService) store(ctx context.Context, r domain.Record) (domain.Record, domain.Document, error) {
	if r == nil {
		return nil, domain.Document{}, fmt.Errorf("%w: nil record", apperrors.ErrInvalidInput)
	}
	if entry, ok := r.(domain.JournalEntry); ok {
		s.journalMu.Lock()
		defer s.journalMu.Unlock()
		resolved, err := s.sameDay(ctx, entry)
		if err != nil {
			return nil, domain.Document{}, err
		}
		r = resolved
	}
	doc, err := domain.Encode(r)
	if err != nil {
		return nil, domain.Document{}, err
	}
	if err := s.engine.Put(ctx, r.Collection(), doc); err != nil {
		return nil, domain.Document{}, err
	}
	return r, doc, nil
}

func (s *RecordService) sameDay(ctx context.Context, entry domain.JournalEntry) (domain.JournalEntry, error) {
	if !domain.ValidDate(entry.DateString) {
		return entry, nil
	}
	docs, err := s.engine.GetByDate(ctx, domain.Journal, entry.DateString)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	for _, doc := range docs {
		if doc.ID == entry.ID {
			return entry, nil
		}
	}
	if len(docs) > 0 {
		entry.ID = docs[0].ID
	}
	return entry, nil
}

func (s *RecordService) GetAll(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	docs, err := s.engine.GetAll(ctx, c)
	if err != nil {
		return nil, err
	}
	return decodeAll(c, docs)
}

func (s *RecordService) GetByDate(ctx context.Context, c domain.Collection, date string) ([]domain.Record, error) {
	if !c.DateIndexed() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotDateIndexed, c)
	}
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", apperrors.ErrInvalidInput, date)
	}
	docs, err := s.engine.GetByDate(ctx, c, date)
	if err != nil {
		return nil, err
	}
	return decodeAll(c, docs)
}

// Raw returns stored bodies untouched, in write order.
func (s *RecordService) Raw(ctx context.Context, c domain.Collection) ([]json.RawMessage, error) {
	docs, err := s.engine.GetAll(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		out = append(out, json.RawMessage(doc.Body))
	}
	return out, nil
}

func (s *RecordService) Delete(ctx context.Context, c domain.Collection, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	removed, err := s.engine.Delete(ctx, c, id)
	if err != nil {
		return false, err
	}
	if o := s.notifier(); o != nil {
		o.RecordDeleted(c, id)
	}
	return removed, nil
}

func (s *RecordService) DeleteByDate(ctx context.Context, c domain.Collection, date string) ([]string, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", apperrors.ErrInvalidInput, date)
	}
	ids, err := s.engine.DeleteByDate(ctx, c, date)
	if err != nil {
		return nil, err
	}
	s.notifyDeleted(c, ids)
	return ids, nil
}

func (s *RecordService) Clear(ctx context.Context, c domain.Collection) ([]string, error) {
	ids, err := s.engine.Clear(ctx, c)
	if err != nil {
		return nil, err
	}
	s.notifyDeleted(c, ids)
	return ids, nil
}

func (s *RecordService) notifyDeleted(c domain.Collection, ids []string) {
	o := s.notifier()
	if o == nil {
		return
	}
	for _, id := range ids {
		o.RecordDeleted(c, id)
	}
}

func (s *RecordService) SchemaVersion(ctx context.Context) (int, error) {
	return s.engine.SchemaVersion(ctx)
}

func decodeAll(c domain.Collection, docs []domain.Document) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		r, err := domain.Decode(c, doc.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: stored %s record %s is unreadable: %v", apperrors.ErrStorageUnavailable, c, doc.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}
