package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "studyhub/internal/platform/errors"
)

// Record is anything stored in a collection.
type Record interface {
	RecordID() string
	Collection() Collection
	Validate() error
}

// Dated records are reachable through the date index of their collection.
type Dated interface {
	IndexDate() string
}

// Document is the persisted form of a record: the full JSON body plus the
// columns the engine indexes on.
type Document struct {
	ID   string
	Date string
	Body json.RawMessage
}

func Encode(r Record) (Document, error) {
	if err := r.Validate(); err != nil {
		return Document{}, err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return Document{}, fmt.Errorf("encode %s/%s: %w", r.Collection(), r.RecordID(), err)
	}
	doc := Document{ID: r.RecordID(), Body: body}
	if dated, ok := r.(Dated); ok && r.Collection().DateIndexed() {
		doc.Date = dated.IndexDate()
	}
	return doc, nil
}

// Decode turns a JSON body into the typed record for c and validates it.
func Decode(c Collection, body []byte) (Record, error) {
	var r Record
	switch c {
	case Sessions:
		r = &Session{}
	case Categories:
		r = &Category{}
	case Goals:
		r = &Goal{}
	case Tasks:
		r = &Task{}
	case Exams:
		r = &Exam{}
	case Chats:
		r = &ChatMessage{}
	case Journal:
		r = &JournalEntry{}
	default:
		return nil, fmt.Errorf("%w: unknown collection %q", apperrors.ErrInvalidInput, c)
	}
	if err := json.Unmarshal(body, r); err != nil {
		return nil, fmt.Errorf("%w: decode %s record: %v", apperrors.ErrInvalidInput, c, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return deref(r), nil
}

func deref(r Record) Record {
	switch v := r.(type) {
	case *Session:
		return *v
	case *Category:
		return *v
	case *Goal:
		return *v
	case *Task:
		return *v
	case *Exam:
		return *v
	case *ChatMessage:
		return *v
	case *JournalEntry:
		return *v
	}
	return r
}

func requireID(c Collection, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s record id is required", apperrors.ErrInvalidInput, c)
	}
	return nil
}

func ValidDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func requireDate(c Collection, field, s string) error {
	if !ValidDate(s) {
		return fmt.Errorf("%w: %s.%s must be YYYY-MM-DD, got %q", apperrors.ErrInvalidInput, c, field, s)
	}
	return nil
}
