package out

import (
	"context"
	"encoding/json"

	recorddto "studyhub/internal/modules/record/dto"
)

type RecordStore interface {
	Export(ctx context.Context, c recorddto.Collection) ([]json.RawMessage, error)
	Put(ctx context.Context, r recorddto.Record) error
	GetAll(ctx context.Context, c recorddto.Collection) ([]recorddto.Record, error)
}

type Preferences interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

type JournalWriter interface {
	Write(ctx context.Context, dir string, entry recorddto.JournalEntry) (string, error)
}
