package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	recorddto "studyhub/internal/modules/record/dto"
	apperrors "studyhub/internal/platform/errors"
)

const FormatVersion = 1

// Document is the portable snapshot: every record collection plus the
// auxiliary preference pairs, verbatim by key.
type Document struct {
	Version int                          `json:"version"`
	Date    string                       `json:"date"`
	DB      map[string][]json.RawMessage `json:"db"`
	Local   map[string]string            `json:"local"`
}

// Parsed is a document whose every record already passed validation.
type Parsed struct {
	Document Document
	Records  map[recorddto.Collection][]recorddto.Record
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidBackupFormat, fmt.Sprintf(format, args...))
}

// Parse checks the full shape before anything is written. Collections
// absent from db are allowed; unknown ones are not.
func Parse(raw []byte) (Parsed, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	doc := Document{}
	if err := dec.Decode(&doc); err != nil {
		return Parsed{}, invalid("decode: %v", err)
	}
	if dec.More() {
		return Parsed{}, invalid("trailing data after document")
	}
	if doc.Version != FormatVersion {
		return Parsed{}, invalid("unsupported version %d", doc.Version)
	}
	if doc.DB == nil {
		return Parsed{}, invalid("missing db block")
	}
	if doc.Date != "" {
		if _, err := time.Parse(time.RFC3339, doc.Date); err != nil {
			return Parsed{}, invalid("date %q is not ISO8601", doc.Date)
		}
	}

	parsed := Parsed{Document: doc, Records: map[recorddto.Collection][]recorddto.Record{}}
	for name, items := range doc.DB {
		c, err := recorddto.ParseCollection(name)
		if err != nil || string(c) != name {
			return Parsed{}, invalid("unknown collection %q", name)
		}
		seen := map[string]struct{}{}
		days := map[string]struct{}{}
		records := make([]recorddto.Record, 0, len(items))
		for i, item := range items {
			r, err := recorddto.Decode(c, item)
			if err != nil {
				return Parsed{}, invalid("%s[%d]: %v", name, i, err)
			}
			if _, dup := seen[r.RecordID()]; dup {
				return Parsed{}, invalid("%s[%d]: duplicate id %s", name, i, r.RecordID())
			}
			seen[r.RecordID()] = struct{}{}
			if entry, ok := r.(recorddto.JournalEntry); ok {
				if _, dup := days[entry.DateString]; dup {
					return Parsed{}, invalid("%s[%d]: second entry for %s", name, i, entry.DateString)
				}
				days[entry.DateString] = struct{}{}
			}
			records = append(records, r)
		}
		parsed.Records[c] = records
	}
	return parsed, nil
}
