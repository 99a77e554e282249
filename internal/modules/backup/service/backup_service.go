package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"studyhub/internal/modules/backup/domain"
	"studyhub/internal/modules/backup/port/out"
	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/platform/clock"
	"studyhub/internal/platform/logging"
)

type Snapshot struct {
	Document domain.Document
	Counts   map[string]int
}

type Restored struct {
	Counts map[string]int
	Local  int
}

type BackupService struct {
	records  out.RecordStore
	prefs    out.Preferences
	clock    clock.Clock
	logger   *slog.Logger
	excluded map[string]struct{}
}

// NewBackupService builds the codec. Keys listed in excluded never leave the
// machine and are ignored on import.
func NewBackupService(records out.RecordStore, prefs out.Preferences, clk clock.Clock, logger *slog.Logger, excluded ...string) *BackupService {
	skip := make(map[string]struct{}, len(excluded))
	for _, key := range excluded {
		skip[key] = struct{}{}
	}
	return &BackupService{records: records, prefs: prefs, clock: clk, logger: logging.OrDiscard(logger), excluded: skip}
}

func (s *BackupService) Snapshot(ctx context.Context) (Snapshot, error) {
	doc := domain.Document{
		Version: domain.FormatVersion,
		Date:    s.clock.Now().UTC().Format(time.RFC3339),
		DB:      map[string][]json.RawMessage{},
		Local:   map[string]string{},
	}
	counts := map[string]int{}
	for _, c := range recorddto.AllCollections {
		items, err := s.records.Export(ctx, c)
		if err != nil {
			return Snapshot{}, fmt.Errorf("export %s: %w", c, err)
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		doc.DB[string(c)] = items
		counts[string(c)] = len(items)
	}

	values, err := s.prefs.All(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("export preferences: %w", err)
	}
	for key, value := range values {
		if _, skip := s.excluded[key]; skip {
			continue
		}
		doc.Local[key] = value
	}
	return Snapshot{Document: doc, Counts: counts}, nil
}

// Restore validates raw in full, then replays every record through the
// regular write path so restored records are mirrored like live writes.
func (s *BackupService) Restore(ctx context.Context, raw []byte) (Restored, error) {
	parsed, err := domain.Parse(raw)
	if err != nil {
		return Restored{}, err
	}

	result := Restored{Counts: map[string]int{}}
	for _, c := range recorddto.AllCollections {
		records, ok := parsed.Records[c]
		if !ok {
			continue
		}
		for _, r := range records {
			if err := s.records.Put(ctx, r); err != nil {
				return result, fmt.Errorf("restore %s/%s: %w", c, r.RecordID(), err)
			}
			result.Counts[string(c)]++
		}
	}

	keys := make([]string, 0, len(parsed.Document.Local))
	for key := range parsed.Document.Local {
		if _, skip := s.excluded[key]; !skip {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := s.prefs.Set(ctx, key, parsed.Document.Local[key]); err != nil {
			return result, fmt.Errorf("restore preference %s: %w", key, err)
		}
		result.Local++
	}
	s.logger.Info("backup restored", "records", total(result.Counts), "local", result.Local)
	return result, nil
}

func (s *BackupService) Journal(ctx context.Context) ([]recorddto.JournalEntry, error) {
	records, err := s.records.GetAll(ctx, recorddto.Journal)
	if err != nil {
		return nil, err
	}
	entries := make([]recorddto.JournalEntry, 0, len(records))
	for _, r := range records {
		if entry, ok := r.(recorddto.JournalEntry); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func total(counts map[string]int) int {
	n := 0
	for _, v := range counts {
		n += v
	}
	return n
}
