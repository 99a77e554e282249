package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"studyhub/internal/modules/backup/dto"
	"studyhub/internal/modules/backup/port/in"
	"studyhub/internal/modules/backup/port/out"
	"studyhub/internal/modules/backup/service"
	apperrors "studyhub/internal/platform/errors"
)

type Interactor struct {
	svc     *service.BackupService
	journal out.JournalWriter
}

func NewInteractor(svc *service.BackupService, journal out.JournalWriter) in.Usecase {
	return &Interactor{svc: svc, journal: journal}
}

func (i *Interactor) Export(ctx context.Context, w io.Writer) (dto.ExportOutput, error) {
	snap, err := i.svc.Snapshot(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap.Document); err != nil {
		return dto.ExportOutput{}, fmt.Errorf("encode backup: %w", err)
	}
	written, _ := time.Parse(time.RFC3339, snap.Document.Date)
	return dto.ExportOutput{Counts: snap.Counts, Local: len(snap.Document.Local), Written: written}, nil
}

func (i *Interactor) ExportFile(ctx context.Context, path string) (dto.ExportOutput, error) {
	if path == "" {
		return dto.ExportOutput{}, fmt.Errorf("%w: backup path is required", apperrors.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dto.ExportOutput{}, fmt.Errorf("create backup directory: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return dto.ExportOutput{}, fmt.Errorf("create backup file: %w", err)
	}
	result, err := i.Export(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return dto.ExportOutput{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return dto.ExportOutput{}, fmt.Errorf("replace backup file: %w", err)
	}
	result.Path = path
	return result, nil
}

func (i *Interactor) Import(ctx context.Context, r io.Reader) (dto.ImportOutput, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return dto.ImportOutput{}, fmt.Errorf("read backup: %w", err)
	}
	restored, err := i.svc.Restore(ctx, raw)
	return dto.ImportOutput{Counts: restored.Counts, Local: restored.Local}, err
}

func (i *Interactor) ImportFile(ctx context.Context, path string) (dto.ImportOutput, error) {
	f, err := os.Open(path)
	if err != nil {
		return dto.ImportOutput{}, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	return i.Import(ctx, f)
}

func (i *Interactor) ExportJournal(ctx context.Context, dir string) (dto.JournalExportOutput, error) {
	if dir == "" {
		return dto.JournalExportOutput{}, fmt.Errorf("%w: output directory is required", apperrors.ErrInvalidInput)
	}
	entries, err := i.svc.Journal(ctx)
	if err != nil {
		return dto.JournalExportOutput{}, err
	}
	result := dto.JournalExportOutput{Dir: dir}
	for _, entry := range entries {
		if _, err := i.journal.Write(ctx, dir, entry); err != nil {
			return result, err
		}
		result.Notes++
	}
	return result, nil
}
