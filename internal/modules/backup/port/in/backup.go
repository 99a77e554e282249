package in

import (
	"context"
	"io"

	"studyhub/internal/modules/backup/dto"
)

type Usecase interface {
	Export(ctx context.Context, w io.Writer) (dto.ExportOutput, error)
	ExportFile(ctx context.Context, path string) (dto.ExportOutput, error)
	Import(ctx context.Context, r io.Reader) (dto.ImportOutput, error)
	ImportFile(ctx context.Context, path string) (dto.ImportOutput, error)
	ExportJournal(ctx context.Context, dir string) (dto.JournalExportOutput, error)
}
