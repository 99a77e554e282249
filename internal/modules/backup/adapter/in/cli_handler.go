package in

import (
	"context"
	"io"

	"studyhub/internal/modules/backup/dto"
	backupin "studyhub/internal/modules/backup/port/in"
)

type CLIHandler struct {
	usecase backupin.Usecase
}

func NewCLIHandler(usecase backupin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Export writes to path, or to stdout when path is "-".
func (h CLIHandler) Export(ctx context.Context, path string, stdout io.Writer) (dto.ExportOutput, error) {
	if path == "-" {
		return h.usecase.Export(ctx, stdout)
	}
	return h.usecase.ExportFile(ctx, path)
}

func (h CLIHandler) Import(ctx context.Context, path string, stdin io.Reader) (dto.ImportOutput, error) {
	if path == "-" {
		return h.usecase.Import(ctx, stdin)
	}
	return h.usecase.ImportFile(ctx, path)
}

func (h CLIHandler) JournalMarkdown(ctx context.Context, dir string) (dto.JournalExportOutput, error) {
	return h.usecase.ExportJournal(ctx, dir)
}
