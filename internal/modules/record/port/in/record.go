package in

import (
	"context"
	"encoding/json"

	"studyhub/internal/modules/record/dto"
)

type Usecase interface {
	Put(ctx context.Context, r dto.Record) error
	Apply(ctx context.Context, c dto.Collection, body []byte) error
	GetAll(ctx context.Context, c dto.Collection) ([]dto.Record, error)
	GetByDate(ctx context.Context, c dto.Collection, date string) ([]dto.Record, error)
	Delete(ctx context.Context, c dto.Collection, id string) error
	DeleteByDate(ctx context.Context, c dto.Collection, date string) (dto.DeleteOutput, error)
	Clear(ctx context.Context, c dto.Collection) (dto.DeleteOutput, error)
	Export(ctx context.Context, c dto.Collection) ([]json.RawMessage, error)
	SchemaVersion(ctx context.Context) (int, error)

	Sessions(ctx context.Context) ([]dto.Session, error)
	SessionsByDate(ctx context.Context, date string) ([]dto.Session, error)
	AddSession(ctx context.Context, input dto.AddSessionInput) (dto.Session, error)
	EditSession(ctx context.Context, input dto.EditSessionInput) (dto.Session, error)

	AddExam(ctx context.Context, input dto.AddExamInput) (dto.Exam, error)
	AppendChat(ctx context.Context, input dto.AppendChatInput) (dto.ChatMessage, error)

	Categories(ctx context.Context) ([]dto.Category, error)
	AddCategory(ctx context.Context, input dto.AddCategoryInput) (dto.Category, error)
	ArchiveCategory(ctx context.Context, id string) (dto.Category, error)
	DeleteCategory(ctx context.Context, id string) (dto.DeleteCategoryOutput, error)

	Items(ctx context.Context, c dto.Collection) ([]dto.Item, error)
	CreateItem(ctx context.Context, input dto.CreateItemInput) (dto.Item, error)
	MoveItem(ctx context.Context, input dto.MoveItemInput) (dto.Item, error)

	SaveJournal(ctx context.Context, entry dto.JournalEntry) (dto.JournalEntry, error)
	JournalFor(ctx context.Context, date string) (dto.JournalEntry, bool, error)
}
