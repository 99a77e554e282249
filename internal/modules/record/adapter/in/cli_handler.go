package in

import (
	"context"
	"encoding/json"
	"sort"

	"studyhub/internal/modules/record/dto"
	recordin "studyhub/internal/modules/record/port/in"
)

type CLIHandler struct {
	usecase recordin.Usecase
}

func NewCLIHandler(usecase recordin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// List renders every record of a collection as its stored JSON.
func (h CLIHandler) List(ctx context.Context, collection, date string) ([]json.RawMessage, error) {
	c, err := dto.ParseCollection(collection)
	if err != nil {
		return nil, err
	}
	if date == "" {
		return h.usecase.Export(ctx, c)
	}
	records, err := h.usecase.GetByDate(ctx, c, date)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// Put decodes body as a record of collection and upserts it by id.
func (h CLIHandler) Put(ctx context.Context, collection string, body []byte) (dto.Record, error) {
	c, err := dto.ParseCollection(collection)
	if err != nil {
		return nil, err
	}
	r, err := dto.Decode(c, body)
	if err != nil {
		return nil, err
	}
	if err := h.usecase.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (h CLIHandler) Delete(ctx context.Context, collection, id string) error {
	c, err := dto.ParseCollection(collection)
	if err != nil {
		return err
	}
	return h.usecase.Delete(ctx, c, id)
}

func (h CLIHandler) DeleteByDate(ctx context.Context, collection, date string) (dto.DeleteOutput, error) {
	c, err := dto.ParseCollection(collection)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	return h.usecase.DeleteByDate(ctx, c, date)
}

func (h CLIHandler) Clear(ctx context.Context, collection string) (dto.DeleteOutput, error) {
	c, err := dto.ParseCollection(collection)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	return h.usecase.Clear(ctx, c)
}

func (h CLIHandler) AddSession(ctx context.Context, subjectID string, startMs, endMs int64) (dto.Session, error) {
	return h.usecase.AddSession(ctx, dto.AddSessionInput{SubjectID: subjectID, StartTime: startMs, EndTime: endMs})
}

func (h CLIHandler) Sessions(ctx context.Context, date string) ([]dto.Session, error) {
	if date != "" {
		return h.usecase.SessionsByDate(ctx, date)
	}
	return h.usecase.Sessions(ctx)
}

func (h CLIHandler) Categories(ctx context.Context) ([]dto.Category, error) {
	return h.usecase.Categories(ctx)
}

func (h CLIHandler) AddCategory(ctx context.Context, name, color string) (dto.Category, error) {
	return h.usecase.AddCategory(ctx, dto.AddCategoryInput{Name: name, Color: color})
}

func (h CLIHandler) DeleteCategory(ctx context.Context, id string) (dto.DeleteCategoryOutput, error) {
	return h.usecase.DeleteCategory(ctx, id)
}

func (h CLIHandler) EditSession(ctx context.Context, input dto.EditSessionInput) (dto.Session, error) {
	return h.usecase.EditSession(ctx, input)
}

func (h CLIHandler) AddExam(ctx context.Context, input dto.AddExamInput) (dto.Exam, error) {
	return h.usecase.AddExam(ctx, input)
}

func (h CLIHandler) AppendChat(ctx context.Context, input dto.AppendChatInput) (dto.ChatMessage, error) {
	return h.usecase.AppendChat(ctx, input)
}

func (h CLIHandler) ArchiveCategory(ctx context.Context, id string) (dto.Category, error) {
	return h.usecase.ArchiveCategory(ctx, id)
}

func (h CLIHandler) Items(ctx context.Context, collection string) ([]dto.Item, error) {
	c, err := dto.ParseCollection(collection)
	if err != nil {
		return nil, err
	}
	return h.usecase.Items(ctx, c)
}

func (h CLIHandler) CreateItem(ctx context.Context, input dto.CreateItemInput) (dto.Item, error) {
	return h.usecase.CreateItem(ctx, input)
}

func (h CLIHandler) MoveItem(ctx context.Context, input dto.MoveItemInput) (dto.Item, error) {
	return h.usecase.MoveItem(ctx, input)
}

func (h CLIHandler) SaveJournal(ctx context.Context, entry dto.JournalEntry) (dto.JournalEntry, error) {
	return h.usecase.SaveJournal(ctx, entry)
}

func (h CLIHandler) Journal(ctx context.Context, date string) (dto.JournalEntry, bool, error) {
	return h.usecase.JournalFor(ctx, date)
}

func (h CLIHandler) Exams(ctx context.Context) ([]dto.Exam, error) {
	records, err := h.usecase.GetAll(ctx, dto.Exams)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Exam, 0, len(records))
	for _, r := range records {
		out = append(out, r.(dto.Exam))
	}
	return out, nil
}

// Chats returns the log oldest first.
func (h CLIHandler) Chats(ctx context.Context) ([]dto.ChatMessage, error) {
	records, err := h.usecase.GetAll(ctx, dto.Chats)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ChatMessage, 0, len(records))
	for _, r := range records {
		out = append(out, r.(dto.ChatMessage))
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Timestamp < out[b].Timestamp })
	return out, nil
}
