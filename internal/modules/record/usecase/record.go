package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"studyhub/internal/modules/record/domain"
	"studyhub/internal/modules/record/dto"
	recordin "studyhub/internal/modules/record/port/in"
	"studyhub/internal/modules/record/service"
	"studyhub/internal/platform/clock"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/id"
)

type Interactor struct {
	svc   *service.RecordService
	clock clock.Clock
	idGen id.Generator
	loc   *time.Location
}

func NewInteractor(svc *service.RecordService, clk clock.Clock, idGen id.Generator, loc *time.Location) recordin.Usecase {
	if loc == nil {
		loc = time.Local
	}
	return &Interactor{svc: svc, clock: clk, idGen: idGen, loc: loc}
}

func (i *Interactor) Put(ctx context.Context, r dto.Record) error {
	return i.svc.Put(ctx, r)
}

func (i *Interactor) Apply(ctx context.Context, c dto.Collection, body []byte) error {
	_, err := i.svc.Apply(ctx, c, body)
	return err
}

func (i *Interactor) GetAll(ctx context.Context, c dto.Collection) ([]dto.Record, error) {
	return i.svc.GetAll(ctx, c)
}

func (i *Interactor) GetByDate(ctx context.Context, c dto.Collection, date string) ([]dto.Record, error) {
	return i.svc.GetByDate(ctx, c, date)
}

// Delete removes one record. Categories go through DeleteCategory so a
// subject with history is archived rather than lost.
func (i *Interactor) Delete(ctx context.Context, c dto.Collection, id string) error {
	if c == domain.Categories {
		_, err := i.DeleteCategory(ctx, id)
		return err
	}
	_, err := i.svc.Delete(ctx, c, id)
	return err
}

func (i *Interactor) DeleteByDate(ctx context.Context, c dto.Collection, date string) (dto.DeleteOutput, error) {
	ids, err := i.svc.DeleteByDate(ctx, c, date)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	return dto.DeleteOutput{Collection: c, Removed: len(ids)}, nil
}

func (i *Interactor) Clear(ctx context.Context, c dto.Collection) (dto.DeleteOutput, error) {
	if c == domain.Categories {
		return i.clearCategories(ctx)
	}
	ids, err := i.svc.Clear(ctx, c)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	return dto.DeleteOutput{Collection: c, Removed: len(ids)}, nil
}

func (i *Interactor) Export(ctx context.Context, c dto.Collection) ([]json.RawMessage, error) {
	return i.svc.Raw(ctx, c)
}

func (i *Interactor) SchemaVersion(ctx context.Context) (int, error) {
	return i.svc.SchemaVersion(ctx)
}

func (i *Interactor) Sessions(ctx context.Context) ([]dto.Session, error) {
	records, err := i.svc.GetAll(ctx, domain.Sessions)
	if err != nil {
		return nil, err
	}
	return sessionsOf(records), nil
}

func (i *Interactor) SessionsByDate(ctx context.Context, date string) ([]dto.Session, error) {
	records, err := i.svc.GetByDate(ctx, domain.Sessions, date)
	if err != nil {
		return nil, err
	}
	return sessionsOf(records), nil
}

// AddSession records manually entered time. The date is the day the
// session started.
func (i *Interactor) AddSession(ctx context.Context, input dto.AddSessionInput) (dto.Session, error) {
	session := domain.Session{
		ID:         i.idGen.New(),
		SubjectID:  input.SubjectID,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		DurationMs: input.EndTime - input.StartTime,
		DateString: clock.DateString(input.StartTime, i.loc),
	}
	if err := i.svc.Put(ctx, session); err != nil {
		return dto.Session{}, err
	}
	return session, nil
}

// EditSession rewrites a stored session under its own id. Duration and day
// follow the new start and end.
func (i *Interactor) EditSession(ctx context.Context, input dto.EditSessionInput) (dto.Session, error) {
	sessions, err := i.Sessions(ctx)
	if err != nil {
		return dto.Session{}, err
	}
	for _, session := range sessions {
		if session.ID != input.ID {
			continue
		}
		if input.SubjectID != nil {
			session.SubjectID = *input.SubjectID
		}
		if input.StartTime != nil {
			session.StartTime = *input.StartTime
		}
		if input.EndTime != nil {
			session.EndTime = *input.EndTime
		}
		session.DurationMs = session.EndTime - session.StartTime
		session.DateString = clock.DateString(session.StartTime, i.loc)
		if err := i.svc.Put(ctx, session); err != nil {
			return dto.Session{}, err
		}
		return session, nil
	}
	return dto.Session{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, input.ID)
}

func (i *Interactor) AddExam(ctx context.Context, input dto.AddExamInput) (dto.Exam, error) {
	exam := domain.Exam{
		ID:        i.idGen.New(),
		Title:     strings.TrimSpace(input.Title),
		SubjectID: input.SubjectID,
		Date:      input.Date,
		Topics:    input.Topics,
	}
	if err := i.svc.Put(ctx, exam); err != nil {
		return dto.Exam{}, err
	}
	return exam, nil
}

// AppendChat adds one message to the log, stamped now or just after the
// newest message, whichever is later.
func (i *Interactor) AppendChat(ctx context.Context, input dto.AppendChatInput) (dto.ChatMessage, error) {
	existing, err := i.svc.GetAll(ctx, domain.Chats)
	if err != nil {
		return dto.ChatMessage{}, err
	}
	stamp := clock.Millis(i.clock.Now())
	for _, r := range existing {
		if ts := r.(domain.ChatMessage).Timestamp; ts >= stamp {
			stamp = ts + 1
		}
	}
	msg := domain.ChatMessage{
		ID:        i.idGen.New(),
		Role:      strings.TrimSpace(input.Role),
		Content:   input.Content,
		Timestamp: stamp,
	}
	if err := i.svc.Put(ctx, msg); err != nil {
		return dto.ChatMessage{}, err
	}
	return msg, nil
}

// Categories falls back to the built-in set while nothing has been saved.
// The fallback is not written back.
func (i *Interactor) Categories(ctx context.Context) ([]dto.Category, error) {
	records, err := i.svc.GetAll(ctx, domain.Categories)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return domain.DefaultCategories(), nil
	}
	out := make([]dto.Category, 0, len(records))
	for _, r := range records {
		out = append(out, r.(domain.Category))
	}
	return out, nil
}

func (i *Interactor) AddCategory(ctx context.Context, input dto.AddCategoryInput) (dto.Category, error) {
	color, err := domain.ParseColor(input.Color)
	if err != nil {
		return dto.Category{}, err
	}
	category := domain.Category{ID: i.idGen.New(), Name: strings.TrimSpace(input.Name), Color: color}
	if err := i.svc.Put(ctx, category); err != nil {
		return dto.Category{}, err
	}
	return category, nil
}

// ArchiveCategory writes the whole default set when archiving one of the
// read-time defaults, otherwise the remaining defaults would disappear.
func (i *Interactor) ArchiveCategory(ctx context.Context, id string) (dto.Category, error) {
	stored, err := i.svc.GetAll(ctx, domain.Categories)
	if err != nil {
		return dto.Category{}, err
	}
	categories, err := i.Categories(ctx)
	if err != nil {
		return dto.Category{}, err
	}
	idx := -1
	for n, c := range categories {
		if c.ID == id {
			idx = n
			break
		}
	}
	if idx < 0 {
		return dto.Category{}, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	}
	categories[idx].IsArchived = true
	if len(stored) == 0 {
		for _, c := range categories {
			if err := i.svc.Put(ctx, c); err != nil {
				return dto.Category{}, err
			}
		}
		return categories[idx], nil
	}
	if err := i.svc.Put(ctx, categories[idx]); err != nil {
		return dto.Category{}, err
	}
	return categories[idx], nil
}

// DeleteCategory hard-deletes a category nothing refers to. One still named
// by a session, goal, task or exam is archived instead.
func (i *Interactor) DeleteCategory(ctx context.Context, id string) (dto.DeleteCategoryOutput, error) {
	refs, err := i.subjectRefs(ctx)
	if err != nil {
		return dto.DeleteCategoryOutput{}, err
	}
	if n := refs[id]; n > 0 {
		if _, err := i.ArchiveCategory(ctx, id); err != nil {
			return dto.DeleteCategoryOutput{}, err
		}
		return dto.DeleteCategoryOutput{ID: id, Archived: true, References: n}, nil
	}

	stored, err := i.svc.GetAll(ctx, domain.Categories)
	if err != nil {
		return dto.DeleteCategoryOutput{}, err
	}
	if len(stored) == 0 {
		return dto.DeleteCategoryOutput{ID: id}, i.dropDefault(ctx, id)
	}
	removed, err := i.svc.Delete(ctx, domain.Categories, id)
	if err != nil {
		return dto.DeleteCategoryOutput{}, err
	}
	if !removed {
		return dto.DeleteCategoryOutput{}, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	}
	return dto.DeleteCategoryOutput{ID: id}, nil
}

// dropDefault persists the read-time defaults minus id.
func (i *Interactor) dropDefault(ctx context.Context, id string) error {
	defaults := domain.DefaultCategories()
	keep := make([]domain.Category, 0, len(defaults))
	for _, c := range defaults {
		if c.ID != id {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(defaults) {
		return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	}
	for _, c := range keep {
		if err := i.svc.Put(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interactor) clearCategories(ctx context.Context) (dto.DeleteOutput, error) {
	refs, err := i.subjectRefs(ctx)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	stored, err := i.svc.GetAll(ctx, domain.Categories)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	out := dto.DeleteOutput{Collection: domain.Categories}
	for _, r := range stored {
		c := r.(domain.Category)
		if refs[c.ID] > 0 {
			if !c.IsArchived {
				c.IsArchived = true
				if err := i.svc.Put(ctx, c); err != nil {
					return out, err
				}
			}
			out.Archived++
			continue
		}
		if _, err := i.svc.Delete(ctx, domain.Categories, c.ID); err != nil {
			return out, err
		}
		out.Removed++
	}
	return out, nil
}

// subjectRefs counts records per referenced category id.
func (i *Interactor) subjectRefs(ctx context.Context) (map[string]int, error) {
	refs := map[string]int{}
	for _, c := range domain.SubjectCollections {
		records, err := i.svc.GetAll(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if subject := domain.SubjectOf(r); subject != "" {
				refs[subject]++
			}
		}
	}
	return refs, nil
}

func (i *Interactor) Items(ctx context.Context, c dto.Collection) ([]dto.Item, error) {
	if err := requireItemCollection(c); err != nil {
		return nil, err
	}
	records, err := i.svc.GetAll(ctx, c)
	if err != nil {
		return nil, err
	}
	items := make([]dto.Item, 0, len(records))
	for _, r := range records {
		items = append(items, itemOf(r))
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].Order < items[b].Order })
	return items, nil
}

// CreateItem appends a goal or task after every existing one.
func (i *Interactor) CreateItem(ctx context.Context, input dto.CreateItemInput) (dto.Item, error) {
	existing, err := i.Items(ctx, input.Collection)
	if err != nil {
		return dto.Item{}, err
	}
	status := domain.StatusTodo
	if input.Status != "" {
		if status, err = domain.ParseStatus(input.Status); err != nil {
			return dto.Item{}, err
		}
	}
	priority := domain.PriorityMedium
	if input.Priority != "" {
		if priority, err = domain.ParsePriority(input.Priority); err != nil {
			return dto.Item{}, err
		}
	}
	var order int64
	for _, it := range existing {
		if it.Order >= order {
			order = it.Order + 1
		}
	}
	now := clock.Millis(i.clock.Now())
	item := domain.Item{
		ID:         i.idGen.New(),
		Title:      strings.TrimSpace(input.Title),
		Status:     status,
		Priority:   priority,
		SubjectID:  input.SubjectID,
		DateString: input.DateString,
		Order:      order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := i.svc.Put(ctx, wrapItem(input.Collection, item)); err != nil {
		return dto.Item{}, err
	}
	return item, nil
}

func (i *Interactor) MoveItem(ctx context.Context, input dto.MoveItemInput) (dto.Item, error) {
	items, err := i.Items(ctx, input.Collection)
	if err != nil {
		return dto.Item{}, err
	}
	for _, item := range items {
		if item.ID != input.ID {
			continue
		}
		if input.Status != "" {
			status, err := domain.ParseStatus(input.Status)
			if err != nil {
				return dto.Item{}, err
			}
			item.Status = status
		}
		if input.Order != nil {
			item.Order = *input.Order
		}
		item.UpdatedAt = clock.Millis(i.clock.Now())
		if err := i.svc.Put(ctx, wrapItem(input.Collection, item)); err != nil {
			return dto.Item{}, err
		}
		return item, nil
	}
	return dto.Item{}, fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, input.Collection, input.ID)
}

// SaveJournal keeps one entry per day: an existing entry for the same date
// lends its id so the save replaces it.
func (i *Interactor) SaveJournal(ctx context.Context, entry dto.JournalEntry) (dto.JournalEntry, error) {
	if entry.DateString == "" {
		entry.DateString = clock.DateString(clock.Millis(i.clock.Now()), i.loc)
	}
	existing, found, err := i.JournalFor(ctx, entry.DateString)
	if err != nil {
		return dto.JournalEntry{}, err
	}
	switch {
	case found:
		entry.ID = existing.ID
	case entry.ID == "":
		entry.ID = i.idGen.New()
	}
	entry.UpdatedAt = clock.Millis(i.clock.Now())
	if err := i.svc.Put(ctx, entry); err != nil {
		return dto.JournalEntry{}, err
	}
	return entry, nil
}

func (i *Interactor) JournalFor(ctx context.Context, date string) (dto.JournalEntry, bool, error) {
	if date == "" {
		date = clock.DateString(clock.Millis(i.clock.Now()), i.loc)
	}
	records, err := i.svc.GetByDate(ctx, domain.Journal, date)
	if err != nil {
		return dto.JournalEntry{}, false, err
	}
	if len(records) == 0 {
		return dto.JournalEntry{}, false, nil
	}
	return records[len(records)-1].(domain.JournalEntry), true, nil
}

func sessionsOf(records []domain.Record) []dto.Session {
	out := make([]dto.Session, 0, len(records))
	for _, r := range records {
		out = append(out, r.(domain.Session))
	}
	return out
}

func requireItemCollection(c domain.Collection) error {
	if c != domain.Goals && c != domain.Tasks {
		return fmt.Errorf("%w: %s does not hold goals or tasks", apperrors.ErrInvalidInput, c)
	}
	return nil
}

func itemOf(r domain.Record) domain.Item {
	switch v := r.(type) {
	case domain.Goal:
		return v.Item
	case domain.Task:
		return v.Item
	}
	return domain.Item{}
}

func wrapItem(c domain.Collection, item domain.Item) domain.Record {
	if c == domain.Goals {
		return domain.Goal{Item: item}
	}
	return domain.Task{Item: item}
}
