package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	recordout "studyhub/internal/modules/record/adapter/out"
	"studyhub/internal/modules/record/domain"
	"studyhub/internal/modules/record/dto"
	recordin "studyhub/internal/modules/record/port/in"
	"studyhub/internal/modules/record/service"
	"studyhub/internal/modules/record/usecase"
	apperrors "studyhub/internal/platform/errors"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type recordingObserver struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
}

func (r *recordingObserver) RecordPut(c domain.Collection, id string, _ []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts = append(r.puts, string(c)+"/"+id)
}

func (r *recordingObserver) RecordDeleted(c domain.Collection, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, string(c)+"/"+id)
}

func newStore(t *testing.T) (recordin.Usecase, *recordingObserver) {
	t.Helper()
	engine, err := recordout.NewSQLiteEngine(filepath.Join(t.TempDir(), "studyhub.db"))
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	svc := service.NewRecordService(engine)
	obs := &recordingObserver{}
	svc.SetObserver(obs)
	clk := &fakeClock{now: time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)}
	return usecase.NewInteractor(svc, clk, &seqID{}, time.UTC), obs
}

func TestPutTwiceKeepsOneRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, obs := newStore(t)
	exam := dto.Exam{ID: "e1", Title: "Calculus final", SubjectID: "subject-math", Date: "2026-06-01", Topics: "limits"}
	for i := 0; i < 2; i++ {
		if err := uc.Put(ctx, exam); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	all, err := uc.GetAll(ctx, domain.Exams)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 || all[0] != dto.Record(exam) {
		t.Fatalf("expected exactly the stored exam, got %+v", all)
	}
	if len(obs.puts) != 2 {
		t.Fatalf("every put must reach the observer, got %v", obs.puts)
	}
}

func TestInvalidRecordIsRejectedBeforeWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, obs := newStore(t)
	err := uc.Put(ctx, dto.Session{ID: "s1", StartTime: 10, EndTime: 10, DurationMs: 0, DateString: "2026-04-10"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	sessions, err := uc.Sessions(ctx)
	if err != nil || len(sessions) != 0 {
		t.Fatalf("nothing should be stored: %v %v", sessions, err)
	}
	if len(obs.puts) != 0 {
		t.Fatalf("observer must not hear rejected writes")
	}
}

func TestCategoriesFallBackToDefaultsWithoutPersisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, obs := newStore(t)

	cats, err := uc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != len(domain.DefaultCategories()) {
		t.Fatalf("expected default set, got %d", len(cats))
	}
	stored, err := uc.GetAll(ctx, domain.Categories)
	if err != nil || len(stored) != 0 {
		t.Fatalf("defaults must not be persisted: %v %v", stored, err)
	}
	if len(obs.puts) != 0 {
		t.Fatalf("read fallback must not push")
	}

	added, err := uc.AddCategory(ctx, dto.AddCategoryInput{Name: "Chemistry", Color: "#00ff00"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	cats, err = uc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories after add: %v", err)
	}
	if len(cats) != 1 || cats[0].ID != added.ID || cats[0].Color.Kind() != domain.ColorHex {
		t.Fatalf("explicit write replaces fallback, got %+v", cats)
	}
}

func TestArchiveDefaultCategoryPersistsIt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)
	archived, err := uc.ArchiveCategory(ctx, "subject-math")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.IsArchived {
		t.Fatalf("expected archived flag")
	}
	cats, err := uc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != len(domain.DefaultCategories()) {
		t.Fatalf("archiving must keep the other defaults, got %d", len(cats))
	}
	for _, c := range cats {
		if c.IsArchived != (c.ID == "subject-math") {
			t.Fatalf("unexpected archive flag on %+v", c)
		}
	}
	if _, err := uc.ArchiveCategory(ctx, "subject-unknown"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveJournalUpsertsByDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)

	first, err := uc.SaveJournal(ctx, dto.JournalEntry{DateString: "2026-04-10", Mood: 6, Wins: []string{"shipped"}})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := uc.SaveJournal(ctx, dto.JournalEntry{ID: "other", DateString: "2026-04-10", Mood: 8})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same day must reuse id %s, got %s", first.ID, second.ID)
	}
	entries, err := uc.GetByDate(ctx, domain.Journal, "2026-04-10")
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if len(entries) != 1 || entries[0].(domain.JournalEntry).Mood != 8 {
		t.Fatalf("expected single replaced entry, got %+v", entries)
	}
	if len(entries[0].(domain.JournalEntry).Wins) != 0 {
		t.Fatalf("replace is not a merge")
	}
}

func TestCreateAndMoveItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)

	var created []dto.Item
	for _, title := range []string{"outline", "draft", "review"} {
		item, err := uc.CreateItem(ctx, dto.CreateItemInput{Collection: domain.Tasks, Title: title})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		created = append(created, item)
	}
	for i := 1; i < len(created); i++ {
		if created[i].Order <= created[i-1].Order {
			t.Fatalf("order must grow on creation: %+v", created)
		}
	}
	if created[0].Status != domain.StatusTodo || created[0].Priority != domain.PriorityMedium {
		t.Fatalf("unexpected defaults %+v", created[0])
	}

	moved, err := uc.MoveItem(ctx, dto.MoveItemInput{Collection: domain.Tasks, ID: created[2].ID, Status: "done"})
	if err != nil {
		t.Fatalf("move to done: %v", err)
	}
	back, err := uc.MoveItem(ctx, dto.MoveItemInput{Collection: domain.Tasks, ID: moved.ID, Status: "todo"})
	if err != nil {
		t.Fatalf("move back to todo: %v", err)
	}
	if back.UpdatedAt <= created[2].UpdatedAt {
		t.Fatalf("move must bump updatedAt")
	}
	if back.CreatedAt != created[2].CreatedAt {
		t.Fatalf("move must keep createdAt")
	}
	if _, err := uc.MoveItem(ctx, dto.MoveItemInput{Collection: domain.Tasks, ID: "nope"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.Items(ctx, domain.Exams); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("exams are not items, got %v", err)
	}
	goals, err := uc.Items(ctx, domain.Goals)
	if err != nil || len(goals) != 0 {
		t.Fatalf("tasks and goals are separate collections: %v %v", goals, err)
	}
}

func TestApplyDoesNotEchoAndDeletesNotifyPerID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, obs := newStore(t)

	body := []byte(`{"id":"r1","subjectId":"subject-math","startTime":0,"endTime":60000,"durationMs":60000,"dateString":"2026-04-09"}`)
	if err := uc.Apply(ctx, domain.Sessions, body); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(obs.puts) != 0 {
		t.Fatalf("applied remote records must not be pushed back, got %v", obs.puts)
	}
	if err := uc.Apply(ctx, domain.Sessions, []byte(`{"id":"bad"}`)); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid remote record to be rejected, got %v", err)
	}

	if _, err := uc.AddSession(ctx, dto.AddSessionInput{SubjectID: "subject-math", StartTime: 1000, EndTime: 5000}); err != nil {
		t.Fatalf("add session: %v", err)
	}
	out, err := uc.DeleteByDate(ctx, domain.Sessions, "1970-01-01")
	if err != nil {
		t.Fatalf("delete by date: %v", err)
	}
	if out.Removed != 1 {
		t.Fatalf("expected one removal, got %d", out.Removed)
	}
	remaining, err := uc.Sessions(ctx)
	if err != nil || len(remaining) != 1 || remaining[0].ID != "r1" {
		t.Fatalf("unexpected remaining sessions %+v %v", remaining, err)
	}
	if len(obs.deletes) != 1 {
		t.Fatalf("expected one delete notification, got %v", obs.deletes)
	}
	if _, err := uc.DeleteByDate(ctx, domain.Tasks, "2026-04-09"); !errors.Is(err, apperrors.ErrNotDateIndexed) {
		t.Fatalf("expected not date indexed, got %v", err)
	}
}

func TestDeleteCategoryArchivesWhenReferenced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)

	physics, err := uc.AddCategory(ctx, dto.AddCategoryInput{Name: "Physics", Color: "blue"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	start := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC).UnixMilli()
	if _, err := uc.AddSession(ctx, dto.AddSessionInput{SubjectID: physics.ID, StartTime: start, EndTime: start + 60_000}); err != nil {
		t.Fatalf("add session: %v", err)
	}

	out, err := uc.DeleteCategory(ctx, physics.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !out.Archived || out.References != 1 {
		t.Fatalf("expected archive with one reference, got %+v", out)
	}
	categories, err := uc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != physics.ID || !categories[0].IsArchived {
		t.Fatalf("expected physics kept and archived, got %+v", categories)
	}
}

func TestDeleteCategoryRemovesUnreferenced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, obs := newStore(t)

	chem, err := uc.AddCategory(ctx, dto.AddCategoryInput{Name: "Chemistry", Color: "green"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	bio, err := uc.AddCategory(ctx, dto.AddCategoryInput{Name: "Biology", Color: "green"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	out, err := uc.DeleteCategory(ctx, chem.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out.Archived {
		t.Fatalf("expected hard delete, got %+v", out)
	}
	categories, _ := uc.Categories(ctx)
	if len(categories) != 1 || categories[0].ID != bio.ID {
		t.Fatalf("expected only biology left, got %+v", categories)
	}
	if len(obs.deletes) != 1 || obs.deletes[0] != "subjects/"+chem.ID {
		t.Fatalf("expected one delete notification, got %v", obs.deletes)
	}
	if _, err := uc.DeleteCategory(ctx, chem.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestDeleteDefaultCategoryKeepsTheRest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)

	if _, err := uc.DeleteCategory(ctx, "subject-history"); err != nil {
		t.Fatalf("delete default: %v", err)
	}
	categories, err := uc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != len(domain.DefaultCategories())-1 {
		t.Fatalf("expected one default gone, got %d", len(categories))
	}
	for _, c := range categories {
		if c.ID == "subject-history" {
			t.Fatalf("history should be gone: %+v", categories)
		}
	}
	if _, err := uc.DeleteCategory(ctx, "subject-nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown id: expected not found, got %v", err)
	}
}

func TestClearCategoriesKeepsReferencedOnes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)

	kept, _ := uc.AddCategory(ctx, dto.AddCategoryInput{Name: "Geometry", Color: "blue"})
	_, _ = uc.AddCategory(ctx, dto.AddCategoryInput{Name: "Art", Color: "#f5c2e7"})
	if _, err := uc.CreateItem(ctx, dto.CreateItemInput{Collection: dto.Tasks, Title: "proofs", SubjectID: kept.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	out, err := uc.Clear(ctx, dto.Categories)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if out.Removed != 1 || out.Archived != 1 {
		t.Fatalf("expected one removed and one archived, got %+v", out)
	}
	categories, _ := uc.Categories(ctx)
	if len(categories) != 1 || categories[0].ID != kept.ID || !categories[0].IsArchived {
		t.Fatalf("expected geometry archived, got %+v", categories)
	}
}

func TestEditSessionKeepsIDAndRecomputes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newStore(t)

	start := time.Date(2026, 4, 10, 23, 0, 0, 0, time.UTC).UnixMilli()
	s, err := uc.AddSession(ctx, dto.AddSessionInput{SubjectID: "subject-math", StartTime: start, EndTime: start + 30*60_000})
	if err != nil {
		t.Fatalf("add session: %v", err)
	}

	newStart := start + 2*60*60_000
	newEnd := newStart + 45*60_000
	subject := "subject-reading"
	edited, err := uc.EditSession(ctx, dto.EditSessionInput{ID: s.ID, SubjectID: &subject, StartTime: &newStart, EndTime: &newEnd})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.ID != s.ID || edited.DurationMs != 45*60_000 || edited.DateString != "2026-04-11" || edited.SubjectID != subject {
		t.Fatalf("unexpected edit result %+v", edited)
	}
	all, _ := uc.Sessions(ctx)
	if len(all) != 1 || all[0] != edited {
		t.Fatalf("expected the one session rewritten, got %+v", all)
	}

	backwards := newStart - 1
	if _, err := uc.EditSession(ctx, dto.EditSessionInput{ID: s.ID, EndTime: &backwards}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("end before start: expected invalid input, got %v", err)
	}
	if _, err := uc.EditSession(ctx, dto.EditSessionInput{ID: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing: expected not found, got %v", err)
	}
}

func TestAddExamAndAppendChat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, obs := newStore(t)

	exam, err := uc.AddExam(ctx, dto.AddExamInput{Title: " Organic midterm ", SubjectID: "subject-science", Date: "2026-05-02", Topics: "alkenes"})
	if err != nil {
		t.Fatalf("add exam: %v", err)
	}
	if exam.ID == "" || exam.Title != "Organic midterm" {
		t.Fatalf("unexpected exam %+v", exam)
	}
	if _, err := uc.AddExam(ctx, dto.AddExamInput{Title: "no date"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("exam without date: expected invalid input, got %v", err)
	}

	first, err := uc.AppendChat(ctx, dto.AppendChatInput{Role: "user", Content: "quiz me"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := uc.AppendChat(ctx, dto.AppendChatInput{Role: "assistant", Content: "what is an alkene?"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == second.ID || second.Timestamp <= first.Timestamp {
		t.Fatalf("expected distinct ids and rising timestamps: %+v %+v", first, second)
	}
	if _, err := uc.AppendChat(ctx, dto.AppendChatInput{Content: "no role"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("chat without role: expected invalid input, got %v", err)
	}
	if len(obs.puts) != 3 {
		t.Fatalf("expected three observed puts, got %v", obs.puts)
	}
}
