package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	backupout "studyhub/internal/modules/backup/adapter/out"
	backupin "studyhub/internal/modules/backup/port/in"
	"studyhub/internal/modules/backup/service"
	"studyhub/internal/modules/backup/usecase"
	recordout "studyhub/internal/modules/record/adapter/out"
	recorddto "studyhub/internal/modules/record/dto"
	recordin "studyhub/internal/modules/record/port/in"
	recordservice "studyhub/internal/modules/record/service"
	recordusecase "studyhub/internal/modules/record/usecase"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/kv"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC) }

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

type putCounter struct {
	mu   sync.Mutex
	puts int
}

func (p *putCounter) RecordPut(recorddto.Collection, string, []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.puts++
}

func (p *putCounter) RecordDeleted(recorddto.Collection, string) {}

func (p *putCounter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.puts
}

type fixture struct {
	records recordin.Usecase
	prefs   *kv.FileStore
	backup  backupin.Usecase
	writes  *putCounter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	engine, err := recordout.NewSQLiteEngine(filepath.Join(dir, "studyhub.db"))
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })

	svc := recordservice.NewRecordService(engine)
	writes := &putCounter{}
	svc.SetObserver(writes)
	records := recordusecase.NewInteractor(svc, fixedClock{}, &seqID{}, time.UTC)
	prefs := kv.NewFileStore(filepath.Join(dir, "local.json"))

	codec := service.NewBackupService(records, prefs, fixedClock{}, nil, "timer.active", "auth.identity")
	return fixture{
		records: records,
		prefs:   prefs,
		backup:  usecase.NewInteractor(codec, backupout.NewJournalVault()),
		writes:  writes,
	}
}

func seed(t *testing.T, f fixture) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.records.AddCategory(ctx, recorddto.AddCategoryInput{Name: "Chemistry", Color: "#22aa88"}); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if _, err := f.records.AddSession(ctx, recorddto.AddSessionInput{SubjectID: "subject-math", StartTime: 1_000_000, EndTime: 1_065_000}); err != nil {
		t.Fatalf("add session: %v", err)
	}
	for _, c := range []recorddto.Collection{recorddto.Goals, recorddto.Tasks} {
		if _, err := f.records.CreateItem(ctx, recorddto.CreateItemInput{Collection: c, Title: "read chapter 4"}); err != nil {
			t.Fatalf("create %s: %v", c, err)
		}
	}
	if err := f.records.Put(ctx, recorddto.Exam{ID: "exam-1", Title: "Finals", SubjectID: "subject-math", Date: "2026-06-01"}); err != nil {
		t.Fatalf("put exam: %v", err)
	}
	if err := f.records.Put(ctx, recorddto.ChatMessage{ID: "chat-1", Role: "user", Content: "hi", Timestamp: 42}); err != nil {
		t.Fatalf("put chat: %v", err)
	}
	if _, err := f.records.SaveJournal(ctx, recorddto.JournalEntry{DateString: "2026-03-01", Mood: 7, Energy: 6, Stress: 3, Wins: []string{"shipped"}}); err != nil {
		t.Fatalf("save journal: %v", err)
	}
	for key, value := range map[string]string{"targetHours": "6", "theme.accent": "mauve", "timer.active": `{"status":"running"}`} {
		if err := f.prefs.Set(ctx, key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
}

func snapshot(t *testing.T, records recordin.Usecase) map[recorddto.Collection][]string {
	t.Helper()
	out := map[recorddto.Collection][]string{}
	for _, c := range recorddto.AllCollections {
		items, err := records.Export(context.Background(), c)
		if err != nil {
			t.Fatalf("export %s: %v", c, err)
		}
		rows := make([]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, string(item))
		}
		sort.Strings(rows)
		out[c] = rows
	}
	return out
}

func TestExportImportRoundTripIntoFreshStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newFixture(t)
	seed(t, src)

	buf := bytes.Buffer{}
	exported, err := src.backup.Export(ctx, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.Counts["sessions"] != 1 || exported.Counts["journal"] != 1 || exported.Local != 2 {
		t.Fatalf("unexpected export summary: %+v", exported)
	}

	dst := newFixture(t)
	imported, err := dst.backup.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Local != 2 {
		t.Fatalf("expected 2 local keys, got %d", imported.Local)
	}

	want := snapshot(t, src.records)
	got := snapshot(t, dst.records)
	for _, c := range recorddto.AllCollections {
		if strings.Join(want[c], "\n") != strings.Join(got[c], "\n") {
			t.Fatalf("%s mismatch:\nwant %v\ngot  %v", c, want[c], got[c])
		}
	}

	if v, ok, _ := dst.prefs.Get(ctx, "targetHours"); !ok || v != "6" {
		t.Fatalf("expected targetHours restored, got %q %v", v, ok)
	}
	if _, ok, _ := dst.prefs.Get(ctx, "timer.active"); ok {
		t.Fatalf("active timer must not travel in a backup")
	}
	if dst.writes.count() != imported.Counts["sessions"]+imported.Counts["subjects"]+imported.Counts["goals"]+
		imported.Counts["tasks"]+imported.Counts["exams"]+imported.Counts["chats"]+imported.Counts["journal"] {
		t.Fatalf("every restored record should go through the write path, got %d writes", dst.writes.count())
	}
}

func TestExportDocumentShape(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	buf := bytes.Buffer{}
	if _, err := f.backup.Export(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(doc["version"]) != "1" || string(doc["date"]) != `"2026-03-02T08:30:00Z"` {
		t.Fatalf("unexpected header: version=%s date=%s", doc["version"], doc["date"])
	}
	db := map[string][]json.RawMessage{}
	if err := json.Unmarshal(doc["db"], &db); err != nil {
		t.Fatalf("decode db: %v", err)
	}
	for _, c := range recorddto.AllCollections {
		items, ok := db[string(c)]
		if !ok || items == nil {
			t.Fatalf("expected %s present as an array", c)
		}
	}
}

func TestImportRejectsMalformedDocumentsBeforeWriting(t *testing.T) {
	t.Parallel()
	valid := `{"id":"s1","subjectId":"subject-math","startTime":0,"endTime":60000,"durationMs":60000,"dateString":"1970-01-01"}`
	cases := map[string]string{
		"not json":           `{"version":1,`,
		"wrong version":      `{"version":2,"db":{}}`,
		"missing db":         `{"version":1}`,
		"unknown collection": `{"version":1,"db":{"sessions":[` + valid + `],"notes":[]}}`,
		"unknown field":      `{"version":1,"db":{},"extra":true}`,
		"invalid record":     `{"version":1,"db":{"sessions":[` + valid + `,{"id":"s2","durationMs":-5}]}}`,
		"duplicate id":       `{"version":1,"db":{"sessions":[` + valid + `,` + valid + `]}}`,
		"trailing data":      `{"version":1,"db":{}} {}`,
		"bad date":           `{"version":1,"date":"yesterday","db":{}}`,
	}
	cases["two journal entries for a day"] = `{"version":1,"db":{"journal":[` +
		`{"id":"j1","dateString":"2026-03-01","mood":5},` +
		`{"id":"j2","dateString":"2026-03-01","mood":6}]}}`
	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			_, err := f.backup.Import(context.Background(), strings.NewReader(raw))
			if !errors.Is(err, apperrors.ErrInvalidBackupFormat) {
				t.Fatalf("expected invalid backup format, got %v", err)
			}
			if f.writes.count() != 0 {
				t.Fatalf("expected no writes, got %d", f.writes.count())
			}
			sessions, err := f.records.Sessions(context.Background())
			if err != nil {
				t.Fatalf("sessions: %v", err)
			}
			if len(sessions) != 0 {
				t.Fatalf("expected empty store, got %d sessions", len(sessions))
			}
		})
	}
}

func TestImportIsAdditive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	if err := f.records.Put(ctx, recorddto.Exam{ID: "keep", Title: "Midterm", Date: "2026-04-01"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	raw := `{"version":1,"db":{"exams":[{"id":"new","title":"Quiz","subjectId":"","date":"2026-04-02","topics":""}]},"local":{}}`
	if _, err := f.backup.Import(ctx, strings.NewReader(raw)); err != nil {
		t.Fatalf("import: %v", err)
	}
	exams, err := f.records.GetAll(ctx, recorddto.Exams)
	if err != nil {
		t.Fatalf("get exams: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("expected both exams, got %d", len(exams))
	}
}

func TestImportJournalFoldsIntoExistingDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	saved, err := f.records.SaveJournal(ctx, recorddto.JournalEntry{DateString: "2026-03-01", Mood: 4})
	if err != nil {
		t.Fatalf("save journal: %v", err)
	}
	raw := `{"version":1,"db":{"journal":[{"id":"other-device","dateString":"2026-03-01","mood":9,"notes":"from laptop"}]},"local":{}}`
	if _, err := f.backup.Import(ctx, strings.NewReader(raw)); err != nil {
		t.Fatalf("import: %v", err)
	}
	entries, err := f.records.GetByDate(ctx, recorddto.Journal, "2026-03-01")
	if err != nil {
		t.Fatalf("journal by date: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry for the day, got %d", len(entries))
	}
	got := entries[0].(recorddto.JournalEntry)
	if got.ID != saved.ID || got.Mood != 9 || got.Notes != "from laptop" {
		t.Fatalf("imported entry should replace the day's entry under its id, got %+v", got)
	}
}

func TestExportFileWritesAtomically(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	seed(t, f)
	path := filepath.Join(t.TempDir(), "nested", "backup.json")
	out, err := f.backup.ExportFile(ctx, path)
	if err != nil {
		t.Fatalf("export file: %v", err)
	}
	if out.Path != path {
		t.Fatalf("unexpected path %q", out.Path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}

	dst := newFixture(t)
	if _, err := dst.backup.ImportFile(ctx, path); err != nil {
		t.Fatalf("import file: %v", err)
	}
}

func TestJournalMarkdownKeepsUserText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	seed(t, f)
	dir := t.TempDir()

	out, err := f.backup.ExportJournal(ctx, dir)
	if err != nil {
		t.Fatalf("export journal: %v", err)
	}
	if out.Notes != 1 {
		t.Fatalf("expected one note, got %d", out.Notes)
	}
	path := filepath.Join(dir, "journal", "2026", "03", "01.md")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	text := string(raw)
	for _, want := range []string{"mood: 7", "energy: 6", "- shipped", "# 2026-03-01"} {
		if !strings.Contains(text, want) {
			t.Fatalf("note missing %q:\n%s", want, text)
		}
	}

	edited := text + "\nmy own paragraph\n"
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}
	if _, err := f.records.SaveJournal(ctx, recorddto.JournalEntry{DateString: "2026-03-01", Mood: 9, Wins: []string{"rewrote it"}}); err != nil {
		t.Fatalf("save journal: %v", err)
	}
	if _, err := f.backup.ExportJournal(ctx, dir); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	raw, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	text = string(raw)
	if !strings.Contains(text, "my own paragraph") || !strings.Contains(text, "- rewrote it") || strings.Contains(text, "- shipped") {
		t.Fatalf("unexpected note after re-export:\n%s", text)
	}
}
