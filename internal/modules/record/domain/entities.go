package domain

import (
	"fmt"
	"strings"

	apperrors "studyhub/internal/platform/errors"
)

// Session is one completed stretch of focused time on a category.
type Session struct {
	ID         string `json:"id"`
	SubjectID  string `json:"subjectId"`
	StartTime  int64  `json:"startTime"`
	EndTime    int64  `json:"endTime"`
	DurationMs int64  `json:"durationMs"`
	DateString string `json:"dateString"`
}

func (s Session) RecordID() string       { return s.ID }
func (s Session) Collection() Collection { return Sessions }
func (s Session) IndexDate() string      { return s.DateString }

func (s Session) Validate() error {
	if err := requireID(Sessions, s.ID); err != nil {
		return err
	}
	if s.DurationMs <= 0 {
		return fmt.Errorf("%w: session %s duration must be positive", apperrors.ErrInvalidInput, s.ID)
	}
	if s.EndTime-s.StartTime != s.DurationMs {
		return fmt.Errorf("%w: session %s end-start (%d) differs from duration %d", apperrors.ErrInvalidInput, s.ID, s.EndTime-s.StartTime, s.DurationMs)
	}
	return requireDate(Sessions, "dateString", s.DateString)
}

// Category is what the UI calls a subject.
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      Color  `json:"color"`
	IsArchived bool   `json:"isArchived"`
}

func (c Category) RecordID() string       { return c.ID }
func (c Category) Collection() Collection { return Categories }

func (c Category) Validate() error {
	if err := requireID(Categories, c.ID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category %s name is required", apperrors.ErrInvalidInput, c.ID)
	}
	return nil
}

type ItemStatus string

const (
	StatusTodo       ItemStatus = "todo"
	StatusInProgress ItemStatus = "in-progress"
	StatusDone       ItemStatus = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ParseStatus(s string) (ItemStatus, error) {
	switch st := ItemStatus(s); st {
	case StatusTodo, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("%w: status %q", apperrors.ErrInvalidInput, s)
}

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: priority %q", apperrors.ErrInvalidInput, s)
}

// Item is the shared shape of goals and tasks. Status moves freely between
// any two values; Order sorts items within a status column.
type Item struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     ItemStatus `json:"status"`
	Priority   Priority   `json:"priority"`
	SubjectID  string     `json:"subjectId"`
	DateString string     `json:"dateString"`
	Order      int64      `json:"order"`
	CreatedAt  int64      `json:"createdAt"`
	UpdatedAt  int64      `json:"updatedAt"`
}

func (i Item) RecordID() string { return i.ID }

func (i Item) validate(c Collection) error {
	if err := requireID(c, i.ID); err != nil {
		return err
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("%w: %s %s title is required", apperrors.ErrInvalidInput, c, i.ID)
	}
	if _, err := ParseStatus(string(i.Status)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(i.Priority)); err != nil {
		return err
	}
	if i.DateString != "" {
		return requireDate(c, "dateString", i.DateString)
	}
	return nil
}

type Goal struct{ Item }

func (g Goal) Collection() Collection { return Goals }
func (g Goal) Validate() error        { return g.validate(Goals) }

type Task struct{ Item }

func (t Task) Collection() Collection { return Tasks }
func (t Task) Validate() error        { return t.validate(Tasks) }

type Exam struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SubjectID string `json:"subjectId"`
	Date      string `json:"date"`
	Topics    string `json:"topics"`
}

func (e Exam) RecordID() string       { return e.ID }
func (e Exam) Collection() Collection { return Exams }

func (e Exam) Validate() error {
	if err := requireID(Exams, e.ID); err != nil {
		return err
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: exam %s title is required", apperrors.ErrInvalidInput, e.ID)
	}
	return requireDate(Exams, "date", e.Date)
}

type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func (m ChatMessage) RecordID() string       { return m.ID }
func (m ChatMessage) Collection() Collection { return Chats }

func (m ChatMessage) Validate() error {
	if err := requireID(Chats, m.ID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Role) == "" {
		return fmt.Errorf("%w: chat message %s role is required", apperrors.ErrInvalidInput, m.ID)
	}
	return nil
}

// JournalEntry holds one reflection per calendar day.
type JournalEntry struct {
	ID            string   `json:"id"`
	DateString    string   `json:"dateString"`
	Energy        int      `json:"energy"`
	Stress        int      `json:"stress"`
	Mood          int      `json:"mood"`
	Gratitude     []string `json:"gratitude"`
	Wins          []string `json:"wins"`
	Challenges    []string `json:"challenges"`
	Lessons       []string `json:"lessons"`
	Highlights    []string `json:"highlights"`
	Notes         string   `json:"notes"`
	TomorrowFocus string   `json:"tomorrowFocus"`
	UpdatedAt     int64    `json:"updatedAt"`
}

func (j JournalEntry) RecordID() string       { return j.ID }
func (j JournalEntry) Collection() Collection { return Journal }
func (j JournalEntry) IndexDate() string      { return j.DateString }

func (j JournalEntry) Validate() error {
	if err := requireID(Journal, j.ID); err != nil {
		return err
	}
	if err := requireDate(Journal, "dateString", j.DateString); err != nil {
		return err
	}
	ratings := []struct {
		name  string
		value int
	}{
		{"energy", j.Energy},
		{"stress", j.Stress},
		{"mood", j.Mood},
	}
	for _, r := range ratings {
		if r.value < 0 || r.value > 10 {
			return fmt.Errorf("%w: journal %s %s must be within 0..10", apperrors.ErrInvalidInput, j.DateString, r.name)
		}
	}
	return nil
}

// SubjectOf returns the category r refers to, or "" for records that carry
// no subject.
func SubjectOf(r Record) string {
	switch v := r.(type) {
	case Session:
		return v.SubjectID
	case Goal:
		return v.SubjectID
	case Task:
		return v.SubjectID
	case Exam:
		return v.SubjectID
	}
	return ""
}

// SubjectCollections hold records that may refer to a category.
var SubjectCollections = []Collection{Sessions, Goals, Tasks, Exams}
