package dto

import "studyhub/internal/modules/record/domain"

// Record shapes are shared verbatim with callers outside the module.
type (
	Collection   = domain.Collection
	Record       = domain.Record
	Session      = domain.Session
	Category     = domain.Category
	Item         = domain.Item
	Goal         = domain.Goal
	Task         = domain.Task
	Exam         = domain.Exam
	ChatMessage  = domain.ChatMessage
	JournalEntry = domain.JournalEntry
	Color        = domain.Color
)

type CreateItemInput struct {
	Collection Collection
	Title      string
	Status     string
	Priority   string
	SubjectID  string
	DateString string
}

type MoveItemInput struct {
	Collection Collection
	ID         string
	Status     string
	Order      *int64
}

type AddSessionInput struct {
	SubjectID string
	StartTime int64
	EndTime   int64
}

// EditSessionInput changes the fields that are set; the id stays.
type EditSessionInput struct {
	ID        string
	SubjectID *string
	StartTime *int64
	EndTime   *int64
}

type AddExamInput struct {
	Title     string
	SubjectID string
	Date      string
	Topics    string
}

type AppendChatInput struct {
	Role    string
	Content string
}

type AddCategoryInput struct {
	Name  string
	Color string
}

type DeleteOutput struct {
	Collection Collection
	Removed    int
	Archived   int
}

// DeleteCategoryOutput tells whether a category was removed or, because
// history still refers to it, archived.
type DeleteCategoryOutput struct {
	ID         string
	Archived   bool
	References int
}

var (
	ParseCollection   = domain.ParseCollection
	ParseColor        = domain.ParseColor
	AllCollections    = domain.AllCollections
	DefaultCategories = domain.DefaultCategories
)

const (
	Sessions   = domain.Sessions
	Categories = domain.Categories
	Goals      = domain.Goals
	Tasks      = domain.Tasks
	Exams      = domain.Exams
	Chats      = domain.Chats
	Journal    = domain.Journal
	ColorHex   = domain.ColorHex
	ColorNamed = domain.ColorNamed
)

// Decode validates a JSON body as a record of collection c.
var Decode = domain.Decode
