package domain

import (
	"fmt"

	apperrors "studyhub/internal/platform/errors"
)

// Collection names double as table names and as remote path segments, so
// they must never change once released.
type Collection string

const (
	Sessions   Collection = "sessions"
	Categories Collection = "subjects"
	Goals      Collection = "goals"
	Tasks      Collection = "tasks"
	Exams      Collection = "exams"
	Chats      Collection = "chats"
	Journal    Collection = "journal"
)

// AllCollections lists every synced collection in backup order.
var AllCollections = []Collection{Sessions, Categories, Goals, Tasks, Exams, Chats, Journal}

func (c Collection) DateIndexed() bool {
	return c == Sessions || c == Journal
}

func (c Collection) Valid() bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if name == "categories" {
		c = Categories
	}
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown collection %q", apperrors.ErrInvalidInput, name)
	}
	return c, nil
}
