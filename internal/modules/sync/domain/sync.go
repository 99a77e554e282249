package domain

import (
	"encoding/json"
	"time"
)

type OpKind string

const (
	OpPut    OpKind = "put"
	OpDelete OpKind = "delete"
)

// Op is one pending mirror call kept in the outbox.
type Op struct {
	Kind       OpKind          `json:"kind"`
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Body       json.RawMessage `json:"body,omitempty"`
	At         int64           `json:"at"`
}

// Key names one record across collections.
type Key struct {
	Collection string
	ID         string
}

// BodyID reads the id field of a record body, or "" when it has none.
func BodyID(body []byte) string {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return ""
	}
	return head.ID
}

type CollectionResult struct {
	Collection string
	Pulled     int
	Skipped    int
	// Held counts remote records not applied because a newer local write
	// is still queued for them.
	Held int
	Err  error
}

type PullReport struct {
	At      time.Time
	Results []CollectionResult
}

func (r PullReport) Pulled() map[string]int {
	out := map[string]int{}
	for _, res := range r.Results {
		if res.Err == nil {
			out[res.Collection] = res.Pulled
		}
	}
	return out
}

func (r PullReport) Failed() map[string]string {
	out := map[string]string{}
	for _, res := range r.Results {
		if res.Err != nil {
			out[res.Collection] = res.Err.Error()
		}
	}
	return out
}
