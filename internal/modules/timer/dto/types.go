package dto

import (
	"time"

	recorddto "studyhub/internal/modules/record/dto"
)

type StartInput struct {
	Mode      string
	SubjectID string
}

type StatusOutput struct {
	Status        string
	Mode          string
	SubjectID     string
	StartTime     *int64
	Elapsed       time.Duration
	Target        time.Duration
	Remaining     time.Duration
	TargetReached bool
}

type StopOutput struct {
	Elapsed     time.Duration
	Session     *recorddto.Session
	XPAwarded   int64
	LevelBefore int
	LevelAfter  int
	LeveledUp   bool
}

type SoundOutput struct {
	ID       string
	Label    string
	Src      string
	IsCustom bool
}
