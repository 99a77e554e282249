package dto

import "studyhub/internal/modules/progress/domain"

type Progress = domain.Progress

type SummaryOutput struct {
	Progress     Progress
	SessionCount int
	TodayMs      int64
	TargetHours  float64
	TodayPercent float64
}

var (
	SessionXP   = domain.SessionXP
	LevelForXP  = domain.LevelForXP
	XPForLevel  = domain.XPForLevel
	ProgressFor = domain.ProgressFor
)
