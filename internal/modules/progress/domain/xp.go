// Package domain holds the leveling curve. Level L starts at 100*(L-1)^2 XP.
package domain

import "math"

const (
	xpPerLevelUnit = 100
	xpPerMinute    = 10
	msPerMinute    = 60_000
)

func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return xpPerLevelUnit * n * n
}

func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return int(isqrt(xp/xpPerLevelUnit)) + 1
}

// isqrt is floor(sqrt(n)) without float rounding surprises near squares.
func isqrt(n int64) int64 {
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// SessionXP awards ten points per whole minute.
func SessionXP(durationMs int64) int64 {
	if durationMs <= 0 {
		return 0
	}
	return durationMs / msPerMinute * xpPerMinute
}

type Progress struct {
	XP          int64
	Level       int
	NextLevel   int
	LevelXP     int64
	NextLevelXP int64
	Percent     float64
}

func ProgressFor(xp int64) Progress {
	if xp < 0 {
		xp = 0
	}
	level := LevelForXP(xp)
	p := Progress{
		XP:          xp,
		Level:       level,
		NextLevel:   level + 1,
		LevelXP:     XPForLevel(level),
		NextLevelXP: XPForLevel(level + 1),
	}
	if span := p.NextLevelXP - p.LevelXP; span > 0 {
		p.Percent = float64(xp-p.LevelXP) / float64(span) * 100
	}
	return p
}
