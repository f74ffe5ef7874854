package qrcode

import (
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// Level is an error-correction strength.
type Level string

const (
	LevelL Level = "L" // ~7% recovery
	LevelM Level = "M" // ~15% recovery
	LevelQ Level = "Q" // ~25% recovery
	LevelH Level = "H" // ~30% recovery
)

// Levels lists all levels ordered from the largest capacity to the smallest.
var Levels = []Level{LevelL, LevelM, LevelQ, LevelH}

// ParseLevel parses a level name, case-insensitive.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelL, LevelM, LevelQ, LevelH:
		return true
	default:
		return false
	}
}

// RecoveryPercent returns the approximate share of the symbol that can be
// restored at this level.
func (l Level) RecoveryPercent() int {
	switch l {
	case LevelL:
		return 7
	case LevelM:
		return 15
	case LevelQ:
		return 25
	case LevelH:
		return 30
	default:
		return 0
	}
}

func (l Level) String() string { return string(l) }

func (l Level) recovery() skipqrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return skipqrcode.Low
	case LevelQ:
		return skipqrcode.High
	case LevelH:
		return skipqrcode.Highest
	default:
		return skipqrcode.Medium
	}
}
