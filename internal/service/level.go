package service

import (
	"storyjars/internal/models"
)

// Reading-level transition thresholds. Promotion requires strictly more
// than promoteSpeedWpm; demotion requires strictly less. Exactly 100 wpm
// therefore never moves the level in either direction.
const (
	promoteSpeedWpm      = 100.0
	promoteComprehension = 100
	demoteSpeedWpm       = 100.0
	demoteComprehension  = 80
)

// EvaluateReadingLevel applies one quiz outcome to the level state
// machine. Promotion is attempted first; demotion only when promotion did
// not occur. Callers must only invoke this for a learner's first attempt
// at a chapter.
func EvaluateReadingLevel(current models.ReadingLevel, speedWpm float64, comprehension int) (models.ReadingLevel, bool) {
	if speedWpm > promoteSpeedWpm && comprehension == promoteComprehension && current != models.LevelChallenger {
		return models.LevelFromOrdinal(current.Ordinal() + 1), true
	}
	if speedWpm < demoteSpeedWpm && comprehension < demoteComprehension && current != models.LevelExplorer {
		return models.LevelFromOrdinal(current.Ordinal() - 1), true
	}
	return current, false
}
