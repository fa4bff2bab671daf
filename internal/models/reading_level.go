package models

// ReadingLevel is one of three ordered difficulty tiers a profile reads at
type ReadingLevel string

const (
	LevelExplorer   ReadingLevel = "Explorer"
	LevelBuilder    ReadingLevel = "Builder"
	LevelChallenger ReadingLevel = "Challenger"
)

// Ordinal returns the 1-based position of the level (Explorer=1 .. Challenger=3).
// Unknown levels are treated as Explorer.
func (l ReadingLevel) Ordinal() int {
	switch l {
	case LevelBuilder:
		return 2
	case LevelChallenger:
		return 3
	default:
		return 1
	}
}

// IsValid reports whether the level is one of the three known tiers
func (l ReadingLevel) IsValid() bool {
	return l == LevelExplorer || l == LevelBuilder || l == LevelChallenger
}

// LevelFromOrdinal converts a 1-based ordinal back to a level, clamping to the ends
func LevelFromOrdinal(ordinal int) ReadingLevel {
	switch {
	case ordinal <= 1:
		return LevelExplorer
	case ordinal == 2:
		return LevelBuilder
	default:
		return LevelChallenger
	}
}

// ParseReadingLevel converts stored text to a ReadingLevel, defaulting to Explorer
func ParseReadingLevel(s string) ReadingLevel {
	level := ReadingLevel(s)
	if !level.IsValid() {
		return LevelExplorer
	}
	return level
}
