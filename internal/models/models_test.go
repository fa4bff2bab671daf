package models

import (
	"testing"
)

func TestReadingLevelOrdinal(t *testing.T) {
	tests := []struct {
		name  string
		level ReadingLevel
		want  int
	}{
		{name: "explorer", level: LevelExplorer, want: 1},
		{name: "builder", level: LevelBuilder, want: 2},
		{name: "challenger", level: LevelChallenger, want: 3},
		{name: "unknown treated as explorer", level: ReadingLevel("Wizard"), want: 1},
		{name: "empty treated as explorer", level: ReadingLevel(""), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.Ordinal(); got != tt.want {
				t.Errorf("Ordinal() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelFromOrdinal(t *testing.T) {
	tests := []struct {
		name    string
		ordinal int
		want    ReadingLevel
	}{
		{name: "one is explorer", ordinal: 1, want: LevelExplorer},
		{name: "two is builder", ordinal: 2, want: LevelBuilder},
		{name: "three is challenger", ordinal: 3, want: LevelChallenger},
		{name: "below range clamps to explorer", ordinal: 0, want: LevelExplorer},
		{name: "above range clamps to challenger", ordinal: 4, want: LevelChallenger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromOrdinal(tt.ordinal); got != tt.want {
				t.Errorf("LevelFromOrdinal(%d) = %s, want %s", tt.ordinal, got, tt.want)
			}
		})
	}
}

func TestParseReadingLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ReadingLevel
	}{
		{name: "valid level", input: "Builder", want: LevelBuilder},
		{name: "empty defaults to explorer", input: "", want: LevelExplorer},
		{name: "garbage defaults to explorer", input: "banana", want: LevelExplorer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseReadingLevel(tt.input); got != tt.want {
				t.Errorf("ParseReadingLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestWordsPerMinute(t *testing.T) {
	tests := []struct {
		name      string
		duration  int
		wordCount int
		want      float64
	}{
		{name: "one minute", duration: 60, wordCount: 120, want: 120},
		{name: "two minutes", duration: 120, wordCount: 120, want: 60},
		{name: "thirty seconds", duration: 30, wordCount: 60, want: 120},
		{name: "zero duration", duration: 0, wordCount: 500, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ChapterCompletion{DurationSeconds: tt.duration}
			if got := c.WordsPerMinute(tt.wordCount); got != tt.want {
				t.Errorf("WordsPerMinute(%d) = %v, want %v", tt.wordCount, got, tt.want)
			}
		})
	}
}
