package models

import "time"

// Chapter is one readable chapter of a book, tagged with the reading level
// its text is written for. The same book can carry parallel chapters for
// different levels.
type Chapter struct {
	ID            int64
	BookTitle     string
	ChapterNumber int
	Title         string
	ReadingLevel  ReadingLevel
	WordCount     int
	CreatedAt     time.Time
}

// ChapterCompletion records that a learner finished a chapter with a given
// score and reading duration. It is the single source of truth for reward
// eligibility, chapter unlocking and streaks.
type ChapterCompletion struct {
	ID              int64
	LearnerID       string
	ChapterID       int64
	DurationSeconds int
	Score           int // 0-100
	CompletedAt     time.Time
	ProfileID       int64
}

// WordsPerMinute computes the reading speed for this completion given the
// chapter's word count. Zero duration yields zero speed.
func (c ChapterCompletion) WordsPerMinute(wordCount int) float64 {
	if c.DurationSeconds <= 0 {
		return 0
	}
	return float64(wordCount) / (float64(c.DurationSeconds) / 60.0)
}
