package models

import "time"

// Question outcomes recorded in the practice log
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
)

// QuestionReport is one answered practice question. Append-only: the daily
// and lifetime limiters count these rows directly rather than trusting any
// cached counter.
type QuestionReport struct {
	ID         int64
	QuestionID string
	Outcome    string
	Date       string // device-local calendar date, YYYY-MM-DD
	ProfileID  int64
	CreatedAt  time.Time
}
