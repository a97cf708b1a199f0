package models

import (
	"fmt"
	"time"
)

type Ticket struct {
	ID            int       `json:"id"`
	CategoryID    int       `json:"category_id"`
	Sequence      int       `json:"sequence"`
	FormattedCode string    `json:"formatted_code"`
	Status        string    `json:"status"`
	Counter       int       `json:"counter,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	StatusWaiting  = "waiting"
	StatusCalling  = "calling"
	StatusFinished = "finished"
	StatusSkipped  = "skipped"
)

const sequencePad = 3

// FormatCode renders the human-readable ticket code, e.g. A-005.
func FormatCode(prefix string, sequence int) string {
	return fmt.Sprintf("%s-%0*d", prefix, sequencePad, sequence)
}

type QueueStats struct {
	Waiting  int `json:"waiting"`
	Calling  int `json:"calling"`
	Finished int `json:"finished"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}
