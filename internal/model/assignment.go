package model

import "time"

// Assignment names the duty student for one calendar day.
type Assignment struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	StudentID int64     `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
