package model

import "time"

type CompletionStatus string

const (
	StatusUnstaged  CompletionStatus = "unstaged"
	StatusStaged    CompletionStatus = "staged"
	StatusSubmitted CompletionStatus = "submitted"
)

// MaxAttachments is the number of image slots on a completion record.
const MaxAttachments = 2

// AttachmentFlags records which image slots hold an upload. Slots are
// numbered from 1.
type AttachmentFlags [MaxAttachments]bool

func ValidSlot(slot int) bool {
	return slot >= 1 && slot <= MaxAttachments
}

func (f AttachmentFlags) Has(slot int) bool {
	return ValidSlot(slot) && f[slot-1]
}

// CompletionRecord holds the chore outcomes reported for one day.
type CompletionRecord struct {
	ID                   int64           `json:"id"`
	Date                 time.Time       `json:"date"`
	StudentID            int64           `json:"student_id"`
	CompletedChoreIDs    []int64         `json:"completed_chore_ids"`
	NonCompletedChoreIDs []int64         `json:"non_completed_chore_ids"`
	Attachments          AttachmentFlags `json:"attachments"`
	Comment              string          `json:"comment"`
	Submitted            bool            `json:"submitted"`
	SubmittedAt          *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Status returns the lifecycle state of the record. A nil record is
// unstaged.
func (c *CompletionRecord) Status() CompletionStatus {
	switch {
	case c == nil:
		return StatusUnstaged
	case c.Submitted:
		return StatusSubmitted
	default:
		return StatusStaged
	}
}
