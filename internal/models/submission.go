package models

import "time"

// Submission represents a student's answer to a published assignment.
// The composite unique index closes the race between the duplicate pre-check
// and the insert: the database, not the application, is the authority on the
// one-submission-per-student rule.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	Answer       string     `gorm:"type:text;not null" json:"answer"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	Reviewed     bool       `gorm:"not null;default:false" json:"reviewed"`
	Grade        *float64   `json:"grade"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
