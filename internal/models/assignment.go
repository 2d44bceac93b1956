package models

import "time"

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	// AssignmentStatusDraft marks an assignment that is still being authored.
	AssignmentStatusDraft AssignmentStatus = "draft"
	// AssignmentStatusPublished marks an assignment open for submissions.
	AssignmentStatusPublished AssignmentStatus = "published"
	// AssignmentStatusCompleted marks an assignment that is closed for good.
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// assignmentTransitions is the single source of truth for legal lifecycle
// moves: draft -> published -> completed, no skips, no way out of completed.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusDraft:     {AssignmentStatusPublished},
	AssignmentStatusPublished: {AssignmentStatusCompleted},
	AssignmentStatusCompleted: {},
}

// Valid reports whether the status is one of the known lifecycle states.
func (s AssignmentStatus) Valid() bool {
	_, ok := assignmentTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from the current status to next is
// allowed by the lifecycle table.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Assignment represents a piece of classwork authored by a teacher.
type Assignment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Description string           `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time        `gorm:"not null" json:"due_date"`
	Status      AssignmentStatus `gorm:"size:32;not null;default:draft" json:"status"`
	CreatedBy   uint             `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Submissions []Submission     `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// OwnedBy reports whether the assignment was created by the given teacher.
func (a Assignment) OwnedBy(teacherID uint) bool {
	return a.CreatedBy == teacherID
}
