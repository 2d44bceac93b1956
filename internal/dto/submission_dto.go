package dto

import (
	"time"

	"github.com/edumoto/classwork-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting an answer.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Answer       string `json:"answer" validate:"required"`
}

// SubmissionReviewRequest carries an optional grade and feedback. A review
// without either still marks the submission as reviewed.
type SubmissionReviewRequest struct {
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Feedback *string  `json:"feedback"`
}

// AssignmentSummary is the assignment context embedded in a student's view of
// their own submissions.
type AssignmentSummary struct {
	ID          uint                    `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	DueDate     time.Time               `json:"due_date"`
	Status      models.AssignmentStatus `json:"status"`
}

// SubmissionResponse is the student-facing representation of a submission.
type SubmissionResponse struct {
	ID           uint              `json:"id"`
	AssignmentID uint              `json:"assignment_id"`
	Answer       string            `json:"answer"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	Reviewed     bool              `json:"reviewed"`
	Grade        *float64          `json:"grade"`
	Feedback     string            `json:"feedback"`
	Assignment   AssignmentSummary `json:"assignment"`
}

// SubmissionReportResponse is the flat teacher-facing projection joining the
// submission with its student and assignment.
type SubmissionReportResponse struct {
	ID              uint      `json:"id"`
	AssignmentID    uint      `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	StudentID       uint      `json:"student_id"`
	StudentName     string    `json:"student_name"`
	StudentEmail    string    `json:"student_email"`
	Answer          string    `json:"answer"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Reviewed        bool      `json:"reviewed"`
	Grade           *float64  `json:"grade"`
	Feedback        string    `json:"feedback"`
}

// NewSubmissionResponse converts a model (with its assignment preloaded) into
// the student-facing DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		Answer:       model.Answer,
		SubmittedAt:  model.SubmittedAt,
		Reviewed:     model.Reviewed,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		Assignment: AssignmentSummary{
			ID:          model.Assignment.ID,
			Title:       model.Assignment.Title,
			Description: model.Assignment.Description,
			DueDate:     model.Assignment.DueDate,
			Status:      model.Assignment.Status,
		},
	}
}

// NewSubmissionResponseSlice converts a slice of models into student DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// NewSubmissionReportResponse converts a model (with student and assignment
// preloaded) into the flat teacher projection.
func NewSubmissionReportResponse(model models.Submission) SubmissionReportResponse {
	return SubmissionReportResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		AssignmentTitle: model.Assignment.Title,
		StudentID:       model.StudentID,
		StudentName:     model.Student.Name,
		StudentEmail:    model.Student.Email,
		Answer:          model.Answer,
		SubmittedAt:     model.SubmittedAt,
		Reviewed:        model.Reviewed,
		Grade:           model.Grade,
		Feedback:        model.Feedback,
	}
}

// NewSubmissionReportResponseSlice converts a slice of models into flat rows.
func NewSubmissionReportResponseSlice(submissions []models.Submission) []SubmissionReportResponse {
	responses := make([]SubmissionReportResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionReportResponse(submission))
	}

	return responses
}
