package dto

import (
	"time"

	"github.com/edumoto/classwork-api/internal/models"
)

// AssignmentReportRow aggregates submission statistics for one assignment.
// AverageGrade is nil when no submission carries a grade.
type AssignmentReportRow struct {
	AssignmentID        uint                    `json:"assignment_id"`
	Title               string                  `json:"title"`
	Status              models.AssignmentStatus `json:"status"`
	DueDate             time.Time               `json:"due_date"`
	TotalSubmissions    int64                   `json:"total_submissions"`
	ReviewedSubmissions int64                   `json:"reviewed_submissions"`
	PendingReviews      int64                   `json:"pending_reviews"`
	AverageGrade        *float64                `json:"average_grade"`
}

// ReportOverview holds teacher-wide totals across all owned assignments.
type ReportOverview struct {
	TotalAssignments int64 `json:"total_assignments"`
	TotalSubmissions int64 `json:"total_submissions"`
	TotalReviewed    int64 `json:"total_reviewed"`
	PendingReviews   int64 `json:"pending_reviews"`
}

// TeacherReportResponse is the full analytics report for one teacher.
type TeacherReportResponse struct {
	Assignments []AssignmentReportRow `json:"assignments"`
	Overview    ReportOverview        `json:"overview"`
	GeneratedAt time.Time             `json:"generated_at"`
	CacheHit    bool                  `json:"cache_hit"`
}
