package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/models"
	"github.com/edumoto/classwork-api/internal/repository"
)

// ReportInvalidator drops a teacher's cached analytics report after a write
// that changes its inputs.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, teacherID uint) error
}

// ReportService aggregates per-assignment submission statistics for a
// teacher, scoped to the assignments they own.
type ReportService interface {
	ReportInvalidator
	TeacherReport(ctx context.Context, actor Actor) (dto.TeacherReportResponse, error)
}

type reportService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReportService builds the analytics aggregator.
func NewReportService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "report_service").Logger(),
		now:         time.Now,
	}
}

func reportCacheKey(teacherID uint) string {
	return fmt.Sprintf("report:teacher:%d", teacherID)
}

func (s *reportService) TeacherReport(ctx context.Context, actor Actor) (dto.TeacherReportResponse, error) {
	tracer := otel.Tracer("github.com/edumoto/classwork-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "report.aggregate")
	span.SetAttributes(attribute.Int64("report.teacher_id", int64(actor.ID)))
	defer span.End()

	if !actor.IsTeacher() {
		err := errForbidden("only teachers can request assignment reports")
		span.SetStatus(codes.Error, "forbidden")
		return dto.TeacherReportResponse{}, err
	}

	cacheKey := reportCacheKey(actor.ID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.TeacherReportResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("report.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
			span.RecordError(err)
		}
	}

	assignments, err := s.assignments.ListByCreator(ctx, actor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_assignments_failed")
		return dto.TeacherReportResponse{}, err
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	submissions, err := s.submissions.ListByAssignmentIDs(ctx, assignmentIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return dto.TeacherReportResponse{}, err
	}

	report := s.buildReport(assignments, submissions)
	span.SetAttributes(
		attribute.Int("report.assignment_count", len(assignments)),
		attribute.Int("report.submission_count", len(submissions)),
	)

	if s.cache != nil {
		payload, err := json.Marshal(report)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
				span.RecordError(err)
			}
		}
	}

	return report, nil
}

func (s *reportService) Invalidate(ctx context.Context, teacherID uint) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, reportCacheKey(teacherID)).Err()
}

type assignmentTally struct {
	total      int64
	reviewed   int64
	gradeSum   float64
	gradeCount int64
}

func (s *reportService) buildReport(assignments []models.Assignment, submissions []models.Submission) dto.TeacherReportResponse {
	tallies := make(map[uint]*assignmentTally, len(assignments))
	for _, submission := range submissions {
		tally, ok := tallies[submission.AssignmentID]
		if !ok {
			tally = &assignmentTally{}
			tallies[submission.AssignmentID] = tally
		}
		tally.total++
		if submission.Reviewed {
			tally.reviewed++
		}
		if submission.Grade != nil {
			tally.gradeSum += *submission.Grade
			tally.gradeCount++
		}
	}

	overview := dto.ReportOverview{TotalAssignments: int64(len(assignments))}

	// Zero-submission assignments still get a row; their zero counters are a
	// defined default, not an error path.
	rows := make([]dto.AssignmentReportRow, 0, len(assignments))
	for _, assignment := range assignments {
		row := dto.AssignmentReportRow{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Status:       assignment.Status,
			DueDate:      assignment.DueDate,
		}

		if tally, ok := tallies[assignment.ID]; ok {
			row.TotalSubmissions = tally.total
			row.ReviewedSubmissions = tally.reviewed
			row.PendingReviews = tally.total - tally.reviewed
			if tally.gradeCount > 0 {
				average := roundToCents(tally.gradeSum / float64(tally.gradeCount))
				row.AverageGrade = &average
			}
		}

		overview.TotalSubmissions += row.TotalSubmissions
		overview.TotalReviewed += row.ReviewedSubmissions
		rows = append(rows, row)
	}

	overview.PendingReviews = overview.TotalSubmissions - overview.TotalReviewed

	return dto.TeacherReportResponse{
		Assignments: rows,
		Overview:    overview,
		GeneratedAt: s.now(),
		CacheHit:    false,
	}
}

func roundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}
