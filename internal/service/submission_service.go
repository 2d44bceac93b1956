package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/models"
	"github.com/edumoto/classwork-api/internal/repository"
)

// SubmissionService orchestrates submission and review workflows. Creation is
// a student action; review is a teacher action on the same record, so the
// two paths carry separate authorization checks.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.SubmissionReportResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
	Review(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionReviewRequest) (dto.SubmissionReportResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	reports     ReportInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, userRepo repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, reports ReportInvalidator, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		users:       userRepo,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		reports:     reports,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, errForbidden("only students can submit answers")
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, errValidation("%s", err.Error())
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, errNotFound("assignment not found")
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return dto.SubmissionResponse{}, errInvalidState("assignment is %s, submissions are only accepted while published", assignment.Status)
	}

	if assignment.IsPastDue(s.now()) {
		return dto.SubmissionResponse{}, errInvalidState("due date passed")
	}

	if _, err := s.users.GetByID(ctx, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, errNotFound("student not found")
		}
		return dto.SubmissionResponse{}, err
	}

	// Advisory pre-check only. The unique index is the authority; two
	// concurrent submits still resolve to one success and one conflict.
	exists, err := s.submissions.ExistsForAssignmentAndStudent(ctx, assignment.ID, actor.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		return dto.SubmissionResponse{}, errConflict("submission already exists for this assignment")
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Answer:       s.sanitizer.Sanitize(payload.Answer),
		SubmittedAt:  s.now(),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, errConflict("submission already exists for this assignment")
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.recordActivity(ctx, actor, "submission.created", created.ID, map[string]interface{}{
		"assignment_id": assignment.ID,
	})
	s.invalidateReport(ctx, assignment.CreatedBy)

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", actor.ID).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.SubmissionReportResponse, error) {
	if !actor.IsTeacher() {
		return nil, errForbidden("only teachers can list assignment submissions")
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("assignment not found")
		}
		return nil, err
	}

	if !assignment.OwnedBy(actor.ID) {
		return nil, errForbidden("assignment belongs to another teacher")
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionReportResponseSlice(submissions), nil
}

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return nil, errForbidden("only students can list their own submissions")
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &actor.ID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Review(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionReviewRequest) (dto.SubmissionReportResponse, error) {
	tracer := otel.Tracer("github.com/edumoto/classwork-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.review")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.teacher_id", int64(actor.ID)),
	)
	defer span.End()

	if !actor.IsTeacher() {
		err := errForbidden("only teachers can review submissions")
		span.SetStatus(codes.Error, "forbidden")
		return dto.SubmissionReportResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionReportResponse{}, errValidation("%s", err.Error())
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionReportResponse{}, errNotFound("submission not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionReportResponse{}, err
	}

	if !submission.Assignment.OwnedBy(actor.ID) {
		err := errForbidden("submission belongs to another teacher's assignment")
		span.SetStatus(codes.Error, "forbidden")
		return dto.SubmissionReportResponse{}, err
	}

	if payload.Grade != nil {
		submission.Grade = payload.Grade
	}

	if payload.Feedback != nil {
		submission.Feedback = s.sanitizer.Sanitize(*payload.Feedback)
	}

	// A review without grade or feedback still counts as processed.
	submission.Reviewed = true

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionReportResponse{}, err
	}

	metadata := map[string]interface{}{
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.StudentID,
	}
	if payload.Grade != nil {
		metadata["grade"] = *payload.Grade
	}
	s.recordActivity(ctx, actor, "submission.reviewed", submission.ID, metadata)
	s.invalidateReport(ctx, actor.ID)

	if payload.Grade != nil {
		span.SetAttributes(attribute.Float64("review.grade", *payload.Grade))
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("teacher_id", actor.ID).
		Msg("submission reviewed")

	return dto.NewSubmissionReportResponse(submission), nil
}

func (s *submissionService) recordActivity(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *submissionService) invalidateReport(ctx context.Context, teacherID uint) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx, teacherID); err != nil {
		s.logger.Warn().Err(err).Uint("teacher_id", teacherID).Msg("failed to invalidate report cache")
	}
}
