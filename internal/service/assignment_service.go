package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/models"
	"github.com/edumoto/classwork-api/internal/repository"
)

const defaultPageSize = 10

// AssignmentService exposes assignment lifecycle use cases.
type AssignmentService interface {
	List(ctx context.Context, actor Actor, req dto.AssignmentListRequest) (dto.AssignmentListResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	SetStatus(ctx context.Context, actor Actor, id uint, payload dto.AssignmentStatusRequest) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	activity  ActivityRecorder
	reports   ReportInvalidator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, activity ActivityRecorder, reports ReportInvalidator, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		reports:   reports,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, actor Actor, req dto.AssignmentListRequest) (dto.AssignmentListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	filter := repository.AssignmentFilter{Page: page, PageSize: limit}

	// The role-dependent clause is applied first and cannot be overridden by
	// caller-supplied filters.
	switch {
	case actor.IsStudent():
		published := models.AssignmentStatusPublished
		filter.Status = &published
	case actor.IsTeacher():
		filter.CreatedBy = &actor.ID
		if req.Status != "" {
			status := models.AssignmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
			if status.Valid() {
				filter.Status = &status
			}
		}
	default:
		return dto.AssignmentListResponse{}, errForbidden("unrecognized role %q", actor.Role)
	}

	assignments, total, err := s.repo.ListWithFilter(ctx, filter)
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	return dto.AssignmentListResponse{
		Items:      dto.NewAssignmentResponseSlice(assignments),
		Pagination: dto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, errNotFound("assignment not found")
		}
		return dto.AssignmentResponse{}, err
	}

	switch {
	case actor.IsStudent():
		if assignment.Status != models.AssignmentStatusPublished {
			return dto.AssignmentResponse{}, errForbidden("assignment is not published")
		}
	case actor.IsTeacher():
		if !assignment.OwnedBy(actor.ID) {
			return dto.AssignmentResponse{}, errForbidden("assignment belongs to another teacher")
		}
	default:
		return dto.AssignmentResponse{}, errForbidden("unrecognized role %q", actor.Role)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, errForbidden("only teachers can create assignments")
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, errValidation("%s", err.Error())
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, errValidation("invalid due date: %s", err.Error())
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     dueDate,
		Status:      models.AssignmentStatusDraft,
		CreatedBy:   actor.ID,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assignment.created", assignment.ID, map[string]interface{}{
		"title": assignment.Title,
	})

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("teacher_id", actor.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, errValidation("%s", err.Error())
	}

	assignment, err := s.loadOwnedDraft(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}

	if payload.Description != nil {
		assignment.Description = *payload.Description
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, errValidation("invalid due date: %s", err.Error())
		}
		assignment.DueDate = dueDate
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.loadOwnedDraft(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, assignment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound("assignment not found")
		}
		return err
	}

	s.recordActivity(ctx, actor, "assignment.deleted", assignment.ID, map[string]interface{}{
		"title": assignment.Title,
	})

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) SetStatus(ctx context.Context, actor Actor, id uint, payload dto.AssignmentStatusRequest) (dto.AssignmentResponse, error) {
	target := models.AssignmentStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
	if !target.Valid() {
		return dto.AssignmentResponse{}, errValidation("unknown status %q", payload.Status)
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, errNotFound("assignment not found")
		}
		return dto.AssignmentResponse{}, err
	}

	if !actor.IsTeacher() || !assignment.OwnedBy(actor.ID) {
		return dto.AssignmentResponse{}, errForbidden("assignment belongs to another teacher")
	}

	if !assignment.Status.CanTransitionTo(target) {
		return dto.AssignmentResponse{}, errInvalidState("cannot transition assignment from %s to %s", assignment.Status, target)
	}

	assignment.Status = target
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assignment."+string(target), assignment.ID, map[string]interface{}{
		"title": assignment.Title,
	})
	s.invalidateReport(ctx, actor.ID)

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Str("status", string(target)).
		Msg("assignment status changed")

	return dto.NewAssignmentResponse(assignment), nil
}

// loadOwnedDraft fetches the assignment and applies the shared mutation gate:
// the caller must own it and it must still be a draft.
func (s *assignmentService) loadOwnedDraft(ctx context.Context, actor Actor, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, errNotFound("assignment not found")
		}
		return models.Assignment{}, err
	}

	if !actor.IsTeacher() || !assignment.OwnedBy(actor.ID) {
		return models.Assignment{}, errForbidden("assignment belongs to another teacher")
	}

	if assignment.Status != models.AssignmentStatusDraft {
		return models.Assignment{}, errInvalidState("assignment is %s, only drafts can be modified", assignment.Status)
	}

	return assignment, nil
}

func (s *assignmentService) recordActivity(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *assignmentService) invalidateReport(ctx context.Context, teacherID uint) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx, teacherID); err != nil {
		s.logger.Warn().Err(err).Uint("teacher_id", teacherID).Msg("failed to invalidate report cache")
	}
}
