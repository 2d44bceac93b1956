package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Reviewed     *bool
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByAssignmentIDs(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ExistsForAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Reviewed != nil {
		query = query.Where("reviewed = ?", *filter.Reviewed)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignmentIDs(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ExistsForAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Create inserts the submission. The unique index on (assignment_id,
// student_id) is the authority on duplicates: with TranslateError enabled a
// constraint violation surfaces as gorm.ErrDuplicatedKey.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
