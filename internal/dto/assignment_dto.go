package dto

import (
	"time"

	"github.com/edumoto/classwork-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentUpdateRequest describes the payload for updating a draft
// assignment. Omitted fields retain their prior values.
type AssignmentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentStatusRequest carries the target lifecycle state.
type AssignmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignmentListRequest collects query options for listing assignments.
// Status only applies to teacher callers and is ignored when invalid.
type AssignmentListRequest struct {
	Status string
	Page   int
	Limit  int
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint                    `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	DueDate     time.Time               `json:"due_date"`
	Status      models.AssignmentStatus `json:"status"`
	CreatedBy   uint                    `json:"created_by"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// AssignmentListResponse pairs a page of assignments with its metadata.
type AssignmentListResponse struct {
	Items      []AssignmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		Status:      model.Status,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
