package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/models"
)

// UserRepository exposes read access to accounts. Account management lives in
// the identity service; this API only resolves references.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}
