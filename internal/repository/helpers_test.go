package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/models"
)

var emailSeq atomic.Uint64

// openTestDB opens an isolated in-memory database with the same TranslateError
// setting as the production connection.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.ActivityLog{}))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()

	user := models.User{Name: "Test User", Email: fmt.Sprintf("%s+%d@example.com", role, emailSeq.Add(1)), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedAssignment(t *testing.T, db *gorm.DB, teacherID uint, status models.AssignmentStatus) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		Title:       "Reading Log",
		Description: "Summarize chapter three.",
		DueDate:     time.Now().Add(48 * time.Hour),
		Status:      status,
		CreatedBy:   teacherID,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}
