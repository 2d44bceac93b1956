package service

import (
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/models"
)

var testEmailSeq atomic.Uint64

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// setupTestDB opens an isolated in-memory database per test. TranslateError
// matches the production connection so unique violations surface as
// gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.ActivityLog{}))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: fmt.Sprintf("%s+%d@example.com", role, testEmailSeq.Add(1)), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestAssignment(t *testing.T, db *gorm.DB, teacherID uint, status models.AssignmentStatus, dueDate time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		Title:       "Algebra Worksheet",
		Description: "Solve all the exercises on page 12.",
		DueDate:     dueDate,
		Status:      status,
		CreatedBy:   teacherID,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}
