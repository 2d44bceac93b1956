package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edumoto/classwork-api/internal/config"
	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/handler"
	"github.com/edumoto/classwork-api/internal/models"
	"github.com/edumoto/classwork-api/internal/repository"
	"github.com/edumoto/classwork-api/internal/router"
	"github.com/edumoto/classwork-api/internal/service"
	"github.com/edumoto/classwork-api/internal/utils"
)

// headerAuth stands in for the JWT middleware so tests can impersonate a
// caller per request.
func headerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "missing or invalid token")
		}
		c.Locals("user_id", uint(id))
		c.Locals("user_role", c.Get("X-Test-Role"))
		return c.Next()
	}
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.ActivityLog{}))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activitySvc := service.NewActivityService(activityRepo, logger)
	reportSvc := service.NewReportService(assignmentRepo, submissionRepo, nil, time.Minute, logger)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, validate, activitySvc, reportSvc, logger)
	submissionSvc := service.NewSubmissionService(submissionRepo, assignmentRepo, userRepo, validate, activitySvc, reportSvc, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "classwork-test", AppEnv: "test"}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentSvc, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionSvc, logger),
		ReportHandler:     handler.NewReportHandler(reportSvc, logger),
		ActivityHandler:   handler.NewActivityHandler(activitySvc, logger),
		JWTMiddleware:     headerAuth(),
	})

	return app, db
}

func seedAccount(t *testing.T, db *gorm.DB, name, email, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func doRequest(t *testing.T, app *fiber.App, user models.User, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
	req.Header.Set("X-Test-Role", user.Role)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success, envelope.Message)
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

func TestAssignmentWorkflowEndToEnd(t *testing.T) {
	app, db := newTestApp(t)
	teacher := seedAccount(t, db, "Ms. Reyes", "reyes@example.com", models.RoleTeacher)
	student := seedAccount(t, db, "Leo", "leo@example.com", models.RoleStudent)

	// Teacher drafts an assignment.
	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	resp := doRequest(t, app, teacher, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"title":       "Essay on Photosynthesis",
		"description": "500 words minimum.",
		"due_date":    due,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.AssignmentResponse
	decodeData(t, resp, &created)
	require.Equal(t, models.AssignmentStatusDraft, created.Status)

	assignmentPath := fmt.Sprintf("/api/v1/assignments/%d", created.ID)

	// Students cannot see drafts.
	resp = doRequest(t, app, student, http.MethodGet, assignmentPath, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Publish it.
	resp = doRequest(t, app, teacher, http.MethodPatch, assignmentPath+"/status", fiber.Map{"status": "published"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Now the student can see it and submit.
	resp = doRequest(t, app, student, http.MethodGet, assignmentPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, student, http.MethodPost, "/api/v1/submissions", fiber.Map{
		"assignment_id": created.ID,
		"answer":        "Plants convert light into chemical energy.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var submitted dto.SubmissionResponse
	decodeData(t, resp, &submitted)
	require.False(t, submitted.Reviewed)

	// A second attempt collides with the stored one.
	resp = doRequest(t, app, student, http.MethodPost, "/api/v1/submissions", fiber.Map{
		"assignment_id": created.ID,
		"answer":        "Another try.",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Teacher grades it.
	resp = doRequest(t, app, teacher, http.MethodPatch, fmt.Sprintf("/api/v1/submissions/%d/review", submitted.ID), fiber.Map{
		"grade":    85,
		"feedback": "Well structured.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reviewed dto.SubmissionReportResponse
	decodeData(t, resp, &reviewed)
	require.True(t, reviewed.Reviewed)
	require.NotNil(t, reviewed.Grade)
	require.Equal(t, 85.0, *reviewed.Grade)
	require.Equal(t, student.Name, reviewed.StudentName)

	// The report reflects the full cycle.
	resp = doRequest(t, app, teacher, http.MethodGet, "/api/v1/reports/assignments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report dto.TeacherReportResponse
	decodeData(t, resp, &report)
	require.Len(t, report.Assignments, 1)
	require.Equal(t, int64(1), report.Assignments[0].TotalSubmissions)
	require.Equal(t, int64(1), report.Assignments[0].ReviewedSubmissions)
	require.Equal(t, int64(0), report.Assignments[0].PendingReviews)
	require.NotNil(t, report.Assignments[0].AverageGrade)
	require.Equal(t, 85.0, *report.Assignments[0].AverageGrade)
}

func TestRoleGuards(t *testing.T) {
	app, db := newTestApp(t)
	teacher := seedAccount(t, db, "Ms. Reyes", "reyes@example.com", models.RoleTeacher)
	student := seedAccount(t, db, "Leo", "leo@example.com", models.RoleStudent)

	// Students cannot create assignments.
	resp := doRequest(t, app, student, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"title":       "Forged",
		"description": "Should not exist.",
		"due_date":    time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Teachers cannot submit answers.
	resp = doRequest(t, app, teacher, http.MethodPost, "/api/v1/submissions", fiber.Map{
		"assignment_id": 1,
		"answer":        "not a student",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Students cannot read the analytics report.
	resp = doRequest(t, app, student, http.MethodGet, "/api/v1/reports/assignments", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Unauthenticated requests are rejected before any handler runs.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments", nil)
	unauthResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, unauthResp.StatusCode)
	unauthResp.Body.Close()
}

func TestStudentListSeesOnlyPublished(t *testing.T) {
	app, db := newTestApp(t)
	teacher := seedAccount(t, db, "Ms. Reyes", "reyes@example.com", models.RoleTeacher)
	student := seedAccount(t, db, "Leo", "leo@example.com", models.RoleStudent)

	due := time.Now().Add(72 * time.Hour)
	require.NoError(t, db.Create(&models.Assignment{Title: "Draft", Description: "d", DueDate: due, Status: models.AssignmentStatusDraft, CreatedBy: teacher.ID}).Error)
	require.NoError(t, db.Create(&models.Assignment{Title: "Published", Description: "p", DueDate: due, Status: models.AssignmentStatusPublished, CreatedBy: teacher.ID}).Error)

	// The status filter is fixed for students even if they ask for drafts.
	resp := doRequest(t, app, student, http.MethodGet, "/api/v1/assignments?status=draft", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.AssignmentListResponse
	decodeData(t, resp, &list)
	require.Len(t, list.Items, 1)
	require.Equal(t, "Published", list.Items[0].Title)
}

func TestActivityTrailEndpoint(t *testing.T) {
	app, db := newTestApp(t)
	teacher := seedAccount(t, db, "Ms. Reyes", "reyes@example.com", models.RoleTeacher)

	resp := doRequest(t, app, teacher, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"title":       "History Quiz",
		"description": "Chapters 4 and 5.",
		"due_date":    time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, teacher, http.MethodGet, "/api/v1/activity", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.ActivityListResponse
	decodeData(t, resp, &list)
	require.Len(t, list.Items, 1)
	require.Equal(t, "assignment.created", list.Items[0].Action)
	require.Equal(t, teacher.ID, list.Items[0].ActorID)
}

func TestHealthEndpointIsOpen(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
