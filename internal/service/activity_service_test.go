package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/models"
	"github.com/edumoto/classwork-api/internal/repository"
)

func TestActivityServiceRecordNormalizes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())
	teacher := createTestUser(t, db, "Ms. Reyes", models.RoleTeacher)

	entityID := uint(12)
	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    teacher.ID,
		ActorRole:  " Teacher ",
		Action:     "Assignment.Published",
		EntityType: "Assignment",
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"title": "Algebra Worksheet"},
	})
	require.NoError(t, err)
	require.Equal(t, "assignment.published", entry.Action)
	require.Equal(t, "assignment", entry.EntityType)
	require.Equal(t, "teacher", entry.ActorRole)
	require.Equal(t, "Algebra Worksheet", entry.Metadata["title"])
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{ActorID: 1, EntityType: "assignment"})
	require.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Record(context.Background(), ActivityEntry{ActorID: 1, Action: "assignment.created"})
	require.Equal(t, KindValidation, KindOf(err))
}

func TestActivityServiceListScopedToActor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())
	teacher := createTestUser(t, db, "Ms. Reyes", models.RoleTeacher)
	student := createTestUser(t, db, "Leo", models.RoleStudent)

	_, err := svc.Record(context.Background(), ActivityEntry{ActorID: teacher.ID, ActorRole: models.RoleTeacher, Action: "assignment.created", EntityType: "assignment"})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), ActivityEntry{ActorID: teacher.ID, ActorRole: models.RoleTeacher, Action: "assignment.published", EntityType: "assignment"})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), ActivityEntry{ActorID: student.ID, ActorRole: models.RoleStudent, Action: "submission.created", EntityType: "submission"})
	require.NoError(t, err)

	teacherList, err := svc.ListForActor(context.Background(), teacherActor(teacher), dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, teacherList.Items, 2)
	for _, item := range teacherList.Items {
		require.Equal(t, teacher.ID, item.ActorID)
	}

	studentList, err := svc.ListForActor(context.Background(), studentActor(student), dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, studentList.Items, 1)
	require.Equal(t, "submission.created", studentList.Items[0].Action)
}

func TestActivityServiceListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())
	teacher := createTestUser(t, db, "Ms. Reyes", models.RoleTeacher)

	_, err := svc.Record(context.Background(), ActivityEntry{ActorID: teacher.ID, ActorRole: models.RoleTeacher, Action: "assignment.created", EntityType: "assignment"})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), ActivityEntry{ActorID: teacher.ID, ActorRole: models.RoleTeacher, Action: "submission.reviewed", EntityType: "submission"})
	require.NoError(t, err)

	list, err := svc.ListForActor(context.Background(), teacherActor(teacher), dto.ActivityListRequest{Action: "assignment.created"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "assignment.created", list.Items[0].Action)

	list, err = svc.ListForActor(context.Background(), teacherActor(teacher), dto.ActivityListRequest{EntityType: "submission"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "submission.reviewed", list.Items[0].Action)
}
