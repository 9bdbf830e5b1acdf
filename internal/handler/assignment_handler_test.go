package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
)

func seedOwnedCourse(t *testing.T, env *testEnv) {
	env.seedInstructor(t, "inst-1", "Minji")
	env.seedCourse(t, models.Course{
		ID: "c1", InstructorID: "inst-1", Title: "Go 입문",
		Description: strings.Repeat("a", 20), Status: models.CourseStatusPublished,
	})
}

func TestAssignmentLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	seedOwnedCourse(t, env)

	due := time.Now().Add(72 * time.Hour)

	status, created := env.doJSON(t, http.MethodPost, "/api/v1/courses/c1/assignments", "inst-1", map[string]interface{}{
		"title":       "1주차 과제",
		"description": strings.Repeat("b", 20),
		"due_date":    rfc3339(due),
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, created.Success)

	var draft dto.AssignmentResponse
	decodeData(t, created.Data, &draft)
	require.Equal(t, models.AssignmentStatusDraft, draft.Status)

	status, published := env.doJSON(t, http.MethodPost, "/api/v1/courses/c1/assignments/"+draft.ID+"/publish", "inst-1", nil)
	require.Equal(t, http.StatusOK, status)

	var assignment dto.AssignmentResponse
	decodeData(t, published.Data, &assignment)
	require.Equal(t, models.AssignmentStatusPublished, assignment.Status)

	status, closed := env.doJSON(t, http.MethodPost, "/api/v1/courses/c1/assignments/"+draft.ID+"/close", "inst-1", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, closed.Data, &assignment)
	require.Equal(t, models.AssignmentStatusClosed, assignment.Status)
}

func TestAssignmentCreateRejectsBadLateWindow(t *testing.T) {
	env := newTestEnv(t)
	seedOwnedCourse(t, env)

	due := time.Now().Add(72 * time.Hour)

	status, resp := env.doJSON(t, http.MethodPost, "/api/v1/courses/c1/assignments", "inst-1", map[string]interface{}{
		"title":                    "과제",
		"due_date":                 rfc3339(due),
		"allow_late_submission":    true,
		"late_submission_deadline": rfc3339(due.Add(-time.Hour)),
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, resp.Success)
	require.Contains(t, resp.Details, "lateSubmissionDeadline")
}

func TestAssignmentRoutesRequireAuthentication(t *testing.T) {
	env := newTestEnv(t)
	seedOwnedCourse(t, env)

	status, _ := env.doJSON(t, http.MethodGet, "/api/v1/courses/c1/assignments", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAssignmentRoutesRejectForeignInstructor(t *testing.T) {
	env := newTestEnv(t)
	seedOwnedCourse(t, env)
	env.seedInstructor(t, "inst-2", "Other")

	status, _ := env.doJSON(t, http.MethodPost, "/api/v1/courses/c1/assignments", "inst-2", map[string]interface{}{
		"title":    "남의 코스 과제",
		"due_date": rfc3339(time.Now().Add(time.Hour)),
	})
	require.Equal(t, http.StatusForbidden, status)
}

func TestAssignmentGetUnknownCourseIs404(t *testing.T) {
	env := newTestEnv(t)
	env.seedInstructor(t, "inst-1", "Minji")

	status, _ := env.doJSON(t, http.MethodGet, "/api/v1/courses/nope/assignments", "inst-1", nil)
	require.Equal(t, http.StatusNotFound, status)
}
