package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edubridge-kr/lms-api/internal/config"
	"github.com/edubridge-kr/lms-api/internal/handler"
	"github.com/edubridge-kr/lms-api/internal/identity"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
	"github.com/edubridge-kr/lms-api/internal/router"
	"github.com/edubridge-kr/lms-api/internal/service"
)

// envelope mirrors the wire shape of utils.APIResponse for decoding.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// stubStorage satisfies service.FileStorage without any remote calls.
type stubStorage struct{}

func (stubStorage) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://cdn.example.test/" + name, nil
}

// testAuth replaces the JWT middleware: the X-Test-User header is trusted as
// the authenticated account id. No header means no session.
func testAuth(c *fiber.Ctx) error {
	if user := c.Get("X-Test-User"); user != "" {
		c.Locals("user_id", user)
		c.SetUserContext(identity.WithPrincipal(c.UserContext(), user))
	}
	return c.Next()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Course{},
		&models.Assignment{},
		&models.Enrollment{},
		&models.Submission{},
		&models.Grade{},
		&models.Attachment{},
		&models.ActivityLog{},
	))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	profiles := repository.NewProfileRepository(db)
	courses := repository.NewCourseRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	grades := repository.NewGradeRepository(db)
	attachments := repository.NewAttachmentRepository(db)
	activityLogs := repository.NewActivityLogRepository(db)

	guards := service.NewGuardService(identity.ContextProvider{}, profiles, courses, enrollments, logger)
	events := service.NewNATSEventPublisher(nil, "lms", logger)
	activity := service.NewActivityService(activityLogs, logger)
	var viewCache *service.ViewCache

	courseSvc := service.NewCourseService(guards, courses, validate, viewCache, activity, logger)
	assignmentSvc := service.NewAssignmentService(guards, assignments, validate, viewCache, events, logger)
	submissionSvc := service.NewSubmissionService(guards, submissions, assignments, validate, viewCache, events, activity, logger)
	gradingSvc := service.NewGradingService(guards, grades, submissions, assignments, validate, viewCache, events, activity, logger)
	enrollmentSvc := service.NewEnrollmentService(guards, enrollments, courses, viewCache, events, logger)
	profileSvc := service.NewProfileService(guards, profiles, validate, logger)
	learnerDash := service.NewLearnerDashboardService(guards, enrollments, assignments, submissions, viewCache, logger)
	instructorDash := service.NewInstructorDashboardService(guards, courses, enrollments, assignments, submissions, logger)
	uploadSvc := service.NewUploadService(guards, stubStorage{}, attachments, 1, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "lms-api"}, router.Dependencies{
		CourseHandler:     handler.NewCourseHandler(courseSvc, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentSvc, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionSvc, gradingSvc, logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentSvc, logger),
		CatalogHandler:    handler.NewCatalogHandler(courseSvc, logger),
		ProfileHandler:    handler.NewProfileHandler(profileSvc, logger),
		DashboardHandler:  handler.NewDashboardHandler(learnerDash, instructorDash, logger),
		UploadHandler:     handler.NewUploadHandler(uploadSvc, logger),
		ActivityHandler:   handler.NewActivityHandler(activity, logger),
		JWTMiddleware:     testAuth,
	})

	return &testEnv{app: app, db: db}
}

func (e *testEnv) seedInstructor(t *testing.T, id, name string) {
	t.Helper()
	role := models.RoleInstructor
	require.NoError(t, e.db.Create(&models.Profile{
		ID: id, Email: id + "@example.com", Name: name, Role: &role, Onboarded: true,
	}).Error)
}

func (e *testEnv) seedLearner(t *testing.T, id, name string) {
	t.Helper()
	role := models.RoleLearner
	require.NoError(t, e.db.Create(&models.Profile{
		ID: id, Email: id + "@example.com", Name: name, Role: &role, Onboarded: true,
	}).Error)
}

func (e *testEnv) seedCourse(t *testing.T, course models.Course) {
	t.Helper()
	require.NoError(t, e.db.Create(&course).Error)
}

func (e *testEnv) seedAssignment(t *testing.T, assignment models.Assignment) {
	t.Helper()
	require.NoError(t, e.db.Create(&assignment).Error)
}

func (e *testEnv) seedEnrollment(t *testing.T, courseID, learnerID string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Enrollment{
		ID: uuid.NewString(), CourseID: courseID, LearnerID: learnerID,
	}).Error)
}

// doJSON performs a request with an optional JSON body and decodes the
// response envelope. user may be empty for unauthenticated requests.
func (e *testEnv) doJSON(t *testing.T, method, path, user string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result))
	}

	return resp.StatusCode, result
}

// doUpload performs a multipart upload of the given file content.
func (e *testEnv) doUpload(t *testing.T, user, fileName string, content []byte) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	return resp.StatusCode, result
}

func decodeData(t *testing.T, raw json.RawMessage, target interface{}) {
	t.Helper()
	require.NotEmpty(t, raw)
	require.NoError(t, json.Unmarshal(raw, target))
}

func rfc3339(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}
