package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/identity"
	"github.com/edubridge-kr/lms-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func testClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// ctxFor builds a request context carrying the given principal, mirroring
// what the session middleware does in production.
func ctxFor(principalID string) context.Context {
	return identity.WithPrincipal(context.Background(), principalID)
}

func instructorProfile(id, name string) models.Profile {
	role := models.RoleInstructor
	return models.Profile{ID: id, Email: id + "@example.com", Name: name, Role: &role, Onboarded: true}
}

func learnerProfile(id, name string) models.Profile {
	role := models.RoleLearner
	return models.Profile{ID: id, Email: id + "@example.com", Name: name, Role: &role, Onboarded: true}
}

type memoryProfileRepo struct {
	profiles map[string]models.Profile
}

func newMemoryProfileRepo(profiles ...models.Profile) *memoryProfileRepo {
	repo := &memoryProfileRepo{profiles: make(map[string]models.Profile)}
	for _, profile := range profiles {
		repo.profiles[profile.ID] = profile
	}
	return repo
}

func (m *memoryProfileRepo) GetByID(_ context.Context, id string) (models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (m *memoryProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *memoryProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	if _, ok := m.profiles[profile.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.profiles[profile.ID] = *profile
	return nil
}

type memoryCourseRepo struct {
	courses map[string]models.Course
}

func newMemoryCourseRepo(courses ...models.Course) *memoryCourseRepo {
	repo := &memoryCourseRepo{courses: make(map[string]models.Course)}
	for _, course := range courses {
		repo.courses[course.ID] = course
	}
	return repo
}

func (m *memoryCourseRepo) GetByID(_ context.Context, id string) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) GetPublished(_ context.Context, id string) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok || course.Status != models.CourseStatusPublished {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) ListByInstructor(_ context.Context, instructorID string) ([]models.Course, error) {
	results := make([]models.Course, 0)
	for _, course := range m.courses {
		if course.InstructorID == instructorID {
			results = append(results, course)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryCourseRepo) ListPublished(_ context.Context) ([]models.Course, error) {
	results := make([]models.Course, 0)
	for _, course := range m.courses {
		if course.Status == models.CourseStatusPublished {
			results = append(results, course)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryCourseRepo) Create(_ context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) Update(_ context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) UpdateStatus(_ context.Context, id, status string) error {
	course, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	course.Status = status
	m.courses[id] = course
	return nil
}

type memoryAssignmentRepo struct {
	assignments map[string]models.Assignment
}

func newMemoryAssignmentRepo(assignments ...models.Assignment) *memoryAssignmentRepo {
	repo := &memoryAssignmentRepo{assignments: make(map[string]models.Assignment)}
	for _, assignment := range assignments {
		repo.assignments[assignment.ID] = assignment
	}
	return repo
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id string) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) GetByCourseAndID(_ context.Context, courseID, id string) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok || assignment.CourseID != courseID {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) ListByCourse(_ context.Context, courseID string) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DueDate.Before(results[j].DueDate) })
	return results, nil
}

func (m *memoryAssignmentRepo) ListByCourseAndStatus(_ context.Context, courseID, status string) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID && assignment.Status == status {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DueDate.Before(results[j].DueDate) })
	return results, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) UpdateStatus(_ context.Context, id, status string) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.Status = status
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) CountByCourseAndStatus(_ context.Context, courseID, status string) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID && assignment.Status == status {
			count++
		}
	}
	return count, nil
}

type memoryEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
}

func newMemoryEnrollmentRepo(enrollments ...models.Enrollment) *memoryEnrollmentRepo {
	repo := &memoryEnrollmentRepo{enrollments: make(map[string]models.Enrollment)}
	for _, enrollment := range enrollments {
		repo.enrollments[enrollment.CourseID+"/"+enrollment.LearnerID] = enrollment
	}
	return repo
}

func (m *memoryEnrollmentRepo) GetByCourseAndLearner(_ context.Context, courseID, learnerID string) (models.Enrollment, error) {
	enrollment, ok := m.enrollments[courseID+"/"+learnerID]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (m *memoryEnrollmentRepo) ListByLearner(_ context.Context, learnerID string) ([]models.Enrollment, error) {
	results := make([]models.Enrollment, 0)
	for _, enrollment := range m.enrollments {
		if enrollment.LearnerID == learnerID {
			results = append(results, enrollment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CourseID < results[j].CourseID })
	return results, nil
}

func (m *memoryEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	key := enrollment.CourseID + "/" + enrollment.LearnerID
	if _, exists := m.enrollments[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	m.enrollments[key] = *enrollment
	return nil
}

func (m *memoryEnrollmentRepo) Delete(_ context.Context, courseID, learnerID string) error {
	key := courseID + "/" + learnerID
	if _, ok := m.enrollments[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.enrollments, key)
	return nil
}

func (m *memoryEnrollmentRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	var count int64
	for _, enrollment := range m.enrollments {
		if enrollment.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

type memorySubmissionRepo struct {
	submissions     map[string]models.Submission
	statusUpdateErr error
}

func newMemorySubmissionRepo(submissions ...models.Submission) *memorySubmissionRepo {
	repo := &memorySubmissionRepo{submissions: make(map[string]models.Submission)}
	for _, submission := range submissions {
		repo.submissions[submission.ID] = submission
	}
	return repo
}

func (m *memorySubmissionRepo) GetByAssignmentAndID(_ context.Context, assignmentID, id string) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok || submission.AssignmentID != assignmentID {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) GetByAssignmentAndLearner(_ context.Context, assignmentID, learnerID string) (models.Submission, error) {
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID && submission.LearnerID == learnerID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) ListByAssignment(_ context.Context, assignmentID string) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].SubmittedAt.Before(results[j].SubmittedAt) })
	return results, nil
}

func (m *memorySubmissionRepo) ListByLearner(_ context.Context, learnerID string) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if submission.LearnerID == learnerID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].SubmittedAt.After(results[j].SubmittedAt) })
	return results, nil
}

func (m *memorySubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	for _, existing := range m.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.LearnerID == submission.LearnerID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) UpdateStatus(_ context.Context, id, status string) error {
	if m.statusUpdateErr != nil {
		return m.statusUpdateErr
	}
	submission, ok := m.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	submission.Status = status
	m.submissions[id] = submission
	return nil
}

func (m *memorySubmissionRepo) CountUngradedByCourse(_ context.Context, _ string) (int64, error) {
	var count int64
	for _, submission := range m.submissions {
		if submission.Status == models.SubmissionStatusSubmitted {
			count++
		}
	}
	return count, nil
}

type memoryGradeRepo struct {
	grades map[string]models.Grade
	// createErr forces the next Create to fail, simulating a lost race
	// against a concurrent insert.
	createErr error
	// missFirstGet makes the first GetBySubmission miss even when the row
	// exists, so the upsert takes the insert path.
	missFirstGet bool
}

func newMemoryGradeRepo(grades ...models.Grade) *memoryGradeRepo {
	repo := &memoryGradeRepo{grades: make(map[string]models.Grade)}
	for _, grade := range grades {
		repo.grades[grade.SubmissionID] = grade
	}
	return repo
}

func (m *memoryGradeRepo) GetBySubmission(_ context.Context, submissionID string) (models.Grade, error) {
	if m.missFirstGet {
		m.missFirstGet = false
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	grade, ok := m.grades[submissionID]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (m *memoryGradeRepo) Create(_ context.Context, grade *models.Grade) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.grades[grade.SubmissionID]; exists {
		return gorm.ErrDuplicatedKey
	}
	m.grades[grade.SubmissionID] = *grade
	return nil
}

func (m *memoryGradeRepo) Update(_ context.Context, grade *models.Grade) error {
	if _, ok := m.grades[grade.SubmissionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.grades[grade.SubmissionID] = *grade
	return nil
}

type recordedEvent struct {
	eventType string
	payload   map[string]interface{}
}

type memoryEventPublisher struct {
	events []recordedEvent
}

func (m *memoryEventPublisher) Publish(_ context.Context, eventType string, payload map[string]interface{}) {
	m.events = append(m.events, recordedEvent{eventType: eventType, payload: payload})
}

func newTestGuards(profiles *memoryProfileRepo, courses *memoryCourseRepo, enrollments *memoryEnrollmentRepo) *GuardService {
	return NewGuardService(identity.ContextProvider{}, profiles, courses, enrollments, testLogger())
}
