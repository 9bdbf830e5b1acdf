package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
)

func scoreOf(value float64) *float64 {
	return &value
}

type gradingFixture struct {
	svc         GradingService
	grades      *memoryGradeRepo
	submissions *memorySubmissionRepo
	events      *memoryEventPublisher
}

// newGradingFixture wires instructor inst-1 owning course c1 with assignment
// a1 and one submitted hand-in s1 from learner-1.
func newGradingFixture(at time.Time) gradingFixture {
	profiles := newMemoryProfileRepo(instructorProfile("inst-1", "Minji"))
	courses := newMemoryCourseRepo(models.Course{ID: "c1", InstructorID: "inst-1", Status: models.CourseStatusPublished})
	guards := newTestGuards(profiles, courses, newMemoryEnrollmentRepo())

	assignments := newMemoryAssignmentRepo(models.Assignment{
		ID: "a1", CourseID: "c1", Title: "1주차 과제",
		DueDate: at.Add(-time.Hour), Status: models.AssignmentStatusPublished,
	})
	submissions := newMemorySubmissionRepo(models.Submission{
		ID: "s1", AssignmentID: "a1", LearnerID: "learner-1",
		Content: "답안", SubmittedAt: at.Add(-30 * time.Minute),
		Status: models.SubmissionStatusSubmitted,
	})
	grades := newMemoryGradeRepo()
	events := &memoryEventPublisher{}
	svc := newGradingService(guards, grades, submissions, assignments, testValidator(), nil, events, nil, testLogger(), testClock(at))

	return gradingFixture{svc: svc, grades: grades, submissions: submissions, events: events}
}

func TestGradeFirstTimeInsertsAndMarksGraded(t *testing.T) {
	at := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	fixture := newGradingFixture(at)

	graded, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{
		Score: scoreOf(88), Feedback: "잘했습니다",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.NotNil(t, graded.Grade)
	require.Equal(t, 88.0, graded.Grade.Score)
	require.Equal(t, "inst-1", graded.Grade.GradedBy)
	require.Equal(t, "Minji", graded.Grade.GradedByName)
	require.Equal(t, at, graded.Grade.GradedAt)

	stored := fixture.submissions.submissions["s1"]
	require.Equal(t, models.SubmissionStatusGraded, stored.Status)
}

func TestGradeRevisionRestampsGraderKeepsCapturedName(t *testing.T) {
	at := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	fixture := newGradingFixture(at)

	first, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{Score: scoreOf(60)})
	require.NoError(t, err)

	// Rewrite the stored attribution between passes. The revision must stamp
	// the acting grader's id again but keep the display name captured at
	// first grading, not pick up a new one.
	stored := fixture.grades.grades["s1"]
	stored.GradedBy = "inst-departed"
	stored.GradedByName = "Minji (before rename)"
	fixture.grades.grades["s1"] = stored

	second, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{Score: scoreOf(95), Feedback: "재채점"})
	require.NoError(t, err)
	require.Equal(t, first.Grade.ID, second.Grade.ID)
	require.Equal(t, 95.0, second.Grade.Score)
	require.Equal(t, "inst-1", second.Grade.GradedBy)
	require.Equal(t, "Minji (before rename)", second.Grade.GradedByName)
}

func TestGradeResubmitRequestSetsStatus(t *testing.T) {
	fixture := newGradingFixture(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	graded, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{
		Score: scoreOf(40), Feedback: "다시 제출해 주세요", RequestResubmit: true,
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusResubmitRequested, graded.Status)
	require.Equal(t, models.SubmissionStatusResubmitRequested, fixture.submissions.submissions["s1"].Status)
}

func TestGradeSurvivesFailedStatusSync(t *testing.T) {
	fixture := newGradingFixture(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))
	fixture.submissions.statusUpdateErr = gorm.ErrInvalidTransaction

	graded, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{Score: scoreOf(77)})
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	require.Equal(t, 77.0, graded.Grade.Score)
	// The sync failed, so the reported status is the pre-grading one.
	require.Equal(t, models.SubmissionStatusSubmitted, graded.Status)
	require.Contains(t, fixture.grades.grades, "s1")
}

func TestGradeRacingInsertFallsBackToUpdate(t *testing.T) {
	at := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	fixture := newGradingFixture(at)

	// Simulate a concurrent grader winning the insert between our lookup
	// and our create: the lookup misses, the create reports a duplicate,
	// and the row it lost to is in place for the re-fetch.
	fixture.grades.missFirstGet = true
	fixture.grades.createErr = gorm.ErrDuplicatedKey
	fixture.grades.grades["s1"] = models.Grade{
		ID: "g-race", SubmissionID: "s1", Score: 50,
		GradedBy: "inst-2", GradedByName: "Racing Grader", GradedAt: at.Add(-time.Minute),
	}

	graded, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{Score: scoreOf(90)})
	require.NoError(t, err)
	require.Equal(t, "g-race", graded.Grade.ID)
	require.Equal(t, 90.0, graded.Grade.Score)
	require.Equal(t, "inst-1", graded.Grade.GradedBy)
	require.Equal(t, "Racing Grader", graded.Grade.GradedByName)
}

func TestGradeScoreOutOfRange(t *testing.T) {
	fixture := newGradingFixture(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	_, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{Score: scoreOf(101)})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "score")
}

func TestGradeMissingScore(t *testing.T) {
	fixture := newGradingFixture(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	_, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{Feedback: "점수 없음"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "score")
}

func TestGradeStripsFeedbackMarkup(t *testing.T) {
	fixture := newGradingFixture(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	graded, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "s1", dto.GradeRequest{
		Score: scoreOf(70), Feedback: `<b>좋아요</b><script>alert("x")</script>`,
	})
	require.NoError(t, err)
	require.Equal(t, "좋아요", graded.Grade.Feedback)
}

func TestGradeUnknownSubmission(t *testing.T) {
	fixture := newGradingFixture(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	_, err := fixture.svc.Grade(ctxFor("inst-1"), "c1", "a1", "missing", dto.GradeRequest{Score: scoreOf(80)})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGradeForeignCourseForbidden(t *testing.T) {
	profiles := newMemoryProfileRepo(instructorProfile("inst-2", "Other"))
	courses := newMemoryCourseRepo(models.Course{ID: "c1", InstructorID: "inst-1"})
	guards := newTestGuards(profiles, courses, newMemoryEnrollmentRepo())
	svc := newGradingService(guards, newMemoryGradeRepo(), newMemorySubmissionRepo(), newMemoryAssignmentRepo(), testValidator(), nil, &memoryEventPublisher{}, nil, testLogger(), testClock(time.Now()))

	_, err := svc.Grade(ctxFor("inst-2"), "c1", "a1", "s1", dto.GradeRequest{Score: scoreOf(80)})
	require.ErrorIs(t, err, ErrForbidden)
}
