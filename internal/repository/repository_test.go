package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Assignment{},
		&models.Enrollment{},
		&models.Submission{},
		&models.Grade{},
	))

	return db
}

func TestSubmissionUniquePerAssignmentAndLearner(t *testing.T) {
	db := testDB(t)
	repo := repository.NewSubmissionRepository(db)
	ctx := context.Background()

	first := models.Submission{
		ID: uuid.NewString(), AssignmentID: "a1", LearnerID: "learner-1",
		Content: "첫 제출", SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(ctx, &first))

	duplicate := models.Submission{
		ID: uuid.NewString(), AssignmentID: "a1", LearnerID: "learner-1",
		Content: "두 번째", SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}
	err := repo.Create(ctx, &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Same learner, different assignment is fine.
	other := models.Submission{
		ID: uuid.NewString(), AssignmentID: "a2", LearnerID: "learner-1",
		Content: "다른 과제", SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(ctx, &other))
}

func TestEnrollmentUniquePerCourseAndLearner(t *testing.T) {
	db := testDB(t)
	repo := repository.NewEnrollmentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Enrollment{
		ID: uuid.NewString(), CourseID: "c1", LearnerID: "learner-1",
	}))

	err := repo.Create(ctx, &models.Enrollment{
		ID: uuid.NewString(), CourseID: "c1", LearnerID: "learner-1",
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestEnrollmentDeleteReportsMissingRow(t *testing.T) {
	db := testDB(t)
	repo := repository.NewEnrollmentRepository(db)

	err := repo.Delete(context.Background(), "c1", "learner-1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGradeUniquePerSubmission(t *testing.T) {
	db := testDB(t)
	repo := repository.NewGradeRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Grade{
		ID: uuid.NewString(), SubmissionID: "s1", Score: 80,
		GradedBy: "inst-1", GradedByName: "Minji", GradedAt: time.Now(),
	}))

	err := repo.Create(ctx, &models.Grade{
		ID: uuid.NewString(), SubmissionID: "s1", Score: 90,
		GradedBy: "inst-2", GradedByName: "Other", GradedAt: time.Now(),
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSubmissionCrossAssignmentLookupMisses(t *testing.T) {
	db := testDB(t)
	repo := repository.NewSubmissionRepository(db)
	ctx := context.Background()

	submission := models.Submission{
		ID: uuid.NewString(), AssignmentID: "a1", LearnerID: "learner-1",
		Content: "답안", SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(ctx, &submission))

	_, err := repo.GetByAssignmentAndID(ctx, "a2", submission.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
