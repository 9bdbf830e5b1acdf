package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	GetByAssignmentAndID(ctx context.Context, assignmentID, id string) (models.Submission, error)
	GetByAssignmentAndLearner(ctx context.Context, assignmentID, learnerID string) (models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
	ListByLearner(ctx context.Context, learnerID string) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateStatus(ctx context.Context, id, status string) error
	CountUngradedByCourse(ctx context.Context, courseID string) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Preload("Grade")
}

// GetByAssignmentAndID filters on both keys so a submission id from a
// different assignment resolves to not-found.
func (r *submissionRepository) GetByAssignmentAndID(ctx context.Context, assignmentID, id string) (models.Submission, error) {
	var submission models.Submission
	err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&submission, "id = ?", id).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndLearner(ctx context.Context, assignmentID, learnerID string) (models.Submission, error) {
	var submission models.Submission
	err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("learner_id = ?", learnerID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByLearner(ctx context.Context, learnerID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.baseQuery(ctx).
		Preload("Assignment").
		Where("learner_id = ?", learnerID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *submissionRepository) CountUngradedByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.course_id = ?", courseID).
		Where("submissions.status = ?", models.SubmissionStatusSubmitted).
		Count(&count).Error

	return count, err
}
