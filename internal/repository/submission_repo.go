package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/models"
)

// SubmissionRepository defines data operations for code submissions.
//
// Rows have a single writer after creation: the grading worker. Update performs a plain full save and does
// not guard against concurrent writers; a multi-worker deployment would need an optimistic version check.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	LatestByStudents(ctx context.Context, studentIDs, problemIDs []uint) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// LatestByStudents returns, for every (student, problem) pair within the given sets, the most recently
// created submission. Ties on created_at are broken by the higher id.
func (r *submissionRepository) LatestByStudents(ctx context.Context, studentIDs, problemIDs []uint) ([]models.Submission, error) {
	if len(studentIDs) == 0 || len(problemIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", studentIDs).
		Where("problem_id IN ?", problemIDs).
		Order("created_at DESC").
		Order("id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	type key struct {
		student uint
		problem uint
	}

	seen := make(map[key]struct{}, len(submissions))
	latest := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		k := key{student: submission.StudentID, problem: submission.ProblemID}
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}
		latest = append(latest, submission)
	}

	return latest, nil
}
