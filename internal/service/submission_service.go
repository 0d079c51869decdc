package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/catalog"
	"github.com/noah-isme/codelab-grader/internal/dto"
	"github.com/noah-isme/codelab-grader/internal/grading"
	"github.com/noah-isme/codelab-grader/internal/models"
	"github.com/noah-isme/codelab-grader/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrProblemNotFound indicates the catalog has no problem with the requested id.
var ErrProblemNotFound = errors.New("problem not found")

// GradingQueue accepts grading jobs. Enqueue must not block.
type GradingQueue interface {
	Enqueue(job grading.Job)
}

// SubmissionService creates submissions, hands them to the grading worker and reports their state.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	students    repository.StudentRepository
	problems    *catalog.Catalog
	queue       GradingQueue
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, studentRepo repository.StudentRepository, problems *catalog.Catalog, queue GradingQueue, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		students:    studentRepo,
		problems:    problems,
		queue:       queue,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

// Submit stores the submission in the grading state and queues it. The row exists before the job does, so
// the worker can always look it up.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	problem, ok := s.problems.Problem(payload.ProblemID)
	if !ok {
		return dto.SubmissionResponse{}, ErrProblemNotFound
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, fmt.Errorf("load student: %w", err)
	}

	submission := models.Submission{
		StudentID:  payload.StudentID,
		ProblemID:  payload.ProblemID,
		CodeAnswer: payload.CodeAnswer,
		Status:     models.SubmissionStatusGrading,
		AIFeedback: models.FeedbackQueued,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("create submission: %w", err)
	}

	s.queue.Enqueue(grading.Job{
		SubmissionID: submission.ID,
		Problem:      problem,
		Code:         submission.CodeAnswer,
	})

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("student_id", submission.StudentID).
		Uint("problem_id", submission.ProblemID).
		Msg("submission queued for grading")

	return dto.NewSubmissionResponse(submission), nil
}

// Get always reads through to the store so pollers observe the worker's latest write.
func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}
