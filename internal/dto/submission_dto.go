package dto

import (
	"time"

	"github.com/noah-isme/codelab-grader/internal/models"
)

// SubmissionCreateRequest is the payload students send to queue code for grading.
type SubmissionCreateRequest struct {
	StudentID  uint   `json:"student_id" validate:"required,gt=0"`
	ProblemID  uint   `json:"problem_id" validate:"required,gt=0"`
	CodeAnswer string `json:"code_answer" validate:"required"`
}

// SubmissionResponse mirrors the persisted grading state of a submission.
type SubmissionResponse struct {
	ID         uint      `json:"id"`
	StudentID  uint      `json:"student_id"`
	ProblemID  uint      `json:"problem_id"`
	CodeAnswer string    `json:"code_answer"`
	Status     string    `json:"status"`
	Score      *int      `json:"score"`
	AIFeedback string    `json:"ai_feedback"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:         model.ID,
		StudentID:  model.StudentID,
		ProblemID:  model.ProblemID,
		CodeAnswer: model.CodeAnswer,
		Status:     model.Status,
		Score:      model.Score,
		AIFeedback: model.AIFeedback,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
