package models

import "time"

const (
	// SubmissionStatusGrading marks a submission waiting for (or undergoing) AI grading.
	SubmissionStatusGrading = "grading"
	// SubmissionStatusCompleted marks a submission with a final score and feedback.
	SubmissionStatusCompleted = "completed"
)

const (
	// FeedbackQueued is shown while the submission waits in the grading queue.
	FeedbackQueued = "채점 대기열에 등록되었습니다. 잠시만 기다려주세요..."
	// FeedbackGradingFailed replaces the AI feedback when grading could not be completed.
	FeedbackGradingFailed = "서버 사용량이 많아 채점에 실패했습니다. 잠시 후 다시 시도해주세요."
)

// Submission represents a student's code answer for a catalog problem.
type Submission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;index:idx_submission_student_problem" json:"student_id"`
	ProblemID  uint      `gorm:"not null;index:idx_submission_student_problem" json:"problem_id"`
	CodeAnswer string    `gorm:"type:text;not null" json:"code_answer"`
	AIFeedback string    `gorm:"type:text" json:"ai_feedback"`
	Score      *int      `json:"score"`
	Status     string    `gorm:"size:32;not null;default:grading" json:"status"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsCompleted reports whether grading has finished for the submission.
func (s Submission) IsCompleted() bool {
	return s.Status == SubmissionStatusCompleted
}

// Complete moves the submission to its terminal state. Scores are clamped to 0..100.
func (s *Submission) Complete(score int, feedback string) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	s.Score = &score
	s.AIFeedback = feedback
	s.Status = SubmissionStatusCompleted
}

// Fail completes the submission with a zero score and the fixed failure message.
func (s *Submission) Fail() {
	s.Complete(0, FeedbackGradingFailed)
}
