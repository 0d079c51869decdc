package dto

import (
	"github.com/noah-isme/codelab-grader/internal/catalog"
)

// LoginRequest identifies a student by school number inside an active classroom.
type LoginRequest struct {
	ClassroomID   uint   `json:"classroom_id" validate:"required,gt=0"`
	StudentNumber string `json:"student_number" validate:"required,max=64"`
	Name          string `json:"name" validate:"required,max=255"`
}

// LoginResponse describes the student session the client keeps locally.
type LoginResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ClassName   string `json:"class_name"`
	CourseName  string `json:"course_name"`
	ClassroomID uint   `json:"classroom_id"`
}

// ProblemView is a catalog problem as shown to students, optionally with their latest attempt.
type ProblemView struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Chapter       string  `json:"chapter"`
	CourseName    string  `json:"course_name"`
	HasSubmission bool    `json:"has_submission"`
	SubmissionID  *uint   `json:"submission_id,omitempty"`
	LastCode      *string `json:"last_code,omitempty"`
	LastScore     *int    `json:"last_score,omitempty"`
	LastFeedback  *string `json:"last_feedback,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// NewProblemView builds the student-facing view of a problem. Grading criteria stay server side.
func NewProblemView(problem catalog.Problem) ProblemView {
	return ProblemView{
		ID:          problem.ID,
		Title:       problem.Title,
		Description: problem.Description,
		Chapter:     problem.Chapter,
		CourseName:  problem.CourseName,
	}
}

// NewProblemViews converts catalog problems into views.
func NewProblemViews(problems []catalog.Problem) []ProblemView {
	views := make([]ProblemView, 0, len(problems))
	for _, problem := range problems {
		views = append(views, NewProblemView(problem))
	}
	return views
}

// StudentProblemsResponse lists the problems of the classroom's active chapter.
type StudentProblemsResponse struct {
	ActiveChapter string        `json:"active_chapter"`
	Problems      []ProblemView `json:"problems"`
}
