package dto

import (
	"github.com/noah-isme/codelab-grader/internal/models"
)

// SetupRequest creates a course and its classrooms.
type SetupRequest struct {
	CourseName string   `json:"course_name" validate:"required,max=255"`
	ClassNames []string `json:"class_names" validate:"required,min=1,dive,required,max=255"`
}

// ActivateClassRequest selects the classroom students can log into.
type ActivateClassRequest struct {
	ClassroomID uint `json:"classroom_id" validate:"required,gt=0"`
}

// ProgressUpdateRequest moves a classroom to another chapter.
type ProgressUpdateRequest struct {
	ClassroomID   uint   `json:"classroom_id" validate:"required,gt=0"`
	ActiveChapter string `json:"active_chapter" validate:"required"`
}

// ClassroomResponse describes a classroom together with its course.
type ClassroomResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	CourseID      uint   `json:"course_id"`
	CourseName    string `json:"course_name"`
	DisplayName   string `json:"display_name"`
	ActiveChapter string `json:"active_chapter"`
	IsActive      bool   `json:"is_active"`
}

// NewClassroomResponse converts a classroom with a preloaded course.
func NewClassroomResponse(model models.Classroom) ClassroomResponse {
	return ClassroomResponse{
		ID:            model.ID,
		Name:          model.Name,
		CourseID:      model.CourseID,
		CourseName:    model.Course.Name,
		DisplayName:   model.DisplayName(),
		ActiveChapter: model.ActiveChapter,
		IsActive:      model.IsActive,
	}
}

// ActiveClassResponse is the minimal classroom entry offered on the login screen.
type ActiveClassResponse struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
}

// SystemInfoResponse summarises the installation for the teacher console.
type SystemInfoResponse struct {
	Initialized      bool                `json:"initialized"`
	Courses          []models.Course     `json:"courses"`
	Classes          []ClassroomResponse `json:"classes"`
	AvailableCourses []string            `json:"available_courses"`
	ChaptersByCourse map[string][]string `json:"chapters_by_course"`
}

// StatusCell is one student's latest attempt at one problem. Status is "none" without an attempt.
type StatusCell struct {
	ID       *uint  `json:"id"`
	Status   string `json:"status"`
	Score    *int   `json:"score"`
	Feedback string `json:"feedback"`
	Code     string `json:"code"`
}

// StatusRow is a student's line on the teacher board, keyed by problem id.
type StatusRow struct {
	StudentID uint                `json:"student_id"`
	Info      string              `json:"info"`
	Problems  map[uint]StatusCell `json:"problems"`
}

// StatusBoardResponse is the teacher board for a classroom's active chapter.
type StatusBoardResponse struct {
	Students []StatusRow   `json:"students"`
	Problems []ProblemView `json:"problems"`
	Chapter  string        `json:"chapter"`
}
