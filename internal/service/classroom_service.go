package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/catalog"
	"github.com/noah-isme/codelab-grader/internal/dto"
	"github.com/noah-isme/codelab-grader/internal/models"
	"github.com/noah-isme/codelab-grader/internal/repository"
)

var (
	// ErrCourseNotFound indicates the course is not declared in the problem catalog.
	ErrCourseNotFound = errors.New("course not found in problem catalog")
	// ErrChapterNotFound indicates the chapter does not exist in the classroom's course.
	ErrChapterNotFound = errors.New("chapter not found in course")
)

// ClassroomService covers installation setup and the teacher's classroom controls.
type ClassroomService interface {
	SystemInfo(ctx context.Context) (dto.SystemInfoResponse, error)
	Setup(ctx context.Context, payload dto.SetupRequest) ([]dto.ClassroomResponse, error)
	ActiveClasses(ctx context.Context) ([]dto.ActiveClassResponse, error)
	Activate(ctx context.Context, payload dto.ActivateClassRequest) error
	UpdateProgress(ctx context.Context, payload dto.ProgressUpdateRequest) error
}

type classroomService struct {
	classrooms repository.ClassroomRepository
	problems   *catalog.Catalog
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewClassroomService constructs the classroom service.
func NewClassroomService(classrooms repository.ClassroomRepository, problems *catalog.Catalog, validate *validator.Validate, logger zerolog.Logger) ClassroomService {
	return &classroomService{
		classrooms: classrooms,
		problems:   problems,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "classroom_service").Logger(),
	}
}

func (s *classroomService) SystemInfo(ctx context.Context) (dto.SystemInfoResponse, error) {
	courses, err := s.classrooms.ListCourses(ctx)
	if err != nil {
		return dto.SystemInfoResponse{}, err
	}

	classrooms, err := s.classrooms.List(ctx)
	if err != nil {
		return dto.SystemInfoResponse{}, err
	}

	classes := make([]dto.ClassroomResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		classes = append(classes, dto.NewClassroomResponse(classroom))
	}

	return dto.SystemInfoResponse{
		Initialized:      len(courses) > 0,
		Courses:          courses,
		Classes:          classes,
		AvailableCourses: s.problems.Courses(),
		ChaptersByCourse: s.problems.ChaptersByCourse(),
	}, nil
}

// Setup creates the course and its classrooms. Every classroom starts on the course's first chapter.
func (s *classroomService) Setup(ctx context.Context, payload dto.SetupRequest) ([]dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	if !s.problems.HasCourse(payload.CourseName) {
		return nil, ErrCourseNotFound
	}

	firstChapter := ""
	if chapters := s.problems.Chapters(payload.CourseName); len(chapters) > 0 {
		firstChapter = chapters[0]
	}

	classrooms := make([]models.Classroom, 0, len(payload.ClassNames))
	for _, raw := range payload.ClassNames {
		name := plainText(s.sanitizer, raw)
		if name == "" {
			return nil, ErrInvalidName
		}
		classrooms = append(classrooms, models.Classroom{Name: name, ActiveChapter: firstChapter})
	}

	course := models.Course{Name: payload.CourseName}
	if err := s.classrooms.CreateCourse(ctx, &course, classrooms); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	responses := make([]dto.ClassroomResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		classroom.Course = course
		responses = append(responses, dto.NewClassroomResponse(classroom))
	}

	s.logger.Info().Str("course", course.Name).Int("classrooms", len(classrooms)).Msg("course set up")
	return responses, nil
}

func (s *classroomService) ActiveClasses(ctx context.Context) ([]dto.ActiveClassResponse, error) {
	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ActiveClassResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		result = append(result, dto.ActiveClassResponse{ID: classroom.ID, DisplayName: classroom.DisplayName()})
	}
	return result, nil
}

// Activate makes the classroom the only one students can log into.
func (s *classroomService) Activate(ctx context.Context, payload dto.ActivateClassRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.classrooms.Activate(ctx, payload.ClassroomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	s.logger.Info().Uint("classroom_id", payload.ClassroomID).Msg("classroom activated")
	return nil
}

func (s *classroomService) UpdateProgress(ctx context.Context, payload dto.ProgressUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	if !containsString(s.problems.Chapters(classroom.Course.Name), payload.ActiveChapter) {
		return ErrChapterNotFound
	}

	if err := s.classrooms.UpdateChapter(ctx, classroom.ID, payload.ActiveChapter); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Str("chapter", payload.ActiveChapter).Msg("classroom progress updated")
	return nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
