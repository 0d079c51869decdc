package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

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
	// ErrStudentNotFound indicates the student id is unknown.
	ErrStudentNotFound = errors.New("student not found")
	// ErrClassroomNotFound indicates the classroom id is unknown.
	ErrClassroomNotFound = errors.New("classroom not found")
	// ErrInvalidName is returned when a name is empty once markup is stripped.
	ErrInvalidName = errors.New("name empty after sanitization")
)

// StudentService handles student login and the per-student problem list.
type StudentService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Problems(ctx context.Context, studentID uint) (dto.StudentProblemsResponse, error)
}

type studentService struct {
	students    repository.StudentRepository
	classrooms  repository.ClassroomRepository
	submissions repository.SubmissionRepository
	problems    *catalog.Catalog
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, classrooms repository.ClassroomRepository, submissions repository.SubmissionRepository, problems *catalog.Catalog, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:    students,
		classrooms:  classrooms,
		submissions: submissions,
		problems:    problems,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

// Login registers the student on first use. Returning students are matched by number and move to the
// requested classroom under the new name.
func (s *studentService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	name := plainText(s.sanitizer, payload.Name)
	number := strings.TrimSpace(payload.StudentNumber)
	if name == "" || number == "" {
		return dto.LoginResponse{}, ErrInvalidName
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrClassroomNotFound
		}
		return dto.LoginResponse{}, fmt.Errorf("load classroom: %w", err)
	}

	student := models.Student{
		ClassroomID:   classroom.ID,
		StudentNumber: number,
		Name:          name,
	}
	if err := s.students.Upsert(ctx, &student); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("upsert student: %w", err)
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("classroom_id", classroom.ID).Msg("student logged in")

	return dto.LoginResponse{
		ID:          student.ID,
		Name:        student.Name,
		ClassName:   classroom.Name,
		CourseName:  classroom.Course.Name,
		ClassroomID: classroom.ID,
	}, nil
}

// Problems lists the active chapter of the student's classroom with the latest attempt at each problem.
func (s *studentService) Problems(ctx context.Context, studentID uint) (dto.StudentProblemsResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProblemsResponse{}, ErrStudentNotFound
		}
		return dto.StudentProblemsResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, student.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProblemsResponse{}, ErrClassroomNotFound
		}
		return dto.StudentProblemsResponse{}, err
	}

	problems := s.problems.ChapterProblems(classroom.Course.Name, classroom.ActiveChapter)
	latest, err := s.submissions.LatestByStudents(ctx, []uint{student.ID}, catalog.IDs(problems))
	if err != nil {
		return dto.StudentProblemsResponse{}, err
	}

	byProblem := make(map[uint]models.Submission, len(latest))
	for _, submission := range latest {
		byProblem[submission.ProblemID] = submission
	}

	views := make([]dto.ProblemView, 0, len(problems))
	for _, problem := range problems {
		view := dto.NewProblemView(problem)
		if submission, ok := byProblem[problem.ID]; ok {
			id := submission.ID
			code := submission.CodeAnswer
			feedback := submission.AIFeedback
			view.HasSubmission = true
			view.SubmissionID = &id
			view.LastCode = &code
			view.LastScore = submission.Score
			view.LastFeedback = &feedback
			view.Status = submission.Status
		}
		views = append(views, view)
	}

	return dto.StudentProblemsResponse{
		ActiveChapter: classroom.ActiveChapter,
		Problems:      views,
	}, nil
}

// plainText strips markup and returns the unescaped, trimmed text.
func plainText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}
