package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/catalog"
	"github.com/noah-isme/codelab-grader/internal/dto"
	"github.com/noah-isme/codelab-grader/internal/models"
	"github.com/noah-isme/codelab-grader/internal/repository"
)

// StatusNone marks a board cell for a problem the student has not attempted.
const StatusNone = "none"

// StatusService builds the teacher board: latest attempt per student and problem of the active chapter.
type StatusService interface {
	Board(ctx context.Context, classroomID uint) (dto.StatusBoardResponse, error)
}

type statusService struct {
	classrooms  repository.ClassroomRepository
	students    repository.StudentRepository
	submissions repository.SubmissionRepository
	problems    *catalog.Catalog
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStatusService constructs the board service. A nil cache or non-positive ttl disables caching.
func NewStatusService(classrooms repository.ClassroomRepository, students repository.StudentRepository, submissions repository.SubmissionRepository, problems *catalog.Catalog, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatusService {
	return &statusService{
		classrooms:  classrooms,
		students:    students,
		submissions: submissions,
		problems:    problems,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "status_service").Logger(),
	}
}

// Board returns an empty board for unknown classrooms.
func (s *statusService) Board(ctx context.Context, classroomID uint) (dto.StatusBoardResponse, error) {
	cacheKey := fmt.Sprintf("status:classroom:%d", classroomID)

	if s.cacheEnabled() {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StatusBoardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("classroom_id", classroomID).Msg("status board cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read status board cache")
		}
	}

	response, err := s.build(ctx, classroomID)
	if err != nil {
		return dto.StatusBoardResponse{}, err
	}

	if s.cacheEnabled() {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store status board cache")
			}
		}
	}

	return response, nil
}

func (s *statusService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *statusService) build(ctx context.Context, classroomID uint) (dto.StatusBoardResponse, error) {
	empty := dto.StatusBoardResponse{Students: []dto.StatusRow{}, Problems: []dto.ProblemView{}}

	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return empty, nil
		}
		return dto.StatusBoardResponse{}, err
	}

	problems := s.problems.ChapterProblems(classroom.Course.Name, classroom.ActiveChapter)

	students, err := s.students.ListByClassroom(ctx, classroom.ID)
	if err != nil {
		return dto.StatusBoardResponse{}, err
	}

	studentIDs := make([]uint, 0, len(students))
	for _, student := range students {
		studentIDs = append(studentIDs, student.ID)
	}

	latest, err := s.submissions.LatestByStudents(ctx, studentIDs, catalog.IDs(problems))
	if err != nil {
		return dto.StatusBoardResponse{}, err
	}

	type cellKey struct {
		student uint
		problem uint
	}
	byCell := make(map[cellKey]models.Submission, len(latest))
	for _, submission := range latest {
		byCell[cellKey{student: submission.StudentID, problem: submission.ProblemID}] = submission
	}

	rows := make([]dto.StatusRow, 0, len(students))
	for _, student := range students {
		row := dto.StatusRow{
			StudentID: student.ID,
			Info:      fmt.Sprintf("%s %s", student.StudentNumber, student.Name),
			Problems:  make(map[uint]dto.StatusCell, len(problems)),
		}
		for _, problem := range problems {
			submission, ok := byCell[cellKey{student: student.ID, problem: problem.ID}]
			if !ok {
				zero := 0
				row.Problems[problem.ID] = dto.StatusCell{Status: StatusNone, Score: &zero}
				continue
			}
			id := submission.ID
			row.Problems[problem.ID] = dto.StatusCell{
				ID:       &id,
				Status:   submission.Status,
				Score:    submission.Score,
				Feedback: submission.AIFeedback,
				Code:     submission.CodeAnswer,
			}
		}
		rows = append(rows, row)
	}

	return dto.StatusBoardResponse{
		Students: rows,
		Problems: dto.NewProblemViews(problems),
		Chapter:  classroom.ActiveChapter,
	}, nil
}
