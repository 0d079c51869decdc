package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/models"
)

// ClassroomRepository exposes persistence helpers for courses and their classrooms.
type ClassroomRepository interface {
	CreateCourse(ctx context.Context, course *models.Course, classrooms []models.Classroom) error
	ListCourses(ctx context.Context) ([]models.Course, error)
	List(ctx context.Context) ([]models.Classroom, error)
	ListActive(ctx context.Context) ([]models.Classroom, error)
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	Activate(ctx context.Context, id uint) error
	UpdateChapter(ctx context.Context, id uint, chapter string) error
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository constructs a classroom repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

// CreateCourse stores a course together with its classrooms in one transaction.
func (r *classroomRepository) CreateCourse(ctx context.Context, course *models.Course, classrooms []models.Classroom) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		for i := range classrooms {
			classrooms[i].CourseID = course.ID
			if err := tx.Omit("Course").Create(&classrooms[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *classroomRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *classroomRepository) List(ctx context.Context) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).Preload("Course").Order("id ASC").Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (r *classroomRepository) ListActive(ctx context.Context) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).Preload("Course").First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}
	return classroom, nil
}

// Activate makes id the only active classroom. It fails with gorm.ErrRecordNotFound when id does not exist,
// leaving the previous activation untouched.
func (r *classroomRepository) Activate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Classroom
		if err := tx.First(&target, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Classroom{}).Where("id <> ?", id).Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Model(&target).Update("is_active", true).Error
	})
}

func (r *classroomRepository) UpdateChapter(ctx context.Context, id uint, chapter string) error {
	result := r.db.WithContext(ctx).Model(&models.Classroom{}).Where("id = ?", id).Update("active_chapter", chapter)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
