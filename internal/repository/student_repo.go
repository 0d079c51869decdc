package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Upsert(ctx context.Context, student *models.Student) error
	ListByClassroom(ctx context.Context, classroomID uint) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// Upsert matches on student number. An existing student moves to the given classroom and takes the new name.
func (r *studentRepository) Upsert(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Student
		err := tx.Where("student_number = ?", student.StudentNumber).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(student).Error
		case err != nil:
			return err
		}

		existing.ClassroomID = student.ClassroomID
		existing.Name = student.Name
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*student = existing
		return nil
	})
}

func (r *studentRepository) ListByClassroom(ctx context.Context, classroomID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("student_number ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}
