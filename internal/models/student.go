package models

import "time"

// Student represents a learner enrolled in a classroom, identified by their school number.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ClassroomID   uint      `gorm:"not null;index" json:"classroom_id"`
	StudentNumber string    `gorm:"size:64;uniqueIndex;not null" json:"student_number"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
