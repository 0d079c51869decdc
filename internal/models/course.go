package models

import "fmt"

// Course groups classrooms that work through the same problem catalog section.
type Course struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
}

// Classroom is a class section following a course. Only one classroom is active at a time.
type Classroom struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	CourseID      uint   `gorm:"not null;index" json:"course_id"`
	Name          string `gorm:"size:255;not null" json:"name"`
	ActiveChapter string `gorm:"size:255;not null;default:''" json:"active_chapter"`
	IsActive      bool   `gorm:"not null;default:false" json:"is_active"`
	Course        Course `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// DisplayName renders the classroom as "[course] class".
func (c Classroom) DisplayName() string {
	return fmt.Sprintf("[%s] %s", c.Course.Name, c.Name)
}
