package models

import "time"

// Grade represents the grades table. Only the fields the notification path
// needs are modeled here; average arithmetic lives with the grade importer.
type Grade struct {
	GradeID    int        `gorm:"primaryKey;column:grade_id" json:"grade_id"`
	StudentID  int        `gorm:"column:student_id" json:"student_id"`
	SubjectID  int        `gorm:"column:subject_id" json:"subject_id"`
	FinalGrade float64    `gorm:"column:final_grade" json:"final_grade"`
	Remarks    *string    `gorm:"column:remarks" json:"remarks,omitempty"`
	EnteredBy  int        `gorm:"column:entered_by" json:"entered_by"`
	CreateAt   time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt   time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Subject Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

func (Grade) TableName() string {
	return "grades"
}

// GradeCreateRequest for recording a grade
type GradeCreateRequest struct {
	StudentID  int     `json:"student_id" binding:"required"`
	SubjectID  int     `json:"subject_id" binding:"required"`
	FinalGrade float64 `json:"final_grade" binding:"required,gte=0,lte=20"`
	Remarks    *string `json:"remarks"`
}

// GradeUpdateRequest for correcting a grade
type GradeUpdateRequest struct {
	FinalGrade *float64 `json:"final_grade" binding:"omitempty,gte=0,lte=20"`
	Remarks    *string  `json:"remarks"`
}
